// Package logging provides structured logging configuration for fedlink.
//
// This package wraps log/slog so the manager, the ActivityPub client and the
// CLI log the same way.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("protocol connected", "protocol", "matrix")
//	logger.Warn("protocol connection error", "protocol", "matrix", "error", err)
//
// # Output Formats
//
//   - Text: Human-readable format for terminals
//   - JSON: Structured format for log aggregation systems
//
// Setting Config.Tee additionally writes every record as JSON to a second
// writer (the CLI uses this for --log-file).
//
// # Integration
//
// Components accept a *slog.Logger in their options. If none is provided
// they use logging.Nop().
package logging
