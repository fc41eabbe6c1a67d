package config

import (
	"time"

	"github.com/smolitux/fedlink/pkg/federation"
	"github.com/smolitux/fedlink/pkg/logging"
	"github.com/smolitux/fedlink/pkg/transport"
)

// Config is a fedlink configuration file.
type Config struct {
	Protocols     []federation.Descriptor `json:"protocols"`
	ErrorHandling *ErrorHandling          `json:"errorHandling,omitempty"`
	Auth          *federation.Credentials `json:"auth,omitempty"`
	Transport     transport.Kind          `json:"transport,omitempty"`
	Filter        string                  `json:"filter,omitempty"`
	// DialTimeout is in milliseconds. Zero means no timeout.
	DialTimeout int       `json:"dialTimeout,omitempty"`
	Log         LogConfig `json:"log,omitempty"`
}

// ErrorHandling mirrors federation.ErrorHandling with file-friendly units.
// Unset fields take the defaults.
type ErrorHandling struct {
	Retries *int `json:"retries,omitempty"`
	// RetryDelay is in milliseconds.
	RetryDelay *int `json:"retryDelay,omitempty"`
}

// LogConfig selects log level and format.
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// RetrySettings resolves the retry configuration, applying defaults.
func (c *Config) RetrySettings() federation.ErrorHandling {
	eh := federation.DefaultErrorHandling()
	if c.ErrorHandling == nil {
		return eh
	}
	if c.ErrorHandling.Retries != nil {
		eh.Retries = *c.ErrorHandling.Retries
	}
	if c.ErrorHandling.RetryDelay != nil {
		eh.RetryDelay = time.Duration(*c.ErrorHandling.RetryDelay) * time.Millisecond
	}
	return eh
}

// ManagerOptions returns manager options for the file's settings. Callers
// add the dialer, callbacks and logger.
func (c *Config) ManagerOptions() federation.Options {
	eh := c.RetrySettings()
	return federation.Options{
		ErrorHandling: &eh,
		Credentials:   c.Auth,
		Filter:        c.Filter,
		DialTimeout:   time.Duration(c.DialTimeout) * time.Millisecond,
	}
}

// Logging returns the logging configuration for the file's settings.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	cfg.Format = logging.ParseFormat(c.Log.Format)
	return cfg
}
