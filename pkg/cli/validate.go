package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smolitux/fedlink/pkg/cli/internal/output"
	"github.com/smolitux/fedlink/pkg/config"
)

// ValidateOutput is the JSON shape of the validate command.
type ValidateOutput struct {
	Path      string           `json:"path"`
	Valid     bool             `json:"valid"`
	Protocols []string         `json:"protocols,omitempty"`
	Problems  []config.Problem `json:"problems,omitempty"`
	Error     string           `json:"error,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a configuration file",
	Long: `Validate loads a configuration file, checks it against the configuration
schema and reports every problem found. The file defaults to --config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		out := validateFile(path)

		w := cmd.OutOrStdout()
		if jsonOutput {
			if err := output.JSON(w, out); err != nil {
				return err
			}
		} else {
			printValidation(cmd, out)
		}
		if !out.Valid {
			return fmt.Errorf("%s is not valid", path)
		}
		return nil
	},
}

func validateFile(path string) ValidateOutput {
	out := ValidateOutput{Path: path}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			out.Problems = verr.Problems
		} else {
			out.Error = err.Error()
		}
		return out
	}
	out.Valid = true
	for _, d := range cfg.Protocols {
		name := string(d.Name)
		if _, ok := d.ConnectEndpoint(); !ok {
			name += " (no GET endpoint)"
		}
		out.Protocols = append(out.Protocols, name)
	}
	return out
}

func printValidation(cmd *cobra.Command, out ValidateOutput) {
	w := cmd.OutOrStdout()
	if out.Valid {
		fmt.Fprintf(w, "%s %s: %d protocols\n", successStyle.Render("✓"), out.Path, len(out.Protocols))
		for _, p := range out.Protocols {
			fmt.Fprintln(w, infoStyle.Render("  - "+p))
		}
		return
	}
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render("✖"), out.Path)
	if out.Error != "" {
		fmt.Fprintln(w, "  "+out.Error)
	}
	for _, p := range out.Problems {
		fmt.Fprintln(w, "  "+p.String())
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
