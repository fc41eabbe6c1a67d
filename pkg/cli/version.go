package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/smolitux/fedlink/pkg/cli/internal/output"
)

// VersionOutput is the JSON shape of the version command.
type VersionOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show fedlink version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := VersionOutput{
			Version:   Version,
			Commit:    Commit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}
		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), v)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "fedlink v%s (%s, built %s)\n", v.Version, v.Commit, v.BuildDate)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", v.GoVersion, v.Platform)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
