package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smolitux/fedlink/pkg/cli/internal/output"
	"github.com/smolitux/fedlink/pkg/cli/internal/parse"
)

var outboxCmd = &cobra.Command{
	Use:     "outbox <collection-url>",
	Short:   "List the activities in an ActivityPub outbox",
	Example: `  fedlink outbox https://mastodon.example/users/alice/outbox`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		headers, err := parse.Headers(apHeaders)
		if err != nil {
			return err
		}
		client, closeLog, err := newAPClient(cmd, headers)
		if err != nil {
			return err
		}
		defer closeLog()

		activities, err := client.FetchOutbox(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("outbox fetch failed: %w", err)
		}

		w := cmd.OutOrStdout()
		if jsonOutput {
			return output.JSON(w, activities)
		}
		if len(activities) == 0 {
			fmt.Fprintln(w, infoStyle.Render("Outbox is empty"))
			return nil
		}
		tw := output.Table(w)
		fmt.Fprintln(tw, "PUBLISHED\tTYPE\tOBJECT\tID")
		for _, a := range activities {
			published := "-"
			if !a.Published.IsZero() {
				published = a.Published.Format(time.RFC3339)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", published, a.Type, describeContent(a.Object), a.ID)
		}
		return tw.Flush()
	},
}

func init() {
	addRequestFlags(outboxCmd)
	rootCmd.AddCommand(outboxCmd)
}
