package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/smolitux/fedlink/pkg/activitypub"
	"github.com/smolitux/fedlink/pkg/cli/internal/output"
	"github.com/smolitux/fedlink/pkg/cli/internal/parse"
)

var (
	apHeaders []string
	apTimeout time.Duration
)

// newAPClient builds an ActivityPub client from the shared request flags.
// Headers in always are sent on every request the client makes.
func newAPClient(cmd *cobra.Command, always http.Header) (*activitypub.Client, func(), error) {
	log, closeLog, err := newLogger(nil, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	opts := []activitypub.Option{
		activitypub.WithLogger(log),
		activitypub.WithTimeout(apTimeout),
		activitypub.WithHeader("User-Agent", "fedlink/"+Version),
	}
	for key, values := range always {
		for _, v := range values {
			opts = append(opts, activitypub.WithHeader(key, v))
		}
	}
	return activitypub.NewClient(opts...), closeLog, nil
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&apHeaders, "header", "H", nil, "Extra request header (Key: value), repeatable")
	cmd.Flags().DurationVar(&apTimeout, "timeout", activitypub.DefaultTimeout, "Request timeout")
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch an ActivityPub object",
	Example: `  fedlink fetch https://mastodon.example/users/alice
  fedlink fetch https://mastodon.example/users/alice/outbox -H "Authorization: Bearer $TOKEN"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		headers, err := parse.Headers(apHeaders)
		if err != nil {
			return err
		}
		client, closeLog, err := newAPClient(cmd, nil)
		if err != nil {
			return err
		}
		defer closeLog()

		obj, err := client.Fetch(cmd.Context(), args[0], headers)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		return output.JSON(cmd.OutOrStdout(), obj)
	},
}

func init() {
	addRequestFlags(fetchCmd)
	rootCmd.AddCommand(fetchCmd)
}
