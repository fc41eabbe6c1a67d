package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/smolitux/fedlink/pkg/activitypub"
	"github.com/smolitux/fedlink/pkg/cli/internal/output"
	"github.com/smolitux/fedlink/pkg/cli/internal/parse"
)

var (
	searchRaw      bool
	searchPlatform string
)

var searchCmd = &cobra.Command{
	Use:   "search <endpoint> <query>",
	Short: "Query an ActivityPub search endpoint",
	Long: `Search sends the query as the q parameter to endpoint and lists the items
of the returned collection. By default items are shown as search results;
use --raw to print the collection items unchanged.`,
	Example: `  fedlink search https://peertube.example/api/v1/search/videos cats
  fedlink search https://social.example/search "fediverse" --raw --json`,
	Args: cobra.ExactArgs(2),
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

		items, err := client.Search(cmd.Context(), args[0], args[1], headers)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		w := cmd.OutOrStdout()
		if searchRaw {
			if items == nil {
				items = []any{}
			}
			return output.JSON(w, items)
		}

		platform := searchPlatform
		if platform == "" {
			if u, err := url.Parse(args[0]); err == nil {
				platform = u.Host
			}
		}
		results := activitypub.ToSearchResults(items, platform)
		if jsonOutput {
			return output.JSON(w, results)
		}
		return printSearchResults(cmd, results)
	},
}

func printSearchResults(cmd *cobra.Command, results []activitypub.SearchResult) error {
	w := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No results"))
		return nil
	}
	tw := output.Table(w)
	fmt.Fprintln(tw, "TYPE\tTITLE\tAUTHOR\tCREATED\tURL")
	for _, r := range results {
		created := "-"
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Format(time.DateOnly)
		}
		author := r.Author
		if author == "" {
			author = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Type, r.Title, author, created, r.URL)
	}
	return tw.Flush()
}

func init() {
	addRequestFlags(searchCmd)
	searchCmd.Flags().BoolVar(&searchRaw, "raw", false, "Print collection items unchanged")
	searchCmd.Flags().StringVar(&searchPlatform, "platform", "", "Platform label for results (default: endpoint host)")
	rootCmd.AddCommand(searchCmd)
}
