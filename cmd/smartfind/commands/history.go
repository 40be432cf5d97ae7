package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartfind/smartfind-go/internal/logging"
)

// NewHistoryCmd constructs the `smartfind history` command, which prints
// recent searches from the local history store.
func NewHistoryCmd() *cobra.Command {
	var limit int
	var full bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches and their reports",
		Long: `List recent searches from the local history database, newest first.

By default only the query line is shown; use --full to print each stored
report as well.

Examples:
  smartfind history
  smartfind history --limit 5 --full`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			history, closeHistory := openHistory(log)
			defer closeHistory()
			if history == nil {
				return fmt.Errorf("history: store unavailable")
			}

			recs, err := history.Recent(ctx, limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			if len(recs) == 0 {
				fmt.Fprintln(os.Stdout, "no searches recorded yet")
				return nil
			}

			for _, rec := range recs {
				toggles := ""
				if rec.UsedTags {
					toggles += " +tags"
				}
				if rec.UsedReranker {
					toggles += " +rerank"
				}
				fmt.Fprintf(os.Stdout, "%s  %q%s\n",
					rec.CreatedAt.Format(time.DateTime), rec.Query, toggles)
				if full {
					fmt.Fprintf(os.Stdout, "\n%s\n\n", rec.Report)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of searches to show")
	cmd.Flags().BoolVar(&full, "full", false, "Print the stored report for each search")

	return cmd
}
