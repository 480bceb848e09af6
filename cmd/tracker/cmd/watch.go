package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rustyeddy/tracker/journal"
	"github.com/rustyeddy/tracker/progress"
	"github.com/rustyeddy/tracker/report"
	"github.com/rustyeddy/tracker/store"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow changes made on other devices",
	Long: `Listen to the journal's change feed and print a line for every
portfolio changed elsewhere, until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Watching %d portfolio(s); Ctrl-C to stop\n", len(s.List()))
		return s.Listen(ctx, func(c journal.Change) {
			if c.Kind == journal.Deleted {
				fmt.Fprintf(out, "- %s deleted\n", c.PortfolioID)
				return
			}
			snap := progress.Take(c.Portfolio)
			fmt.Fprintf(out, "~ %s v%d: %s %s\n",
				c.Portfolio.Name, c.Portfolio.Version,
				report.Bar(snap.Stage.Percent, 20), report.EstimateText(snap))
		})
	})
}
