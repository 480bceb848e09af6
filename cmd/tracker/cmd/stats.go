package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/tracker/report"
	"github.com/rustyeddy/tracker/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show performance statistics of a portfolio",
	Long: `Show the summary, monthly, per-asset and profit-share statistics of
the selected portfolio. Only closed trades are counted.

Example:
  tracker stats -p Swing --tz Europe/Paris`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var statsTZ string

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsTZ, "tz", "", "time zone for monthly buckets (default display.timezone)")
}

func runStats(cmd *cobra.Command, args []string) error {
	loc := cfg.Location()
	if statsTZ != "" {
		l, err := time.LoadLocation(statsTZ)
		if err != nil {
			return fmt.Errorf("time zone: %w", err)
		}
		loc = l
	}
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		return show(cmd, report.Stats(p, loc))
	})
}
