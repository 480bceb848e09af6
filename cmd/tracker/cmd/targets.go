package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rustyeddy/tracker/currency"
	"github.com/rustyeddy/tracker/ledger"
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/report"
	"github.com/rustyeddy/tracker/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Manage the capital target ladder",
	Long: `Manage the ladder of capital targets of the selected portfolio.

Subcommands:
  list    - Show the ladder and which rungs are reached
  set     - Replace the whole ladder
  add     - Add one target
  delete  - Remove a target (the last one cannot be removed)
  suggest - Print the suggested next target amount

Examples:
  tracker targets set "Double=2000" "Triple=3000"
  tracker targets add --name Moon --amount 10000`,
}

var targetsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the target ladder",
	Args:    cobra.NoArgs,
	RunE:    runTargetsList,
}

var targetsSetCmd = &cobra.Command{
	Use:   "set <name=amount>...",
	Short: "Replace the whole ladder",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTargetsSet,
}

var targetsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a target; the amount defaults to the suggestion",
	Args:  cobra.NoArgs,
	RunE:  runTargetsAdd,
}

var targetsDeleteCmd = &cobra.Command{
	Use:   "delete <target-id>",
	Short: "Remove a target",
	Args:  cobra.ExactArgs(1),
	RunE:  runTargetsDelete,
}

var targetsSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Print the suggested next target amount",
	Args:  cobra.NoArgs,
	RunE:  runTargetsSuggest,
}

var (
	tgName   string
	tgAmount string
)

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.AddCommand(targetsListCmd)
	targetsCmd.AddCommand(targetsSetCmd)
	targetsCmd.AddCommand(targetsAddCmd)
	targetsCmd.AddCommand(targetsDeleteCmd)
	targetsCmd.AddCommand(targetsSuggestCmd)

	targetsAddCmd.Flags().StringVarP(&tgName, "name", "n", "", "target name (default \"Target N\")")
	targetsAddCmd.Flags().StringVar(&tgAmount, "amount", "", "target amount (default suggested)")
}

func runTargetsList(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		return show(cmd, report.Targets(p))
	})
}

// parseTargets reads "name=amount" pairs.
func parseTargets(args []string) ([]portfolio.Target, error) {
	out := make([]portfolio.Target, 0, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("target %q: want name=amount", arg)
		}
		a, err := amount("target", raw)
		if err != nil {
			return nil, err
		}
		out = append(out, portfolio.Target{Name: name, Amount: a})
	}
	return out, nil
}

func runTargetsSet(cmd *cobra.Command, args []string) error {
	targets, err := parseTargets(args)
	if err != nil {
		return err
	}
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		p, err = s.Update(p.ID, ledger.ReplaceTargets(targets))
		if err != nil {
			return err
		}
		return show(cmd, report.Targets(p))
	})
}

func runTargetsAdd(cmd *cobra.Command, args []string) error {
	a, err := amountFlag(cmd, "amount", "target")
	if err != nil {
		return err
	}
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		var amt decimal.Decimal
		if a != nil {
			amt = *a
		}
		p, err = s.Update(p.ID, ledger.AddTarget(tgName, amt))
		if err != nil {
			return err
		}
		return show(cmd, report.Targets(p))
	})
}

func runTargetsDelete(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		if _, err := s.Update(p.ID, ledger.DeleteTarget(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted target %s\n", args[0])
		return nil
	})
}

func runTargetsSuggest(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), currency.Format(ledger.SuggestNextTarget(p.Targets), p.Currency))
		return nil
	})
}
