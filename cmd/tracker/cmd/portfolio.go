package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/tracker/ledger"
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/report"
	"github.com/rustyeddy/tracker/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var portfolioCmd = &cobra.Command{
	Use:     "portfolio",
	Aliases: []string{"pf"},
	Short:   "Create, list and manage portfolios",
	Long: `Manage the portfolios of the current user.

Subcommands:
  create   - Create a portfolio with an initial capital and first target
  list     - List portfolios with per-currency totals
  show     - Show the dashboard of a portfolio
  rename   - Rename a portfolio
  capital  - Change the initial capital
  currency - Change the currency code
  delete   - Delete a portfolio
  import   - Import portfolios from a JSON export

Examples:
  tracker portfolio create --name Swing --capital 1000 --target 2000
  tracker portfolio show -p Swing`,
}

var portfolioCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a portfolio",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioCreate,
}

var portfolioListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List portfolios",
	Args:    cobra.NoArgs,
	RunE:    runPortfolioList,
}

var portfolioShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the dashboard of a portfolio",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioShow,
}

var portfolioRenameCmd = &cobra.Command{
	Use:   "rename <name>",
	Short: "Rename a portfolio",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updatePortfolio(cmd, "renamed", ledger.Rename(args[0]))
	},
}

var portfolioCapitalCmd = &cobra.Command{
	Use:   "capital <amount>",
	Short: "Change the initial capital",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := amount("initial_capital", args[0])
		if err != nil {
			return err
		}
		return updatePortfolio(cmd, "initial capital changed", ledger.SetInitialCapital(a))
	},
}

var portfolioCurrencyCmd = &cobra.Command{
	Use:   "currency <code>",
	Short: "Change the currency code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updatePortfolio(cmd, "currency changed", ledger.SetCurrency(args[0]))
	},
}

var portfolioDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a portfolio and all its trades",
	Args:  cobra.NoArgs,
	RunE:  runPortfolioDelete,
}

var portfolioImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import portfolios from a JSON export",
	Long: `Import one portfolio document or an array of them. Older layouts,
such as a single target amount instead of a ladder, are upgraded on the way
in. Portfolios whose id already exists are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runPortfolioImport,
}

var (
	pfName     string
	pfCapital  string
	pfTarget   string
	pfCurrency string
	pfYes      bool
)

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.AddCommand(portfolioCreateCmd)
	portfolioCmd.AddCommand(portfolioListCmd)
	portfolioCmd.AddCommand(portfolioShowCmd)
	portfolioCmd.AddCommand(portfolioRenameCmd)
	portfolioCmd.AddCommand(portfolioCapitalCmd)
	portfolioCmd.AddCommand(portfolioCurrencyCmd)
	portfolioCmd.AddCommand(portfolioDeleteCmd)
	portfolioCmd.AddCommand(portfolioImportCmd)

	portfolioCreateCmd.Flags().StringVarP(&pfName, "name", "n", "", "portfolio name (required)")
	portfolioCreateCmd.Flags().StringVar(&pfCapital, "capital", "", "initial capital (required)")
	portfolioCreateCmd.Flags().StringVar(&pfTarget, "target", "", "first capital target (required)")
	portfolioCreateCmd.Flags().StringVar(&pfCurrency, "currency", portfolio.DefaultCurrency, "ISO 4217 currency code")
	portfolioCreateCmd.MarkFlagRequired("name")
	portfolioCreateCmd.MarkFlagRequired("capital")
	portfolioCreateCmd.MarkFlagRequired("target")

	portfolioDeleteCmd.Flags().BoolVarP(&pfYes, "yes", "y", false, "confirm deletion")
}

func runPortfolioCreate(cmd *cobra.Command, args []string) error {
	capital, err := amount("initial_capital", pfCapital)
	if err != nil {
		return err
	}
	target, err := amount("target", pfTarget)
	if err != nil {
		return err
	}
	p, err := ledger.NewPortfolio(pfName, capital, target, pfCurrency, time.Now())
	if err != nil {
		return err
	}

	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := s.Create(p)
		if err != nil {
			return err
		}
		log.Info("portfolio created", zap.String("portfolio", p.ID))
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created portfolio %s (%s)\n", p.Name, p.ID)
		return nil
	})
}

func runPortfolioList(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		return show(cmd, report.Portfolios(s.List()))
	})
}

func runPortfolioShow(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		return show(cmd, report.Dashboard(p)+"\n"+report.Targets(p)+"\n"+report.Trades(p))
	})
}

func runPortfolioDelete(cmd *cobra.Command, args []string) error {
	if !pfYes {
		return fmt.Errorf("deleting a portfolio removes all its trades; pass --yes to confirm")
	}
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		if err := s.Delete(p.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted portfolio %s (%s)\n", p.Name, p.ID)
		return nil
	})
}

func runPortfolioImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	docs, migrated, err := portfolio.DecodeAll(data)
	if err != nil {
		return err
	}
	if migrated {
		log.Info("import upgraded to the current schema", zap.String("file", args[0]))
	}

	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		var imported, skipped []string
		for _, p := range docs {
			p.Version = 0
			if _, err := s.Create(p); err != nil {
				log.Warn("portfolio not imported", zap.String("portfolio", p.ID), zap.Error(err))
				skipped = append(skipped, p.Name)
				continue
			}
			imported = append(imported, p.Name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d portfolio(s)", len(imported))
		if len(imported) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ": %s", strings.Join(imported, ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout())
		if len(skipped) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  skipped existing: %s\n", strings.Join(skipped, ", "))
		}
		return nil
	})
}

// updatePortfolio applies u to the selected portfolio.
func updatePortfolio(cmd *cobra.Command, done string, u ledger.Updater) error {
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		p, err = s.Update(p.ID, u)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %s\n", p.Name, done)
		return nil
	})
}
