package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rustyeddy/tracker/journal"
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/store"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trades of a portfolio",
	Long: `Export the selected portfolio.

Subcommands:
  csv  - Trades as CSV
  org  - An Org-mode journal with statistics and one entry per trade
  json - The portfolio document, importable with "portfolio import"

Examples:
  tracker export csv -o trades.csv
  tracker export org -p Swing > swing.org`,
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export trades as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, func(w io.Writer, p portfolio.Portfolio) error {
			return journal.WriteCSV(w, p)
		})
	},
}

var exportOrgCmd = &cobra.Command{
	Use:   "org",
	Short: "Export an Org-mode trade journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, func(w io.Writer, p portfolio.Portfolio) error {
			return journal.WritePortfolioOrg(w, p, time.Now())
		})
	},
}

var exportJSONCmd = &cobra.Command{
	Use:   "json",
	Short: "Export the portfolio document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, func(w io.Writer, p portfolio.Portfolio) error {
			data, err := portfolio.Encode(p)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "%s\n", data)
			return err
		})
	},
}

var exportOutput string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportCSVCmd)
	exportCmd.AddCommand(exportOrgCmd)
	exportCmd.AddCommand(exportJSONCmd)

	exportCmd.PersistentFlags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, write func(io.Writer, portfolio.Portfolio) error) error {
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}

		if exportOutput == "" {
			return write(cmd.OutOrStdout(), p)
		}
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		if err := write(f, p); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %s to %s\n", p.Name, exportOutput)
		return nil
	})
}
