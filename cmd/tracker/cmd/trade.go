package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tracker/currency"
	"github.com/rustyeddy/tracker/ledger"
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/progress"
	"github.com/rustyeddy/tracker/report"
	"github.com/rustyeddy/tracker/risk"
	"github.com/rustyeddy/tracker/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Record and manage trades",
	Long: `Record trades in the selected portfolio.

Subcommands:
  add    - Open a new trade
  update - Edit prices, value or notes of an open trade
  close  - Close an open trade with its realized P/L
  delete - Remove a trade
  list   - List trades
  assets - List suggested asset names

Examples:
  tracker trade add --asset BTC --entry 50000 --value 1000 --tp 55000 --sl 48000
  tracker trade add --asset ETH --entry 3000 --risk 1 --tp 3600 --sl 2800
  tracker trade close 01HZX... --pnl 96.50`,
}

var tradeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Open a new trade",
	Long: `Open a trade in the selected portfolio. Without --value the position is
sized so a stop-loss hit costs --risk percent of current capital.
Plans that break the configured risk policy are refused unless --force.`,
	Args: cobra.NoArgs,
	RunE: runTradeAdd,
}

var tradeUpdateCmd = &cobra.Command{
	Use:   "update <trade-id>",
	Short: "Edit an open trade",
	Long:  `Only the flags given are changed. Closed trades cannot be edited.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeUpdate,
}

var tradeCloseCmd = &cobra.Command{
	Use:   "close <trade-id>",
	Short: "Close an open trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeClose,
}

var tradeDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Delete a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeDelete,
}

var tradeListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List trades",
	Args:    cobra.NoArgs,
	RunE:    runTradeList,
}

var tradeAssetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List suggested asset names",
	Args:  cobra.NoArgs,
	RunE:  runTradeAssets,
}

var (
	trAsset  string
	trEntry  string
	trValue  string
	trTP     string
	trSL     string
	trNotes  string
	trPnL    string
	trStatus string
	trRisk   float64
	trForce  bool
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeAddCmd)
	tradeCmd.AddCommand(tradeUpdateCmd)
	tradeCmd.AddCommand(tradeCloseCmd)
	tradeCmd.AddCommand(tradeDeleteCmd)
	tradeCmd.AddCommand(tradeListCmd)
	tradeCmd.AddCommand(tradeAssetsCmd)

	for _, c := range []*cobra.Command{tradeAddCmd, tradeUpdateCmd} {
		c.Flags().StringVar(&trEntry, "entry", "", "entry price")
		c.Flags().StringVar(&trValue, "value", "", "position value in portfolio currency")
		c.Flags().StringVar(&trTP, "tp", "", "take-profit price")
		c.Flags().StringVar(&trSL, "sl", "", "stop-loss price")
		c.Flags().StringVar(&trNotes, "notes", "", "trade thesis or notes")
	}
	tradeAddCmd.Flags().StringVarP(&trAsset, "asset", "a", "", "asset name, e.g. BTC (required)")
	tradeAddCmd.Flags().Float64Var(&trRisk, "risk", 0, "size the position to risk this percent of capital (default risk.default_risk_pct)")
	tradeAddCmd.Flags().BoolVar(&trForce, "force", false, "open the trade despite risk policy violations")
	for _, f := range []string{"asset", "entry", "tp", "sl"} {
		tradeAddCmd.MarkFlagRequired(f)
	}

	tradeCloseCmd.Flags().StringVar(&trPnL, "pnl", "", "realized profit (negative for a loss) (required)")
	tradeCloseCmd.MarkFlagRequired("pnl")

	tradeListCmd.Flags().StringVar(&trStatus, "status", "", "only open or closed trades")
}

func runTradeAdd(cmd *cobra.Command, args []string) error {
	in := portfolio.TradeInput{AssetName: trAsset, Notes: trNotes}
	var err error
	if in.EntryPrice, err = amount("entry_price", trEntry); err != nil {
		return err
	}
	if in.TakeProfitPrice, err = amount("take_profit_price", trTP); err != nil {
		return err
	}
	if in.StopLossPrice, err = amount("stop_loss_price", trSL); err != nil {
		return err
	}

	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		if in.TradeValue, err = tradeValue(cmd, p, in); err != nil {
			return err
		}
		if err := in.Validate(); err != nil {
			return err
		}
		if err := checkRisk(cmd, p, in); err != nil {
			return err
		}
		p, err = s.Update(p.ID, ledger.OpenTrade(in, time.Now()))
		if err != nil {
			return err
		}
		t := p.Trades[len(p.Trades)-1]
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Opened %s %s: risk %s for %s (R:R %.2f)\n",
			t.AssetName, t.ID,
			currency.Format(t.StopLoss, p.Currency),
			currency.Format(t.TakeProfit, p.Currency),
			t.RewardRisk())
		return nil
	})
}

// tradeValue takes --value when given, otherwise sizes the position from
// --risk or the configured default risk.
func tradeValue(cmd *cobra.Command, p portfolio.Portfolio, in portfolio.TradeInput) (decimal.Decimal, error) {
	if cmd.Flags().Changed("value") {
		return amount("trade_value", trValue)
	}
	pct := cfg.Risk.DefaultRiskPct
	if cmd.Flags().Changed("risk") {
		pct = trRisk
	}
	if pct <= 0 {
		return decimal.Zero, fmt.Errorf("give --value or --risk, or set risk.default_risk_pct")
	}
	res, err := risk.Calculate(risk.Inputs{
		Capital:   progress.Capital(p),
		RiskPct:   pct,
		Entry:     in.EntryPrice,
		StopPrice: in.StopLossPrice,
	})
	if err != nil {
		return decimal.Zero, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sized %s to risk %s (%s of capital)\n",
		currency.Format(res.TradeValue, p.Currency),
		currency.Format(res.RiskAmount, p.Currency),
		currency.Percent(pct))
	return res.TradeValue, nil
}

// checkRisk refuses plans that break the configured policy unless --force.
func checkRisk(cmd *cobra.Command, p portfolio.Portfolio, in portfolio.TradeInput) error {
	pol := risk.Policy{
		DefaultRiskPct: cfg.Risk.DefaultRiskPct,
		MaxRiskPct:     cfg.Risk.MaxRiskPct,
		MinRR:          cfg.Risk.MinRR,
		MaxOpenTrades:  cfg.Risk.MaxOpenTrades,
	}
	if pol == (risk.Policy{}) {
		return nil
	}
	dec := risk.Evaluate(pol, in, p)
	if dec.Allowed {
		return nil
	}
	msgs := make([]string, 0, len(dec.Violations))
	for _, v := range dec.Violations {
		msgs = append(msgs, v.Msg)
	}
	if trForce {
		log.Warn("risk policy overridden", zap.Strings("violations", msgs))
		fmt.Fprintf(cmd.ErrOrStderr(), "! %s\n", strings.Join(msgs, "; "))
		return nil
	}
	return fmt.Errorf("risk policy: %s (use --force to open anyway)", strings.Join(msgs, "; "))
}

func runTradeUpdate(cmd *cobra.Command, args []string) error {
	var edit ledger.TradeEdit
	var err error
	if edit.EntryPrice, err = amountFlag(cmd, "entry", "entry_price"); err != nil {
		return err
	}
	if edit.TradeValue, err = amountFlag(cmd, "value", "trade_value"); err != nil {
		return err
	}
	if edit.TakeProfitPrice, err = amountFlag(cmd, "tp", "take_profit_price"); err != nil {
		return err
	}
	if edit.StopLossPrice, err = amountFlag(cmd, "sl", "stop_loss_price"); err != nil {
		return err
	}
	if cmd.Flags().Changed("notes") {
		notes := trNotes
		edit.Notes = &notes
	}

	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		if _, err := s.Update(p.ID, ledger.UpdateTrade(args[0], edit)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated trade %s\n", args[0])
		return nil
	})
}

func runTradeClose(cmd *cobra.Command, args []string) error {
	pnl, err := amount("pnl", trPnL)
	if err != nil {
		return err
	}
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		p, err = s.Update(p.ID, ledger.CloseTrade(args[0], pnl, time.Now()))
		if err != nil {
			return err
		}
		t, _ := p.Trade(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Closed %s %s: %s (%s of capital)\n",
			t.AssetName, t.ID,
			currency.Signed(t.PnL, p.Currency),
			currency.SignedPercent(t.PnLPercentOfCapital()))
		return nil
	})
}

func runTradeDelete(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		if _, err := s.Update(p.ID, ledger.DeleteTrade(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted trade %s\n", args[0])
		return nil
	})
}

func runTradeList(cmd *cobra.Command, args []string) error {
	status := portfolio.Status(strings.ToLower(strings.TrimSpace(trStatus)))
	switch status {
	case "", portfolio.StatusOpen, portfolio.StatusClosed:
	default:
		return fmt.Errorf("--status must be open or closed")
	}
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		if status != "" {
			p.Trades = portfolio.Filter(p.Trades, status)
		}
		return show(cmd, report.Trades(p))
	})
}

func runTradeAssets(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(p.SuggestedAssets(), "\n"))
		return nil
	})
}
