package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/tracker/config"
	"github.com/rustyeddy/tracker/ledger"
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(t *testing.T, name string) portfolio.Portfolio {
	t.Helper()
	p, err := ledger.NewPortfolio(name, decimal.NewFromInt(1000), decimal.NewFromInt(2000), "USD", time.Now())
	require.NoError(t, err)
	return p
}

func TestFindPortfolio(t *testing.T) {
	a, b, b2 := named(t, "Alpha"), named(t, "Beta"), named(t, "beta")

	_, err := findPortfolio(nil, "")
	assert.ErrorContains(t, err, "no portfolios yet")

	got, err := findPortfolio([]portfolio.Portfolio{a}, "")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = findPortfolio([]portfolio.Portfolio{a, b}, "")
	assert.ErrorContains(t, err, "choose one with --portfolio")

	got, err = findPortfolio([]portfolio.Portfolio{a, b}, "ALPHA")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got, err = findPortfolio([]portfolio.Portfolio{a, b, b2}, b2.ID)
	require.NoError(t, err)
	assert.Equal(t, b2.ID, got.ID)

	_, err = findPortfolio([]portfolio.Portfolio{a, b, b2}, "beta")
	assert.ErrorContains(t, err, "use the id")

	_, err = findPortfolio([]portfolio.Portfolio{a}, "gamma")
	assert.ErrorIs(t, err, store.ErrPortfolioNotFound)
}

func TestParseTargets(t *testing.T) {
	got, err := parseTargets([]string{"Double=2000", "Moon = 10000.50"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Double", got[0].Name)
	assert.True(t, got[1].Amount.Equal(decimal.RequireFromString("10000.50")))

	_, err = parseTargets([]string{"2000"})
	assert.ErrorContains(t, err, "want name=amount")

	_, err = parseTargets([]string{"x=lots"})
	assert.ErrorIs(t, err, portfolio.ErrInvalidInput)
}

// resetFlags clears flag values left behind by an earlier Execute.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI against a SQLite database in dir.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	base := []string{"--plain", "--user", "alice", "--db", filepath.Join(dir, "tracker.db")}
	rootCmd.SetArgs(append(base, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := execute(t, dir, args...)
	require.NoError(t, err, out)
	return out
}

func TestCLIFlow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRACKER_HOME", dir)

	out := mustExecute(t, dir, "portfolio", "create", "--name", "Swing", "--capital", "1000", "--target", "2000")
	assert.Contains(t, out, "Created portfolio Swing")

	out = mustExecute(t, dir, "trade", "add", "--asset", "btc", "--entry", "50", "--value", "1000", "--tp", "60", "--sl", "45")
	assert.Contains(t, out, "risk $100.00 for $200.00 (R:R 2.00)")
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 4)
	tradeID := strings.TrimSuffix(fields[3], ":")

	out = mustExecute(t, dir, "trade", "close", tradeID, "--pnl", "250")
	assert.Contains(t, out, "+$250.00 (+25.00% of capital)")

	_, err := execute(t, dir, "trade", "update", tradeID, "--notes", "too late")
	assert.ErrorIs(t, err, ledger.ErrTradeClosed)

	out = mustExecute(t, dir, "portfolio", "show")
	assert.Contains(t, out, "$1,250.00")

	out = mustExecute(t, dir, "stats")
	assert.Contains(t, out, "BTC")

	out = mustExecute(t, dir, "targets", "add", "--name", "Moon", "--amount", "5000")
	assert.Contains(t, out, "Moon")

	out = mustExecute(t, dir, "export", "csv")
	assert.Contains(t, out, "BTC")
	assert.Contains(t, out, tradeID)

	out = mustExecute(t, dir, "portfolio", "list")
	assert.Contains(t, out, "Swing")

	out = mustExecute(t, dir, "version")
	assert.Contains(t, out, "tracker version")
}

func TestCLIRiskPolicy(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRACKER_HOME", dir)

	c := config.Default()
	c.Risk.MaxRiskPct = 2
	c.Risk.MinRR = 1.5
	require.NoError(t, c.SaveToFile(filepath.Join(dir, "config.yaml")))

	mustExecute(t, dir, "portfolio", "create", "--name", "Sized", "--capital", "1250", "--target", "2500")

	out := mustExecute(t, dir, "trade", "add", "--asset", "eth", "--entry", "100", "--tp", "130", "--sl", "90", "--risk", "2")
	assert.Contains(t, out, "Sized $250.00 to risk $25.00 (2.00% of capital)")
	assert.Contains(t, out, "risk $25.00 for $75.00 (R:R 3.00)")

	_, err := execute(t, dir, "trade", "add", "--asset", "sol", "--entry", "100", "--tp", "110", "--sl", "90")
	assert.ErrorContains(t, err, "give --value or --risk")

	_, err = execute(t, dir, "trade", "add", "--asset", "sol", "--entry", "100", "--value", "1000", "--tp", "110", "--sl", "90")
	assert.ErrorContains(t, err, "risk policy")

	out = mustExecute(t, dir, "trade", "add", "--asset", "sol", "--entry", "100", "--value", "1000", "--tp", "110", "--sl", "90", "--force")
	assert.Contains(t, out, "Opened SOL")

	out = mustExecute(t, dir, "trade", "list")
	assert.Contains(t, out, "ETH")
	assert.Contains(t, out, "SOL")
}
