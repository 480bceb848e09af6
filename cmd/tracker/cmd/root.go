package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rustyeddy/tracker/config"
	"github.com/rustyeddy/tracker/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "A personal trading portfolio tracker",
	Long: `Tracker records the trades of one or more portfolios and measures them
against a ladder of capital targets.

It provides tools for:
  - Opening, editing and closing trades with take-profit and stop-loss plans
  - Tracking progress toward capital targets and projecting trades to go
  - Monthly, per-asset and overall performance statistics
  - Exporting trades to CSV and Org-mode journals
  - AI reviews of closed trades
  - Syncing portfolios through SQLite or Redis

Run "tracker config init" to write a default configuration.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

var (
	cfgPath       string
	storeFlag     string
	dbFlag        string
	userFlag      string
	portfolioFlag string
	plainFlag     bool
	logLevelFlag  string

	cfg *config.Config
	log *zap.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "config file (default $TRACKER_HOME/config.yaml)")
	pf.StringVar(&storeFlag, "store", "", "journal backend: sqlite, redis or memory")
	pf.StringVar(&dbFlag, "db", "", "path to the SQLite database")
	pf.StringVarP(&userFlag, "user", "u", "", "user id (overrides config and login)")
	pf.StringVarP(&portfolioFlag, "portfolio", "p", "", "portfolio id or name")
	pf.BoolVar(&plainFlag, "plain", false, "print raw markdown")
	pf.StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")
}

func defaultConfigPath() string {
	return filepath.Join(config.Dir(), "config.yaml")
}

// setup loads the configuration, applies flag overrides and builds the
// logger. A missing default config file is not an error.
func setup(cmd *cobra.Command, args []string) error {
	path := cfgPath
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	loaded, err := config.LoadFromFile(path)
	switch {
	case err == nil:
		cfg = loaded
	case !explicit && errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	default:
		return err
	}

	if storeFlag != "" {
		cfg.Store.Type = storeFlag
	}
	if dbFlag != "" {
		cfg.Store.DBPath = dbFlag
	}
	if userFlag != "" {
		cfg.User.ID = userFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if plainFlag {
		cfg.Display.PlainText = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err = logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	log.Debug("config loaded", zap.String("path", path), zap.String("store", cfg.Store.Type))
	return nil
}
