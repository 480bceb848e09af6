package cmd

import (
	"fmt"

	"github.com/rustyeddy/tracker/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage the tracker configuration file.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  tracker config init
  tracker config validate -f ~/.config/tracker/config.yaml`,
	// config commands must work while the file is missing or broken
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "", "output config file path (default $TRACKER_HOME/config.yaml)")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (default $TRACKER_HOME/config.yaml)")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configInitOutput
	if path == "" {
		path = defaultConfigPath()
	}
	if err := config.Default().SaveToFile(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created default configuration: %s\n", path)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configValidatePath
	if path == "" {
		path = defaultConfigPath()
	}
	c, err := config.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", path)
	fmt.Fprintf(out, "  User: %s\n", c.User.ID)
	fmt.Fprintf(out, "  Store: %s (conflict: %s)\n", c.Store.Type, c.Store.Conflict)
	fmt.Fprintf(out, "  Log: %s/%s\n", c.Log.Level, c.Log.Encoding)
	return nil
}
