package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rustyeddy/tracker/auth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as a user",
	Long: `Issue a signed token for a user id and store it. Later commands read
their portfolios under that id. The signing secret comes from auth.secret or
the variable named by auth.secret_env.

Example:
  TRACKER_AUTH_SECRET=... tracker login --user alice --email alice@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := os.Remove(cfg.Auth.TokenFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the current user id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := currentUser()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), user)
		return nil
	},
}

var loginEmail string

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email recorded in the token")
}

func runLogin(cmd *cobra.Command, args []string) error {
	user := userFlag
	if user == "" {
		user = cfg.User.ID
	}
	token, exp, err := issuer().Issue(user, loginEmail)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := auth.SaveToken(cfg.Auth.TokenFile, token); err != nil {
		return err
	}
	log.Info("logged in", zap.String("user", user), zap.Time("expires", exp))
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s until %s\n", user, exp.Local().Format("2006-01-02 15:04"))
	return nil
}
