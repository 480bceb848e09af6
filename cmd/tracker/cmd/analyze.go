package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rustyeddy/tracker/analyze"
	"github.com/rustyeddy/tracker/store"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <trade-id>",
	Short: "Ask Gemini for a review of a closed trade",
	Long: `Send the details of a closed trade to a Gemini model and print its
feedback. The API key is read from the variable named by analyze.api_key_env
(GEMINI_API_KEY by default).

Example:
  tracker analyze 01HZX...`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeModel string

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeModel, "model", "m", "", "model name (default analyze.model)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	model := cfg.Analyze.Model
	if analyzeModel != "" {
		model = analyzeModel
	}

	return withStore(cmd, func(ctx context.Context, s *store.Store) error {
		p, err := selectPortfolio(s)
		if err != nil {
			return err
		}
		t, ok := p.Trade(args[0])
		if !ok {
			return fmt.Errorf("trade %q not found in %s", args[0], p.Name)
		}

		r, err := analyze.Dial(ctx, os.Getenv(cfg.Analyze.APIKeyEnv), model, log)
		if err != nil {
			return err
		}
		text, err := r.Review(ctx, t)
		if err != nil {
			return err
		}
		return show(cmd, fmt.Sprintf("# Review of %s %s\n\n%s", t.AssetName, t.ID, text))
	})
}
