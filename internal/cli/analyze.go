package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var analyzeTimeout time.Duration

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <claim text>",
	Short: "Analyze a single claim and print the result as JSON",
	Long: `Analyze runs the full pipeline on one claim synchronously and prints
the result to stdout.

Example:
  claimlens analyze "The earth is flat"
  claimlens analyze --timeout 2m "5G towers spread viruses"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", time.Minute, "overall analysis timeout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("claim text is empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	if err := a.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring store schema: %w", err)
	}

	result, err := a.pipeline.Analyze(ctx, text)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
