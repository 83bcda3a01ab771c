package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"claimlens/internal/ingest"
)

var (
	ingestTopics  []string
	ingestTimeout time.Duration
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Seed the evidence store with fact-checked claims",
	Long: `Ingest fetches recent fact checks for a set of topics and loads them
into the evidence store. Without a fact-check API key a small built-in
demo dataset is loaded instead, so retrieval always has something to
match against.

Example:
  claimlens ingest
  claimlens ingest --topic "climate change" --topic vaccines`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringArrayVar(&ingestTopics, "topic", nil, "seed topic (repeatable, defaults to the built-in topic list)")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 5*time.Minute, "overall ingestion timeout")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	seeder := ingest.NewSeeder(a.store, a.factChks, logger)
	count, err := seeder.Seed(ctx, ingestTopics)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d claims into the evidence store.\n", count)
	return nil
}
