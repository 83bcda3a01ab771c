package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"claimlens/internal/api"
	"claimlens/internal/worker"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP service",
	Long: `Serve starts the asynchronous analysis service:

  POST /api/analyze         submit a claim, returns a job id
  GET  /api/status/:job_id  poll for the result
  GET  /health              liveness probe

Submissions are rate limited per client IP. Analysis runs on a fixed
worker pool behind the endpoint.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	serveCmd.Flags().Int("workers", 0, "analysis worker count (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Workers = workers
	}

	logger := newLogger()

	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	if err := a.store.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring store schema: %w", err)
	}

	manager := worker.NewManager(a.pipeline, cfg.Workers, logger)
	manager.Start()
	defer manager.Shutdown()

	server := api.NewServer(manager, cfg.Server, logger)
	return server.Run()
}
