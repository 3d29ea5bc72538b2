package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/finsightlab/finsight/internal/api"
	"github.com/finsightlab/finsight/internal/api/handlers"
	"github.com/finsightlab/finsight/internal/scheduler"
	"github.com/finsightlab/finsight/internal/scheduler/jobs"
	"github.com/finsightlab/finsight/pkg/config"
	"github.com/finsightlab/finsight/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                - Health check
  POST /api/analyze           - Run the recommendation pipeline
  GET  /api/timeframes        - Available timeframe options
  GET  /api/sectors           - Available sector filters
  GET  /api/runs/{id}         - Run diagnostics
  GET  /api/runs/{id}/events  - Stage progress over websocket

Example:
  go run ./cmd/finsight api
  go run ./cmd/finsight api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FinSight API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Wire the pipeline
	orchestrator, registry, discoverer, err := buildPipeline(cfg, log)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	// 4. Create handlers and router
	analyzeHandler := handlers.NewAnalyzeHandler(orchestrator, log)
	runsHandler := handlers.NewRunsHandler(registry, log)
	router := api.NewRouter(analyzeHandler, runsHandler, log)

	// 5. Create server
	server := api.New(cfg, log, router)

	// 6. Optionally run the universe refresh scheduler alongside the API
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled && discoverer != nil {
		sched = scheduler.New(log)
		job := jobs.NewUniverseRefreshJob(discoverer, cfg.Scheduler.UniverseRefresh, log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("register universe refresh job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 7. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
