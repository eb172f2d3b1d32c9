package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantfold/riskengine/internal/api"
	"github.com/quantfold/riskengine/internal/api/handlers"
	"github.com/quantfold/riskengine/pkg/config"
	"github.com/quantfold/riskengine/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the risk API server",
	Long: `Starts the HTTP API server.

Endpoints:
  GET  /health              - health check
  POST /api/var/{method}    - VaR from a return series (historical|parametric|monte_carlo)
  POST /api/pfe/scenario    - scenario PFE from P&L

Example:
  go run ./cmd/riskctl api
  go run ./cmd/riskctl api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	varHandler := handlers.NewVaRHandler(log)
	pfeHandler := handlers.NewPFEHandler(log)
	router := api.NewRouter(varHandler, pfeHandler, log)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("API server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
