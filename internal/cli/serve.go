package cli

import (
	"context"
	"time"

	"resumatch/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server exposing the matching pipeline as a JSON API.

Available endpoints:
- POST /api/analyze: Score a resume against a job description
- POST /api/rewrite: Rewrite one bullet
- POST /api/rewrite/batch: Rewrite several bullets against one job description
- POST /api/bullets/download: Render bullets as a text attachment
- GET /health: Backend configuration and model health
- GET /stats: Circuit breaker, cache, vocabulary and rate limiting info`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}

	// Flags override the loaded configuration
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetString("port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}

	container, err := newContainer(cmd, true)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), 5*time.Second)
		defer cancel()
		container.Close(ctx)
	}()

	deps := server.Dependencies{
		Analyzer:         container.Analyzer,
		GapGenerator:     container.GapGenerator,
		RewriteGenerator: container.RewriteGenerator,
		Embedder:         container.Embedder,
		Cache:            container.Cache,
		Vocabulary:       container.Vocabulary,
		Observability:    container.Observability,
	}
	return server.NewServer(cfg, server.ServerConfigFrom(cfg, Version), deps, container.Logger).Start(cmd.Context())
}
