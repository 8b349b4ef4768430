package cmd

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/derickschaefer/pitwall/internal/app"
	pwlog "github.com/derickschaefer/pitwall/internal/log"
	"github.com/derickschaefer/pitwall/internal/server"
)

var (
	serveListen  string
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the setups deep-link surface over HTTP",
	Long: `Run an HTTP front-end that answers setups deep links with JSON.

  GET  /setups/{category}[/{car}[/{track}]]?class=...&page=N&select=ID
  POST /api/setups/{category}/search
  GET  /api/categories
  GET  /api/plans
  GET  /health

Every request runs a fresh filter session against the storefront API.
Learned option names are shared through the configured name cache
(bbolt, or redis when several servers run side by side).`,
	Example: `  pitwall serve
  pitwall serve --listen :9090 --origin https://shop.example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if serveListen != "" {
			cfg.ListenAddr = serveListen
		}

		logger := pwlog.NewServer(cfg.Debug)
		deps := app.New(cfg, logger)
		if err := deps.RequireStore(cmd.Context()); err != nil {
			return err
		}
		defer deps.Close()

		srv := server.New(server.Config{
			Catalog:        deps.Client,
			Names:          deps.Names,
			PageSize:       cfg.PageSize,
			AllowedOrigins: serveOrigins,
			Logger:         logger.Named("http"),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("starting server",
			zap.String("addr", cfg.ListenAddr),
			zap.String("api", cfg.BaseURL),
			zap.String("names", cfg.CacheBackend))
		if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default: listen_addr config key, 127.0.0.1:8080)")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "origin", nil, "allowed CORS origin (repeatable, default: *)")
}
