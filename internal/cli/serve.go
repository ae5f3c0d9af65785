package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"widealign/internal/config"
	"widealign/internal/httpd"
)

// shutdownTimeout bounds graceful shutdown after the context is cancelled.
const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command running the HTTP measurement adapter.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		lineWidth  float64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP measurement adapter",
		Long: `Serve runs an HTTP adapter around a fresh layout store. External
observers push view and wrapper widths to the /v1 endpoints and read
derived left gaps back; Prometheus metrics are exposed on /metrics.

The server shuts down gracefully on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if cmd.Flags().Changed("line") {
				cfg.Serve.LineWidth = lineWidth
			}

			logger := loggerFromContext(cmd.Context())
			srv := &http.Server{
				Addr:              cfg.Serve.Addr,
				Handler:           httpd.NewServer(cfg.Serve, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.Serve.Addr, "line_width", cfg.Serve.LineWidth)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (default: XDG location)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().Float64Var(&lineWidth, "line", 0, "initial line width in pixels (overrides config)")

	return cmd
}
