package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pagemeta/pagemeta/internal/observability"
	"github.com/pagemeta/pagemeta/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Ctrl+C (SIGINT) or SIGTERM triggers a graceful shutdown: in-flight
requests finish, then the store is closed and logs are flushed.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	observability.InitServerLogger("pagemeta", cfg.Logging.Level)
	logger := observability.ServerLogger

	logger.Info("initializing server",
		zap.String("version", versionInfo.Version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("rate_limiting", cfg.RateLimiting.Enabled),
		zap.Int("requests_per_minute", cfg.RateLimiting.RequestsPerMinute))

	comps, err := buildComponents(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer comps.Close() // nolint:errcheck // best-effort cleanup

	srv := server.New(cfg.Server, server.Deps{
		Engine:  comps.Engine,
		Limiter: comps.Limiter,
		Store:   comps.Store,
		Version: versionInfo.Version,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-stop:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
