package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"balanced.io/internal/domain/port"
	"balanced.io/internal/infrastructure/config"
	"balanced.io/internal/infrastructure/logger"
	"balanced.io/internal/infrastructure/metrics"
	"balanced.io/internal/infrastructure/store"
	"balanced.io/internal/infrastructure/validator"
)

var apiServerCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "server",
	Short: "Run API Server.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, appLogger, err := bootstrap(os.Stdout)
		if err != nil {
			return err
		}

		appLogger.LogInfo(ctx, "Configuration loaded",
			"port", cfg.Server.Port,
			"mode", cfg.Ledger.Mode,
			"store", cfg.Store.Driver,
			"signing", cfg.Auth.HMACSecret != "")

		balanceStore, err := store.Open(ctx, cfg.Store)
		if err != nil {
			appLogger.LogError(ctx, "Failed to open balance store", err, "driver", cfg.Store.Driver)
			return fmt.Errorf("failed to open balance store: %w", err)
		}
		defer func() {
			if err := balanceStore.Close(); err != nil {
				appLogger.LogError(context.Background(), "Failed to close balance store", err)
			}
		}()

		var (
			m        *metrics.Metrics
			gatherer prometheus.Gatherer
		)
		if cfg.Metrics.Enabled {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			m = metrics.New(reg)
			gatherer = reg
		}

		ledger, err := newLedger(cfg.Ledger.Mode, balanceStore, appLogger, m)
		if err != nil {
			return err
		}

		var requestValidator port.RequestValidator
		if cfg.Auth.HMACSecret != "" {
			requestValidator = validator.NewHMACValidator(cfg.Auth.HMACSecret, cfg.Auth.TimestampTolerance, appLogger)
		}

		addr := ":" + cfg.Server.Port
		server := &http.Server{
			Addr:         addr,
			Handler:      ledger.Routes(cfg, requestValidator, gatherer),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		}

		// Channel to capture termination signals
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
		defer signal.Stop(signalChan)

		errChan := make(chan error, 1)

		go func() {
			appLogger.LogInfo(ctx, "Starting server",
				"address", addr,
				"backend", balanceStore.Backend())
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		select {
		case <-signalChan:
			appLogger.LogInfo(ctx, "Received termination signal. Initiating graceful shutdown...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				appLogger.LogError(ctx, "Server forced to shutdown", err)
				return err
			}

			appLogger.LogInfo(ctx, "Server stopped gracefully")
		case err := <-errChan:
			appLogger.LogError(ctx, "Server error", err)
			return err
		}

		return nil
	},
}

// bootstrap loads configuration and builds the process logger writing to w.
func bootstrap(w io.Writer) (*config.Config, logger.Logger, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		logger.NewLoggerWithLevel(w, "info").LogError(context.Background(), "Failed to load config", err, "dir", configDir)
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.NewLoggerWithLevel(w, cfg.Log.Level), nil
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(apiServerCmd)
}
