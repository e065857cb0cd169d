package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/monitoring"
)

const (
	shutdownTimeout     = 30 * time.Second
	limiterJanitorEvery = time.Minute
	memorySampleEvery   = 30 * time.Second
	memoryPressure      = 85.0
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server",
			zap.String("addr", httpServer.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.Bool("storage", srv.history != nil),
			zap.Bool("redis", srv.redis.IsEnabled()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		srv.limiter.RunJanitor(gctx, limiterJanitorEvery)
		return nil
	})

	g.Go(func() error {
		monitoring.NewMemoryMonitor(srv.metrics, logger, memorySampleEvery, memoryPressure).Run(gctx)
		return nil
	})

	if srv.privacy != nil && cfg.Storage.RetentionDays > 0 {
		g.Go(func() error {
			srv.privacy.Run(gctx, cfg.Storage.PurgeInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.SystemLogger("shutdown", "draining HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.SystemLogger("shutdown", "server exited")
	return nil
}
