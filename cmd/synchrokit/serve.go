package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/synchrokit/internal/config"
	"github.com/rpggio/synchrokit/internal/domain/activity"
	"github.com/rpggio/synchrokit/internal/domain/descriptor"
	"github.com/rpggio/synchrokit/internal/mcp"
	"github.com/rpggio/synchrokit/internal/sqlite"
	"github.com/rpggio/synchrokit/internal/transport"
)

const shutdownTimeout = 5 * time.Second

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)
	services := mcp.Services{
		Descriptors: descriptor.NewService(sqlite.NewDescriptorRepository(db), activitySvc, logger),
		Activity:    activitySvc,
	}

	if cfg.Transport.Mode == config.TransportStdio {
		return runStdioMode(ctx, services)
	}
	return runHTTPMode(ctx, services)
}

func runStdioMode(ctx context.Context, services mcp.Services) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	server := mcp.NewServer(mcp.Config{
		Services: services,
		Logger:   logger,
		Version:  version,
	})

	// Run blocks until stdin closes or the context is canceled
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, services mcp.Services) error {
	tenantMiddleware := transport.DefaultTenantMiddleware(mcp.DefaultTenant)
	if cfg.Auth.Enabled {
		tenantMiddleware = transport.AuthMiddleware(sqlite.NewAPIKeyRepository(db))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(mcp.NewHandler(services), tenantMiddleware, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
