// Package main runs the Deezer Connect server: a browser login flow over
// HTTP plus MCP tools served over streamable HTTP or stdio.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-training/deezer-connect/pkg/config"
	"github.com/go-training/deezer-connect/pkg/logger"
	"github.com/go-training/deezer-connect/pkg/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()

	// Initialize logger with the specified log level
	logger.NewWithLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	storeConfig := cfg.StoreConfig()
	logins, err := store.NewStore(storeConfig)
	if err != nil {
		slog.Error("Failed to create store", "type", storeConfig.Type, "error", err)
		os.Exit(1)
	}

	srv := NewServer(cfg, cfg.DeezerClient(), logins)

	if cfg.Transport == "stdio" {
		slog.Info("Serving MCP tools over stdio")
		if err := srv.ServeStdio(); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
		return
	}

	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	m := graceful.NewManager()

	m.AddRunningJob(func(ctx context.Context) error {
		slog.Info("Deezer connect server listening",
			"addr", cfg.Addr,
			"callback", cfg.BaseURL()+"/callback",
			"store", storeConfig.Type,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "err", err)
			return err
		}
		return nil
	})

	m.AddShutdownJob(func() error {
		slog.Info("Shutdown signal received, shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Error("Server forced to shutdown", "err", err)
			return err
		}
		return nil
	})

	// Ensure Redis connection is closed on shutdown
	if redisStore, ok := logins.(*store.RedisStore); ok {
		m.AddShutdownJob(func() error {
			redisStore.Close()
			return nil
		})
	}

	<-m.Done()
	slog.Info("Server shutdown gracefully")
}
