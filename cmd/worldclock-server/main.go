// Package main implements the worldclock API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
	"github.com/joho/godotenv"
)

var (
	port      = flag.String("port", "8080", "Port for web server (or set PORT)")
	cacheTTL  = flag.Duration("cache-ttl", time.Hour, "How long search responses are cached (or set WORLDCLOCK_CACHE_TTL)")
	rateLimit = flag.Int("rate-limit", 60, "Requests per minute per client, 0 disables (or set WORLDCLOCK_RATE_LIMIT)")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	version   = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("worldclock server v1.0.0")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "error", err)
	}
	applyEnv(logger)

	logger.Info("Server configuration",
		"port", *port,
		"verbose", *verbose,
		"cache_ttl", *cacheTTL,
		"rate_limit", *rateLimit)

	dir := worldclock.New(worldclock.WithLogger(logger))
	server := newServer(dir, logger, config{cacheTTL: *cacheTTL, rateLimit: *rateLimit})

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				server.limiter.sweep()
			}
		}
	}()

	go func() {
		logger.Info("Server starting", "port", *port, "cities", dir.Len())
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

// applyEnv fills flags the command line left at their defaults from the environment.
func applyEnv(logger *slog.Logger) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if v := os.Getenv("PORT"); v != "" && !set["port"] {
		*port = v
	}
	if v := os.Getenv("WORLDCLOCK_CACHE_TTL"); v != "" && !set["cache-ttl"] {
		if d, err := time.ParseDuration(v); err == nil {
			*cacheTTL = d
		} else {
			logger.Warn("Ignoring invalid WORLDCLOCK_CACHE_TTL", "value", v, "error", err)
		}
	}
	if v := os.Getenv("WORLDCLOCK_RATE_LIMIT"); v != "" && !set["rate-limit"] {
		if n, err := strconv.Atoi(v); err == nil {
			*rateLimit = n
		} else {
			logger.Warn("Ignoring invalid WORLDCLOCK_RATE_LIMIT", "value", v, "error", err)
		}
	}
}
