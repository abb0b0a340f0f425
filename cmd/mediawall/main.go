// cmd/mediawall/main.go
//
// mediawall – process entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (system-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY;
//     MEDIAWALL_CONFIG_DEBUG=1 lowers the level to debug).
//
//  3. Run the configuration-integrity pipeline in Strict mode: provision
//     templates, prune unknown properties, migrate, validate.  Any
//     boot-gating failure exits with code 1 before the server starts.
//
//  4. Serve the admin/health surface (healthz, metrics, config API) until
//     SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/mediawall/mediawall/internal/config"
	"github.com/mediawall/mediawall/internal/logger"
	"github.com/mediawall/mediawall/internal/server"
)

const (
	systemEnvPath = "/usr/local/etc/mediawall/global.env"
	defaultAddr   = ":4000"
)

// loadEnv prefers the system-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(systemEnvPath); err == nil {
		_ = godotenv.Load(systemEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	verbose := os.Getenv("MEDIAWALL_CONFIG_DEBUG") != ""

	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY(), verbose)
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Configuration-integrity pipeline ───────────────────────────
	//
	mgr, err := config.Boot(config.Options{
		Mode:    config.Strict,
		Verbose: verbose,
		Logger:  logOut,
	})
	if err != nil {
		// Strict mode exits inside Boot on gating failures; anything
		// surfacing here is unexpected.
		logOut.Fatalw("configuration boot failed", "err", err)
	}

	cfg := mgr.Config()
	logOut.Infow("configuration ready",
		"servers", len(cfg.MediaServers),
		"refresh_minutes", cfg.BackgroundRefreshMinutes,
	)

	//
	// ── 2.  Admin/health server until shutdown signal ──────────────────
	//
	addr := os.Getenv("MEDIAWALL_ADMIN_ADDR")
	if addr == "" {
		addr = defaultAddr
	}
	srv := server.New(addr, mgr, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logOut.Infow("admin server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		logOut.Fatalw("server error", "err", err)
	}
	logOut.Infow("shutdown complete")
}
