// Command cajitad is the crop-session daemon for the Cajita storefront.
// It holds the in-progress photo-box session, persists it across editor
// navigations and submits the finished box to the order service.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/copiiworld/cajita-go/internal/api"
	"github.com/copiiworld/cajita-go/internal/events"
	"github.com/copiiworld/cajita-go/internal/orderapi"
	"github.com/copiiworld/cajita-go/internal/presets"
	"github.com/copiiworld/cajita-go/internal/session"
	"github.com/copiiworld/cajita-go/internal/snapshot"
	"github.com/copiiworld/cajita-go/internal/submit"
)

func main() {
	// .env overlay before flags read their env defaults
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env", "err", err)
	}

	var (
		addr     = flag.String("addr", ":8900", "HTTP listen address")
		dataDir  = flag.String("data-dir", "", "data directory (default: ~/.local/share/cajita)")
		orderAPI = flag.String("order-api", envOr("ORDER_API_URL", "http://localhost:8000"), "order service base URL")
		assetDir = flag.String("asset-dir", envOr("CAJITA_ASSET_DIR", "assets"), "preset image asset directory")
		debug    = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	// Configure logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Resolve data directory
	if *dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("cannot determine home directory", "err", err)
			os.Exit(1)
		}
		*dataDir = filepath.Join(home, ".local", "share", "cajita")
	}
	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		slog.Error("cannot create data directory", "path", *dataDir, "err", err)
		os.Exit(1)
	}

	// Graceful shutdown context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Snapshot store
	kv, err := snapshot.OpenSQLite(filepath.Join(*dataDir, "sessions.db"))
	if err != nil {
		slog.Error("cannot open snapshot store", "err", err)
		os.Exit(1)
	}
	defer kv.Close()
	codec := snapshot.NewCodec(kv)

	// Event bus + session
	bus := events.NewBus()
	sess := session.New(bus)

	// Preset catalog
	catalog, err := presets.NewCatalog(filepath.Join(*assetDir, "presets.json"))
	if err != nil {
		slog.Error("cannot load preset catalog", "err", err)
		os.Exit(1)
	}
	defer catalog.Close()
	prov := presets.NewProvisioner(catalog, presets.DirFetcher{Root: *assetDir}, sess)

	// Order service + assembler
	orders := orderapi.NewClient(*orderAPI)
	assembler := submit.New(sess, orders, codec)

	// HTTP server
	router := api.NewRouter(sess, codec, assembler, prov, orders, bus)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout (needed for SSE)
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("cajitad listening", "addr", *addr, "order_api", *orderAPI, "data", *dataDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("server shutdown error", "err", err)
	}

	slog.Info("shutdown complete")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
