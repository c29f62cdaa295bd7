package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/billsplit/internal/config"
	"github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/render"
	"github.com/mmynk/billsplit/internal/rpc"
	"github.com/mmynk/billsplit/internal/service"
	"github.com/mmynk/billsplit/internal/session"
	"github.com/mmynk/billsplit/internal/storage/sqlite"
	"github.com/mmynk/billsplit/pkg/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg := config.LoadOrEnvWithPath(*configPath)
	logging.Configure(cfg.Logging.Level, cfg.Logging.Format)

	// Initialize the export ledger
	store, err := sqlite.New(cfg.Storage.DatabasePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Storage.DatabasePath)

	fonts, err := render.LoadFonts(cfg.Render.FontRegular, cfg.Render.FontBold)
	if err != nil {
		slog.Error("Failed to load fonts", "error", err)
		os.Exit(1)
	}

	sessions := session.NewRegistry(cfg.Session.TTL)
	stopSweeper := make(chan struct{})
	defer close(stopSweeper)
	go sessions.RunSweeper(cfg.Session.SweepInterval, stopSweeper)

	svc := service.NewBillSplitService(sessions, render.New(fonts), store)
	opts := append(rpc.HandlerOptions(), connect.WithInterceptors(middleware.LoggingInterceptor()))
	rpcPath, rpcHandler := svc.Handler(opts...)

	staticDir, err := filepath.Abs(cfg.Server.StaticPath)
	if err != nil {
		slog.Error("Failed to resolve static path", "error", err)
		os.Exit(1)
	}
	slog.Info("Serving static files", "path", staticDir)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORS)

	r.Handle(rpcPath+"*", rpcHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", staticHandler(staticDir))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(r, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// staticHandler serves the front-end, falling back to index.html for unknown paths.
func staticHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(dir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	})
}
