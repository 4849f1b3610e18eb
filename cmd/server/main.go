package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/madfam-io/ec0249-engine/internal/api"
	"github.com/madfam-io/ec0249-engine/internal/config"
	"github.com/madfam-io/ec0249-engine/internal/events"
	"github.com/madfam-io/ec0249-engine/internal/schema"
	"github.com/madfam-io/ec0249-engine/internal/storage"
	"github.com/madfam-io/ec0249-engine/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the template catalog.
	tpls, err := schema.LoadDir(cfg.TemplatesDir)
	if err != nil {
		log.Error("failed to load templates", "dir", cfg.TemplatesDir, "error", err)
		os.Exit(1)
	}
	catalog, err := schema.NewCatalog(tpls)
	if err != nil {
		log.Error("invalid template catalog", "error", err)
		os.Exit(1)
	}
	log.Info("template catalog loaded", "templates", catalog.Len())

	// Persistence collaborator: external KV store, or memory-only.
	var st storage.Store
	var client *storage.Client
	if cfg.StorageURL != "" {
		client = storage.NewClient(cfg.StorageURL, cfg.StorageAPIKey)
		st = client
	} else {
		log.Warn("STORAGE_URL not set, documents are not durable")
		st = storage.NewMemory()
	}

	// Notification surface: log every engine event.
	bus := events.NewBus(log)
	bus.SubscribeAll(func(ev events.Event) {
		log.Info("event", "name", ev.Name, "document_id", ev.DocumentID)
	})

	docs := store.New(catalog, st, bus, log, cfg.StorageKeyPrefix)
	if err := docs.LoadAll(ctx); err != nil {
		log.Error("failed to hydrate documents", "error", err)
		os.Exit(1)
	}
	log.Info("documents hydrated", "count", len(docs.List()))

	srv := api.NewServer(docs, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if client != nil {
			client.Close()
		}
	}()

	log.Info("starting ec0249-engine", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
