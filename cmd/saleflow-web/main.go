// Command saleflow-web runs the sale process API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scrypster/saleflow/internal/audit"
	"github.com/scrypster/saleflow/internal/backup"
	"github.com/scrypster/saleflow/internal/catalog"
	"github.com/scrypster/saleflow/internal/config"
	"github.com/scrypster/saleflow/internal/engine"
	"github.com/scrypster/saleflow/internal/server"
	"github.com/scrypster/saleflow/internal/storage"
	"github.com/scrypster/saleflow/internal/storage/postgres"
	"github.com/scrypster/saleflow/internal/storage/sqlite"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Stage catalog: built-in Portuguese pipeline unless overridden
	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
		if err != nil {
			log.Fatalf("Failed to load stage catalog: %v", err)
		}
		log.Printf("Loaded stage catalog from %s (%d stages)", cfg.Catalog.Path, cat.MaxStage()+1)
	}

	// Initialize storage. Both backends implement the process store and the
	// audit store over the same database.
	var processStore storage.ProcessStore
	var auditStore storage.AuditStore
	var dbPath string

	switch cfg.Storage.StorageEngine {
	case "postgres":
		store, err := postgres.NewStore(cfg.Storage.PostgresDSN)
		if err != nil {
			log.Fatalf("Failed to initialize postgres storage: %v", err)
		}
		defer store.Close()
		processStore, auditStore = store, store
	default:
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		dbPath = cfg.Storage.DataPath + "/saleflow.db"
		store, err := sqlite.NewStore(dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize sqlite storage: %v", err)
		}
		defer store.Close()
		processStore, auditStore = store, store
	}

	if cfg.Breaker.Enabled {
		breakerCfg := storage.DefaultBreakerConfig()
		breakerCfg.MaxFailures = uint32(cfg.Breaker.MaxFailures)
		breakerCfg.Timeout = cfg.Breaker.Timeout
		processStore = storage.NewBreakerStore(processStore, breakerCfg)
	}

	auditor := audit.New(auditStore, audit.Policy(cfg.Audit.Policy))

	eng, err := engine.New(cat, processStore, auditor, engine.Config{
		CommitTimeout: cfg.Engine.CommitTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Backup.Enabled && dbPath != "" {
		backupDir := cfg.Backup.Dir
		if backupDir == "" {
			backupDir = cfg.Storage.DataPath + "/backups"
		}
		svc, err := backup.NewService(backup.Config{
			DBPath:   dbPath,
			Dir:      backupDir,
			Interval: cfg.Backup.Interval,
			Verify:   true,
		})
		if err != nil {
			log.Fatalf("Failed to initialize backup service: %v", err)
		}
		go func() {
			if err := svc.Start(ctx); err != nil && err != context.Canceled {
				log.Printf("Backup service stopped: %v", err)
			}
		}()
	}

	if cfg.Catalog.Path != "" {
		watcher := catalog.NewWatcher(cfg.Catalog.Path, func(path string) {
			log.Printf("Stage catalog %s changed; restart to apply the new pipeline", path)
		})
		if err := watcher.Start(); err != nil {
			log.Printf("Catalog watcher unavailable: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	addr, _, err := server.Start(ctx, cfg, eng)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("Saleflow API running at http://%s", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}
