package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"wealth_planner/pkg/api/planning"
	"wealth_planner/pkg/core/config"
	"wealth_planner/pkg/core/logger"
	"wealth_planner/pkg/core/projection"
	"wealth_planner/pkg/core/store"
)

func main() {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	itemStore, closeStore, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	var engine projection.Projector = projection.NewEngine()
	if ttl := cfg.TTL(); ttl > 0 {
		engine = projection.NewCachedEngine(projection.NewEngine(), ttl)
		fmt.Printf("[CACHE] Projection cache enabled (ttl %s)\n", ttl)
	}

	handler := planning.NewHandler(itemStore, engine, cfg.Assumptions)
	router := planning.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	fmt.Printf("API server starting on %s...\n", cfg.Addr())
	fmt.Println("  - GET  /api/kinds")
	fmt.Println("  - GET  /api/assumptions")
	fmt.Println("  - POST /api/projection")
	fmt.Println("  - POST /api/validate")
	fmt.Println("  - GET  /api/teams/{team}/clients/{client}/balance-sheet")
	fmt.Println("  - PUT  /api/teams/{team}/clients/{client}/balance-sheet")
	fmt.Println("  - GET  /api/teams/{team}/clients/{client}/projection  (format=json|markdown|html|xlsx)")
	fmt.Println("  - POST /api/teams/{team}/clients/{client}/scenarios")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}

// openStore prefers Postgres when DATABASE_URL is set and falls back to the
// local SQLite file otherwise.
func openStore(ctx context.Context, cfg *config.Config) (store.ItemStore, func(), error) {
	if cfg.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgresStore(store.GetPool())
		if err := pg.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		fmt.Println("[STORE] Using Postgres")
		return pg, store.Close, nil
	}

	lite, err := store.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	fmt.Printf("[STORE] Using SQLite at %s\n", cfg.SQLitePath)
	return lite, func() { lite.Close() }, nil
}
