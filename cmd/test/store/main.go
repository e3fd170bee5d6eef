package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go-cityboard-automation/internal/config"
	"go-cityboard-automation/internal/database"
	"go-cityboard-automation/internal/logger"
	"go-cityboard-automation/internal/snapshot"
	"go-cityboard-automation/internal/sources"
)

// Prints how many records each known source has in the configured backend.
func main() {
	path := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatalf("❌ Config invalid: %v", err)
	}
	lg := logger.New("warn")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var store snapshot.Store
	switch cfg.Snapshot.Backend {
	case config.BackendPostgres:
		fmt.Println("Attempting to connect to PostgreSQL...")
		repo, err := database.ConnectDB(ctx, cfg.Snapshot.DatabaseURL, lg)
		if err != nil {
			log.Fatalf("❌ Failed to connect to the database: %v", err)
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("❌ Schema check failed: %v", err)
		}
		store = repo
	case config.BackendRedis:
		fmt.Println("Attempting to connect to Redis...")
		client, err := snapshot.NewRedisClient(ctx, cfg.Snapshot.RedisURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to redis: %v", err)
		}
		defer client.Close()
		store = snapshot.NewRedisStore(client, lg)
	default:
		store = snapshot.NewFileStore(cfg.RootDir, cfg.DataDir, lg)
	}
	fmt.Printf("✅ Connected to %s snapshot backend\n", cfg.Snapshot.Backend)

	for _, name := range sources.Names() {
		def, _ := sources.Lookup(name)
		records, err := store.Load(ctx, def.Identity)
		if err != nil {
			log.Fatalf("❌ Load %s failed: %v", name, err)
		}
		fmt.Printf("📦 %-22s %-28s %d records\n", name, def.Identity.Key(), len(records))
	}
}
