package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"venue-seating-ops/internal/backup"
	"venue-seating-ops/internal/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := backup.ValidateR2Config(cfg.R2); err != nil {
		log.Fatalf("R2 configuration validation failed: %v", err)
	}
	fmt.Println("R2 configuration is valid")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := backup.NewR2Store(ctx, cfg.R2)
	if err != nil {
		log.Fatalf("Failed to create R2 store: %v", err)
	}

	fmt.Printf("Snapshot storage:\n")
	fmt.Printf("  Bucket:       %s\n", cfg.R2.BucketName)
	fmt.Printf("  Local backup: %s\n", cfg.Defaults.BackupDir)

	if len(os.Args) > 1 && os.Args[1] == "setup" {
		fmt.Println("\nCreating snapshot bucket...")
		if err := store.CreateBucket(ctx); err != nil {
			log.Fatalf("Failed to set up R2 bucket: %v", err)
		}
	}

	if err := store.HealthCheck(ctx); err != nil {
		fmt.Printf("  R2 reachable: no (%v)\n", err)
		fmt.Println("\nTo create the bucket, run: go run ./cmd/setup-r2 setup")
		os.Exit(1)
	}
	fmt.Println("  R2 reachable: yes")
}
