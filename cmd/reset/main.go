package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/mehrclinic/records-service/internal/messaging"
	"github.com/mehrclinic/records-service/internal/quota"
	"github.com/mehrclinic/records-service/internal/store"
)

// Maintenance job: forces the lazy monthly quota reset so totals roll over
// and expired top-ups are pruned even when no request arrives at month
// start. Safe to run from cron at any frequency.
func main() {
	log.Println("Quota Reset Job - Starting")

	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = "./data"
	}

	var st store.Store
	var err error
	if os.Getenv("STORE_BACKEND") == "postgres" {
		st, err = store.NewPGStore()
	} else {
		st, err = store.NewFileStore(dir)
	}
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ledger := quota.NewService(st, nil, messaging.NopPublisher{}, nil)
	g, err := ledger.Get(ctx)
	if err != nil {
		log.Fatalf("Reset pass failed: %v", err)
	}

	for name, entry := range g {
		log.Printf("%s: total=%d topups=%d warningSent=%v",
			name, entry.TotalQuota, len(entry.MonthlyQuotas), entry.WarningSent)
	}

	log.Println("✓ Quota Reset Job - Finished")
}
