package main

import (
	"context"
	"errors"
	"log"
	"time"

	"docqa/internal/activities"
	"docqa/internal/analysis"
	"docqa/internal/config"
	"docqa/internal/storage"
	"docqa/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingToken) {
			log.Fatal("docqa worker: analysis token missing; set DOCQA_ANALYSIS_TOKEN (or HACKRX_AUTH_TOKEN)")
		}
		log.Fatal(err)
	}
	if cfg.TemporalAddress == "" {
		log.Fatal("docqa worker: DOCQA_TEMPORAL_ADDRESS is required")
	}

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)

	analysisClient := analysis.New(cfg.DirectClientConfig())
	a := activities.New(analysisClient, cfg.Normalizer(), nil)
	if cfg.PostgresURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db, err := storage.NewDB(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatal(err)
		}
		a = activities.New(analysisClient, cfg.Normalizer(), storage.NewAuditRepo(db))
	}
	activities.Register(w, a)

	log.Printf("docqa worker listening on %s queue=%s audit=%t", cfg.TemporalAddress, cfg.TemporalTaskQueue, cfg.PostgresURL != "")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal(err)
	}
}
