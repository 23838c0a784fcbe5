package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"docqa/internal/analysis"
	"docqa/internal/api"
	"docqa/internal/config"
	"docqa/internal/storage"

	"github.com/joho/godotenv"
	tclient "go.temporal.io/sdk/client"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingToken) {
			log.Fatal("docqa api: analysis token missing; set DOCQA_ANALYSIS_TOKEN (or HACKRX_AUTH_TOKEN)")
		}
		log.Fatal(err)
	}

	var audit api.AuditStore
	if cfg.PostgresURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		db, err := storage.NewDB(ctx, cfg.PostgresURL)
		if err != nil {
			cancel()
			log.Fatal(err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatal(err)
		}
		cancel()
		defer db.Close()
		audit = storage.NewAuditRepo(db)
	}

	var jobs api.JobClient
	if cfg.TemporalAddress != "" {
		c, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
		if err != nil {
			log.Fatal(err)
		}
		defer c.Close()
		jobs = c
	}

	h := api.NewServer(cfg, analysis.New(cfg.DirectClientConfig()), audit, jobs)
	log.Printf("docqa api listening on %s endpoint=%s audit=%t jobs=%t", cfg.APIAddr, cfg.AnalysisEndpoint, audit != nil, jobs != nil)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
