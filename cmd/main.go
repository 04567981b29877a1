// insights-service
//
// Market-insights API for recruiters. One request fans out to the Adzuna
// job-search API (listings + salary histogram), derives a salary average,
// and optionally asks an Azure OpenAI deployment for a recruiter-focused
// narrative. Authenticated users can toggle per-listing bookmarks through
// the idempotent save/unsave routes backed by PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/billo-w/job-app-v2/internal/adzuna"
	"github.com/billo-w/job-app-v2/internal/ai"
	"github.com/billo-w/job-app-v2/internal/config"
	"github.com/billo-w/job-app-v2/internal/db"
	"github.com/billo-w/job-app-v2/internal/insights"
	"github.com/billo-w/job-app-v2/internal/savedjobs"
)

const version = "2.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	if err := godotenv.Load(); err != nil {
		log.Println("[insights-service] No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[insights-service] Config error: %v", err)
	}

	logger := slog.Default()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[insights-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[insights-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[insights-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[insights-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[insights-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[insights-service] Redis connected ✓")

	// ── Provider clients ─────────────────────────────────────────────────────
	if cfg.AdzunaAppID == "" || cfg.AdzunaAppKey == "" {
		log.Println("[insights-service] ADZUNA_APP_ID / ADZUNA_APP_KEY not set — insight queries will fail")
	}
	searcher := adzuna.NewClient(cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.ResultsPerPage, logger)

	var summarizer insights.Summarizer
	if s, err := ai.New(cfg.AzureAIEndpoint, cfg.AzureAIKey, cfg.AzureAIDeployment); err != nil {
		log.Printf("[insights-service] AI summaries disabled: %v", err)
	} else {
		summarizer = s
	}

	// ── Services & routes ────────────────────────────────────────────────────
	insightsSvc := insights.NewService(searcher, summarizer, logger)
	savedSvc := savedjobs.NewService(pool, rdb, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	insights.NewHandler(insightsSvc, logger).RegisterRoutes(mux)
	savedjobs.NewHandler(savedSvc, logger).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // insight requests wait on two upstreams
	}

	go func() {
		log.Printf("[insights-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[insights-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[insights-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[insights-service] Shutdown error: %v", err)
	}
	log.Println("[insights-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "insights-service",
		"version": version,
	})
}
