// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the insights service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	AdzunaAppID  string
	AdzunaAppKey string

	AzureAIEndpoint   string
	AzureAIKey        string
	AzureAIDeployment string

	ResultsPerPage int // listing sample size requested per search
}

// Load reads environment variables and returns a validated Config.
// Adzuna and Azure AI credentials are optional: the provider clients degrade
// gracefully without them, so their absence is a warning, not a startup error.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	perPage := 20
	if s := os.Getenv("RESULTS_PER_PAGE"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("RESULTS_PER_PAGE must be a positive integer, got %q", s)
		}
		perPage = v
	}

	deployment := os.Getenv("AZURE_AI_DEPLOYMENT")
	if deployment == "" {
		deployment = "gpt-4o-mini"
	}

	return &Config{
		Port:              port,
		DatabaseURL:       dbURL,
		RedisURL:          redisURL,
		AdzunaAppID:       os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:      os.Getenv("ADZUNA_APP_KEY"),
		AzureAIEndpoint:   os.Getenv("AZURE_AI_ENDPOINT"),
		AzureAIKey:        os.Getenv("AZURE_AI_KEY"),
		AzureAIDeployment: deployment,
		ResultsPerPage:    perPage,
	}, nil
}
