// Package insights contains the market-insights aggregation logic.
// It is transport-agnostic: the HTTP handler is a thin layer over Service.
package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/billo-w/job-app-v2/internal/adzuna"
	"github.com/billo-w/job-app-v2/internal/ai"
	"github.com/billo-w/job-app-v2/internal/model"
)

// ErrUpstreamUnavailable is the user-facing failure when the job-search
// source is unreachable or errored. There is no partial report without
// listings: total count and salary data derive from the same call.
var ErrUpstreamUnavailable = errors.New("job search provider unavailable")

// ValidationError wraps a user-correctable input problem. No upstream call
// is made once validation fails.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// JobSearcher is the job-search provider contract.
type JobSearcher interface {
	SearchJobs(ctx context.Context, q model.Query) (*adzuna.SearchResult, error)
}

// Summarizer is the narrative-summary provider contract. A nil Summarizer
// means summaries are disabled for the deployment.
type Summarizer interface {
	Summarize(ctx context.Context, sc ai.SummaryContext) (string, error)
}

// Service aggregates provider data into an InsightsReport. It holds no
// per-request state; every call is a fresh fetch.
type Service struct {
	searcher   JobSearcher
	summarizer Summarizer
	logger     *slog.Logger
}

// NewService returns a configured Service. summarizer may be nil.
func NewService(searcher JobSearcher, summarizer Summarizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{searcher: searcher, summarizer: summarizer, logger: logger}
}

// GetInsights validates the query, fetches listings and salary data, and
// optionally asks for an AI summary. A search failure fails the whole
// operation; a summary failure only leaves AISummaryHTML absent.
func (s *Service) GetInsights(ctx context.Context, q model.Query, wantSummary bool) (*model.InsightsReport, error) {
	normalised, err := NormaliseQuery(q)
	if err != nil {
		return nil, err
	}

	result, err := s.searcher.SearchJobs(ctx, normalised)
	if err != nil {
		s.logger.Warn("job search failed", "what", normalised.What, "where", normalised.Where, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	report := &model.InsightsReport{
		Query:             normalised,
		TotalMatchingJobs: result.TotalCount,
		JobListings:       result.Listings,
		SalaryData:        DeriveSalaryStat(result.Histogram),
	}
	if report.JobListings == nil {
		report.JobListings = []model.JobListing{}
	}

	if wantSummary {
		if html, ok := s.summarize(ctx, report); ok {
			report.AISummaryHTML = &html
		}
	}

	return report, nil
}

// summarize requests the narrative summary; every failure is absorbed.
func (s *Service) summarize(ctx context.Context, report *model.InsightsReport) (string, bool) {
	if s.summarizer == nil {
		s.logger.Warn("summary requested but summarizer is not configured")
		return "", false
	}

	html, err := s.summarizer.Summarize(ctx, ai.SummaryContext{
		Query:      report.Query,
		TotalJobs:  report.TotalMatchingJobs,
		SalaryData: report.SalaryData,
		Listings:   report.JobListings,
	})
	if err != nil {
		s.logger.Warn("summary generation failed", "what", report.Query.What, "err", err)
		return "", false
	}
	return html, true
}

// NormaliseQuery validates search criteria and normalises the country code
// to lowercase. Returns a ValidationError on bad input.
func NormaliseQuery(q model.Query) (model.Query, error) {
	q.What = strings.TrimSpace(q.What)
	q.Where = strings.TrimSpace(q.Where)
	q.Country = strings.ToLower(strings.TrimSpace(q.Country))

	if q.What == "" {
		return model.Query{}, &ValidationError{Msg: "search term 'what' is required"}
	}
	if q.Where == "" {
		return model.Query{}, &ValidationError{Msg: "search term 'where' is required"}
	}
	if !isCountryCode(q.Country) {
		return model.Query{}, &ValidationError{Msg: "country must be a 2-letter code"}
	}
	return q, nil
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
