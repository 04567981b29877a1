// Package model defines the shared value objects for the insights service.
package model

import "time"

// Query holds validated, normalised search criteria. Country is always
// lowercase two-letter by the time a Query reaches a provider client.
type Query struct {
	What    string `json:"what"`
	Where   string `json:"where"`
	Country string `json:"country"`
}

// JobListing is a single offer as returned by the job-search provider.
// Listings are never persisted by this service except through the save
// relation, which copies the descriptive fields it needs.
type JobListing struct {
	ProviderJobID string     `json:"providerJobId"`
	Title         string     `json:"title"`
	Company       string     `json:"company"`
	Location      string     `json:"location"`
	Description   string     `json:"description"`
	URL           string     `json:"url"`
	PostedAt      *time.Time `json:"postedAt,omitempty"`
}

// HistogramBucket is one salary bucket. Adzuna reports point values, in
// which case Low == High; a provider with labelled ranges sets both ends.
type HistogramBucket struct {
	Label string  `json:"label"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// SalaryHistogram is the raw salary distribution for a query, ordered by
// ascending bucket. A nil histogram means the provider returned none.
type SalaryHistogram struct {
	Buckets []HistogramBucket `json:"buckets"`
}

// SalaryStat is the derived salary figure. Three states are possible:
// the stat itself absent (no histogram at all), Average nil (distribution
// present but zero total count), or Average set. Average is never zeroed
// in place of "unknown".
type SalaryStat struct {
	Average   *float64         `json:"average,omitempty"`
	Histogram *SalaryHistogram `json:"histogram,omitempty"`
}

// InsightsReport is the aggregate result for one query. It is assembled
// once per request and never persisted.
type InsightsReport struct {
	Query             Query        `json:"query"`
	TotalMatchingJobs int          `json:"totalMatchingJobs"`
	JobListings       []JobListing `json:"jobListings"`
	SalaryData        *SalaryStat  `json:"salaryData,omitempty"`
	AISummaryHTML     *string      `json:"aiSummaryHtml,omitempty"`
}

// SavedJob mirrors a saved_jobs row. The pair (UserID, ProviderJobID) is
// unique — the database constraint is the enforcement point for concurrent
// duplicate saves.
type SavedJob struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	ProviderJobID string    `json:"providerJobId"`
	Title         string    `json:"title"`
	Company       string    `json:"company"`
	Location      string    `json:"location"`
	SourceURL     string    `json:"sourceUrl"`
	SavedAt       time.Time `json:"savedAt"`
}
