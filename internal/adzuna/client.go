// Package adzuna implements the job-search provider client: listing search
// plus the salary histogram for the same filter.
package adzuna

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/billo-w/job-app-v2/internal/model"
)

const (
	defaultBaseURL   = "https://api.adzuna.com/v1/api/jobs"
	searchTimeout    = 20 * time.Second
	histogramTimeout = 15 * time.Second
)

// ErrSourceUnavailable signals that the provider was unreachable, timed out,
// or returned a non-success status. Callers decide whether that is fatal;
// the client never retries.
var ErrSourceUnavailable = errors.New("job-search source unavailable")

// SearchResult is the normalised outcome of one search: the total number of
// matching postings, a bounded listing sample, and the salary histogram for
// the same filter when the provider has one.
type SearchResult struct {
	TotalCount int
	Listings   []model.JobListing
	Histogram  *model.SalaryHistogram
}

// Client fetches listings and salary histograms from the Adzuna public API.
// If AppID or AppKey is empty, SearchJobs reports ErrSourceUnavailable
// immediately — credentials are a deployment concern, not a per-request one.
type Client struct {
	AppID   string
	AppKey  string
	PerPage int

	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient constructs a Client with a shared HTTP client.
func NewClient(appID, appKey string, perPage int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		AppID:   appID,
		AppKey:  appKey,
		PerPage: perPage,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: searchTimeout},
		logger:  logger,
	}
}

// adzunaSearchResponse mirrors the top-level Adzuna search JSON response.
type adzunaSearchResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

// adzunaResult mirrors a single Adzuna job listing.
type adzunaResult struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Company     adzunaCompany  `json:"company"`
	Location    adzunaLocation `json:"location"`
	RedirectURL string         `json:"redirect_url"`
	Created     string         `json:"created"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

// adzunaHistogramResponse mirrors the /histogram endpoint: a map of salary
// point (as a string key) to posting count.
type adzunaHistogramResponse struct {
	Histogram map[string]int `json:"histogram"`
}

// SearchJobs runs the listing search and the salary-histogram fetch for one
// query. A search failure is reported as ErrSourceUnavailable; a histogram
// failure only logs a warning and yields an absent histogram, because salary
// data is an enhancement while listings are the primary value.
func (c *Client) SearchJobs(ctx context.Context, q model.Query) (*SearchResult, error) {
	if c.AppID == "" || c.AppKey == "" {
		return nil, fmt.Errorf("%w: missing Adzuna credentials", ErrSourceUnavailable)
	}

	result, err := c.searchPage(ctx, q)
	if err != nil {
		return nil, err
	}

	hist, err := c.salaryHistogram(ctx, q)
	if err != nil {
		c.logger.Warn("salary histogram fetch failed", "what", q.What, "where", q.Where, "err", err)
	} else {
		result.Histogram = hist
	}

	return result, nil
}

func (c *Client) searchPage(ctx context.Context, q model.Query) (*SearchResult, error) {
	endpoint := fmt.Sprintf("%s/%s/search/1", c.baseURL, q.Country)

	params := url.Values{}
	params.Set("app_id", c.AppID)
	params.Set("app_key", c.AppKey)
	params.Set("what", q.What)
	params.Set("where", q.Where)
	params.Set("results_per_page", strconv.Itoa(c.PerPage))
	params.Set("content-type", "application/json")

	var apiResp adzunaSearchResponse
	if err := c.getJSON(ctx, endpoint+"?"+params.Encode(), searchTimeout, &apiResp); err != nil {
		return nil, err
	}

	listings := make([]model.JobListing, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		listing, ok := normaliseListing(r)
		if !ok {
			c.logger.Warn("dropping malformed listing", "title", r.Title, "url", r.RedirectURL)
			continue
		}
		listings = append(listings, listing)
	}

	return &SearchResult{TotalCount: apiResp.Count, Listings: listings}, nil
}

// salaryHistogram fetches the salary distribution for the same filter.
// Returns (nil, nil) when the provider simply has no data for the query.
func (c *Client) salaryHistogram(ctx context.Context, q model.Query) (*model.SalaryHistogram, error) {
	endpoint := fmt.Sprintf("%s/%s/histogram", c.baseURL, q.Country)

	params := url.Values{}
	params.Set("app_id", c.AppID)
	params.Set("app_key", c.AppKey)
	params.Set("what", q.What)
	params.Set("location0", q.Where)
	params.Set("content-type", "application/json")

	var apiResp adzunaHistogramResponse
	if err := c.getJSON(ctx, endpoint+"?"+params.Encode(), histogramTimeout, &apiResp); err != nil {
		return nil, err
	}

	if len(apiResp.Histogram) == 0 {
		return nil, nil
	}

	buckets := make([]model.HistogramBucket, 0, len(apiResp.Histogram))
	for label, count := range apiResp.Histogram {
		value, err := strconv.ParseFloat(label, 64)
		if err != nil {
			continue // skip non-numeric salary points
		}
		// Adzuna reports point values, so Low == High.
		buckets = append(buckets, model.HistogramBucket{
			Label: label,
			Low:   value,
			High:  value,
			Count: count,
		})
	}
	if len(buckets) == 0 {
		return nil, nil
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Low < buckets[j].Low })

	return &model.SalaryHistogram{Buckets: buckets}, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, timeout time.Duration, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: json unmarshal: %v", ErrSourceUnavailable, err)
	}

	return nil
}

// normaliseListing converts one raw result into a JobListing. Results with
// no usable provider ID or no title are dropped individually — a malformed
// listing never fails the whole search.
func normaliseListing(r adzunaResult) (model.JobListing, bool) {
	id := r.ID
	if id == "" {
		id = ExtractJobID(r.RedirectURL)
	}
	if id == "" || r.Title == "" {
		return model.JobListing{}, false
	}

	listing := model.JobListing{
		ProviderJobID: id,
		Title:         r.Title,
		Company:       r.Company.DisplayName,
		Location:      r.Location.DisplayName,
		Description:   r.Description,
		URL:           r.RedirectURL,
	}
	if t, err := time.Parse(time.RFC3339, r.Created); err == nil {
		listing.PostedAt = &t
	}
	return listing, true
}

// ExtractJobID pulls the Adzuna job ID out of a redirect URL: the last path
// segment when it looks like an ID, otherwise the aid/jobId/id query params.
// Returns "" when no ID can be found.
func ExtractJobID(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) > 0 {
		tail := parts[len(parts)-1]
		if len(tail) > 5 && isAlphanumeric(tail) {
			return tail
		}
	}

	query := u.Query()
	for _, key := range []string{"aid", "jobId", "id"} {
		if v := query.Get(key); v != "" {
			return v
		}
	}
	return ""
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return s != ""
}
