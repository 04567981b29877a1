// Package ai implements the narrative-summary client over an Azure OpenAI
// deployment. Summaries are an enhancement: every failure here degrades to
// an absent summary, never to a failed request.
package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/billo-w/job-app-v2/internal/model"
)

const (
	summaryTimeout     = 30 * time.Second
	summaryMaxTokens   = 250
	summaryTemperature = 0.5

	maxSampleTitles       = 7
	maxSampleDescriptions = 5
	maxDescriptionChars   = 1000
)

// ErrSummaryUnavailable signals that no summary could be produced. It is
// absorbed by the aggregator, never surfaced to the user as an error.
var ErrSummaryUnavailable = errors.New("summary unavailable")

const systemMessage = "You are an AI assistant providing recruitment market analysis. " +
	"Focus on actionable insights for a recruiter based *only* on the provided data. " +
	"Use Markdown for formatting (like **bold**)."

// SummaryContext is the bounded, structured input handed to the model:
// the query, the total count, the derived salary stat, and listing excerpts.
type SummaryContext struct {
	Query      model.Query
	TotalJobs  int
	SalaryData *model.SalaryStat
	Listings   []model.JobListing
}

// Summarizer produces a recruiter-focused market summary rendered as HTML.
type Summarizer struct {
	llm      llms.Model
	markdown goldmark.Markdown
}

// New builds a Summarizer against an Azure OpenAI deployment. Returns an
// error when credentials are missing; the caller decides whether to run
// without summaries.
func New(endpoint, apiKey, deployment string) (*Summarizer, error) {
	if endpoint == "" || apiKey == "" {
		return nil, fmt.Errorf("azure AI endpoint and key are required")
	}

	llm, err := openai.New(
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithBaseURL(endpoint),
		openai.WithToken(apiKey),
		openai.WithModel(deployment),
	)
	if err != nil {
		return nil, fmt.Errorf("openai.New: %w", err)
	}

	return NewWithModel(llm), nil
}

// NewWithModel builds a Summarizer over any llms.Model. Used by tests.
func NewWithModel(llm llms.Model) *Summarizer {
	return &Summarizer{
		llm:      llm,
		markdown: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Summarize calls the model with the recruiter-analysis prompt and renders
// the markdown response to HTML. Any failure maps to ErrSummaryUnavailable.
func (s *Summarizer) Summarize(ctx context.Context, sc SummaryContext) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	resp, err := s.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, systemMessage),
			llms.TextParts(llms.ChatMessageTypeHuman, buildPrompt(sc)),
		},
		llms.WithMaxTokens(summaryMaxTokens),
		llms.WithTemperature(summaryTemperature),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummaryUnavailable, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", fmt.Errorf("%w: empty model response", ErrSummaryUnavailable)
	}

	var html bytes.Buffer
	raw := strings.TrimSpace(resp.Choices[0].Content)
	if err := s.markdown.Convert([]byte(raw), &html); err != nil {
		return "", fmt.Errorf("%w: render markdown: %v", ErrSummaryUnavailable, err)
	}

	return html.String(), nil
}

// buildPrompt assembles the user prompt from the bounded context: at most
// maxSampleTitles titles and maxSampleDescriptions description excerpts
// capped at maxDescriptionChars characters.
func buildPrompt(sc SummaryContext) string {
	titles := make([]string, 0, maxSampleTitles)
	for _, l := range sc.Listings {
		if len(titles) == maxSampleTitles {
			break
		}
		titles = append(titles, l.Title)
	}

	var descs []string
	for _, l := range sc.Listings {
		if len(descs) == maxSampleDescriptions {
			break
		}
		if l.Description != "" {
			descs = append(descs, l.Description)
		}
	}
	descriptions := strings.Join(descs, " ")
	if len(descriptions) > maxDescriptionChars {
		descriptions = descriptions[:maxDescriptionChars] + "..."
	}

	titleInfo := "N/A"
	if len(titles) > 0 {
		titleInfo = strings.Join(titles, ", ")
	}
	if descriptions == "" {
		descriptions = "N/A"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the job market for a recruiter hiring for '%s' in '%s, %s'.\n\n",
		sc.Query.What, sc.Query.Where, strings.ToUpper(sc.Query.Country))
	b.WriteString("**Market Data:**\n")
	fmt.Fprintf(&b, "- Total Job Listings Found: %d\n", sc.TotalJobs)
	fmt.Fprintf(&b, "- Estimated Average Salary: %s\n", salaryInfo(sc.SalaryData))
	fmt.Fprintf(&b, "- Sample Job Titles: %s\n", titleInfo)
	fmt.Fprintf(&b, "- Sample Job Description Excerpts: %s\n\n", descriptions)
	b.WriteString("**Recruiter Analysis (Based *only* on above data - use Markdown for emphasis):**\n")
	b.WriteString("1. **Market Activity & Competitiveness:** Based on job volume and salary data (if available), how active/competitive does this market seem?\n")
	b.WriteString("2. **Key Skills/Keywords:** Based *only* on the sample titles and descriptions, what 2-3 potential key skills or technologies seem commonly required?\n")
	b.WriteString("3. **Candidate Pool & Sourcing:** What does the job volume suggest about the likely candidate pool size and the potential need for proactive sourcing vs. relying on applications?\n\n")
	b.WriteString("Provide a concise, bulleted summary. Do not invent skills or salary details not present in the data.")
	return b.String()
}

// salaryInfo phrases the three salary states distinctly so the model never
// mistakes "no data" for "not computable".
func salaryInfo(stat *model.SalaryStat) string {
	switch {
	case stat == nil:
		return "Not available"
	case stat.Average != nil:
		return fmt.Sprintf("approximately %.0f (currency based on country)", *stat.Average)
	default:
		return "Distribution data available, but average could not be calculated."
	}
}
