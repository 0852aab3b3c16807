package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gophora/scout/core"
)

const (
	adzunaSource   = "adzuna"
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3 // max 150 results per run
)

// AdzunaAdapter fetches postings from the Adzuna public API.
// If AppID or AppKey is empty, Fetch returns (nil, nil) gracefully — the
// orchestrator simply gets nothing from this source and logs it as empty.
type AdzunaAdapter struct {
	AppID   string
	AppKey  string
	Country string // "se", "gb", "us", …
	What    string // search terms, empty fetches the newest of everything
	baseURL string
	client  *http.Client
}

var _ SourceAdapter = (*AdzunaAdapter)(nil)

// NewAdzunaAdapter constructs an adapter with a shared HTTP client.
func NewAdzunaAdapter(appID, appKey, country, what string) *AdzunaAdapter {
	return &AdzunaAdapter{
		AppID:   appID,
		AppKey:  appKey,
		Country: country,
		What:    what,
		baseURL: adzunaBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
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

// Name returns the source identifier.
func (a *AdzunaAdapter) Name() string {
	return adzunaSource
}

// Fetch retrieves the newest listings, iterating through pages until no more
// results or adzunaMaxPages is reached. Returns nil without error when
// credentials are missing.
func (a *AdzunaAdapter) Fetch(ctx context.Context) ([]*core.RawPosting, error) {
	if a.AppID == "" || a.AppKey == "" {
		return nil, nil
	}

	var postings []*core.RawPosting
	for page := 1; page <= adzunaMaxPages; page++ {
		batch, err := a.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		postings = append(postings, batch...)
		if len(batch) < adzunaPageSize {
			break // Last page
		}
	}
	return postings, nil
}

func (a *AdzunaAdapter) fetchPage(ctx context.Context, page int) ([]*core.RawPosting, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", a.baseURL, a.Country, page)

	params := url.Values{}
	params.Set("app_id", a.AppID)
	params.Set("app_key", a.AppKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	if a.What != "" {
		params.Set("what", a.What)
	}
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")

	reqURL := endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, Permanent(adzunaSource, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, Transient(adzunaSource, fmt.Errorf("http GET: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Transient(adzunaSource, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, Transient(adzunaSource, fmt.Errorf("adzuna returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, Permanent(adzunaSource, fmt.Errorf("adzuna returned %d: %s", resp.StatusCode, string(body)))
	}

	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, Permanent(adzunaSource, fmt.Errorf("json unmarshal: %w", err))
	}

	now := time.Now().UTC()
	postings := make([]*core.RawPosting, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		postings = append(postings, &core.RawPosting{
			Source:      adzunaSource,
			ExternalID:  r.ID,
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: r.Description,
			URL:         r.RedirectURL,
			FetchedAt:   now,
		})
	}
	return postings, nil
}
