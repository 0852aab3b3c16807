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
	remotiveSource  = "remotive"
	remotiveBaseURL = "https://remotive.com/api/remote-jobs"
	remotiveLimit   = 100
	httpTimeout     = 15 * time.Second
)

// RemotiveAdapter fetches postings from the Remotive public API.
// The API needs no credentials.
type RemotiveAdapter struct {
	baseURL string
	limit   int
	client  *http.Client
}

var _ SourceAdapter = (*RemotiveAdapter)(nil)

// NewRemotiveAdapter constructs an adapter with a shared HTTP client.
func NewRemotiveAdapter() *RemotiveAdapter {
	return &RemotiveAdapter{
		baseURL: remotiveBaseURL,
		limit:   remotiveLimit,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// remotiveResponse mirrors the top-level Remotive JSON response.
type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

// remotiveJob mirrors a single Remotive listing.
type remotiveJob struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Location    string `json:"candidate_required_location"`
	Description string `json:"description"`
	PublishedAt string `json:"publication_date"`
}

// Name returns the source identifier.
func (a *RemotiveAdapter) Name() string {
	return remotiveSource
}

// Fetch retrieves the current listings.
func (a *RemotiveAdapter) Fetch(ctx context.Context) ([]*core.RawPosting, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(a.limit))
	reqURL := a.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, Permanent(remotiveSource, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, Transient(remotiveSource, fmt.Errorf("http GET: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Transient(remotiveSource, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, Transient(remotiveSource, fmt.Errorf("remotive returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, Permanent(remotiveSource, fmt.Errorf("remotive returned %d: %s", resp.StatusCode, string(body)))
	}

	var apiResp remotiveResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, Permanent(remotiveSource, fmt.Errorf("json unmarshal: %w", err))
	}

	now := time.Now().UTC()
	postings := make([]*core.RawPosting, 0, len(apiResp.Jobs))
	for _, j := range apiResp.Jobs {
		postings = append(postings, &core.RawPosting{
			Source:      remotiveSource,
			ExternalID:  strconv.FormatInt(j.ID, 10),
			Title:       j.Title,
			Company:     j.CompanyName,
			Location:    j.Location,
			Description: j.Description,
			URL:         j.URL,
			FetchedAt:   now,
		})
	}
	return postings, nil
}
