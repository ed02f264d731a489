// Package alquran provides a full-text search provider backed by the
// Al Quran Cloud REST API (GET /v1/search/{query}/all/ar). It implements the
// search.Provider interface.
package alquran

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/qariapp/ayahsync/pkg/provider/search"
	"github.com/qariapp/ayahsync/pkg/types"
)

// DefaultBaseURL is the public Al Quran Cloud API root.
const DefaultBaseURL = "https://api.alquran.cloud/v1"

const defaultTimeout = 10 * time.Second

// Option is a functional option for configuring the Provider.
type Option func(*Provider)

// WithBaseURL overrides the API root. Useful for mirrors and tests.
func WithBaseURL(base string) Option {
	return func(p *Provider) { p.baseURL = base }
}

// WithTimeout sets the per-request timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider implements search.Provider against the Al Quran Cloud search API.
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time interface check.
var _ search.Provider = (*Provider)(nil)

// New creates a Provider with the supplied options.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// searchResponse mirrors the subset of the API response the provider reads.
type searchResponse struct {
	Data struct {
		Matches []struct {
			Surah struct {
				Number      int    `json:"number"`
				EnglishName string `json:"englishName"`
			} `json:"surah"`
		} `json:"matches"`
	} `json:"data"`
}

// Search implements search.Provider. Transport failures and non-2xx statuses
// are reported as wrapped [search.ErrUnavailable]; a well-formed response
// with zero matches is [search.ErrNoMatch].
func (p *Provider) Search(ctx context.Context, query string) (types.Identification, error) {
	endpoint := fmt.Sprintf("%s/search/%s/all/ar", p.baseURL, url.PathEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.Identification{}, fmt.Errorf("alquran search: build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return types.Identification{}, fmt.Errorf("alquran search: %w: %w", search.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// The API answers 404 for queries with no match; anything else non-2xx
	// means the backend itself is in trouble.
	if resp.StatusCode == http.StatusNotFound {
		return types.Identification{}, search.ErrNoMatch
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.Identification{}, fmt.Errorf("alquran search: %w: status %d", search.ErrUnavailable, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return types.Identification{}, fmt.Errorf("alquran search: %w: decode response: %w", search.ErrUnavailable, err)
	}
	if len(body.Data.Matches) == 0 {
		return types.Identification{}, search.ErrNoMatch
	}

	first := body.Data.Matches[0].Surah
	return types.Identification{Surah: first.Number, Name: first.EnglishName}, nil
}
