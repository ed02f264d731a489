// Package alquran provides a canonical-text corpus provider backed by the
// Al Quran Cloud REST API (GET /v1/surah/{number}/{edition}). It implements
// the corpus.Provider interface.
package alquran

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/qariapp/ayahsync/pkg/provider/corpus"
	"github.com/qariapp/ayahsync/pkg/types"
)

// DefaultBaseURL is the public Al Quran Cloud API root.
const DefaultBaseURL = "https://api.alquran.cloud/v1"

// DefaultEdition is the fully vocalised Uthmani text edition.
const DefaultEdition = "quran-uthmani"

const defaultTimeout = 30 * time.Second

// Option is a functional option for configuring the Provider.
type Option func(*Provider)

// WithBaseURL overrides the API root. Useful for mirrors and tests.
func WithBaseURL(base string) Option {
	return func(p *Provider) { p.baseURL = base }
}

// WithEdition selects the text edition fetched per surah.
// Default: "quran-uthmani".
func WithEdition(edition string) Option {
	return func(p *Provider) { p.edition = edition }
}

// WithTimeout sets the per-request timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// Provider implements corpus.Provider against the Al Quran Cloud surah API.
type Provider struct {
	baseURL    string
	edition    string
	httpClient *http.Client
}

// Compile-time interface check.
var _ corpus.Provider = (*Provider)(nil)

// New creates a Provider with the supplied options.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL:    DefaultBaseURL,
		edition:    DefaultEdition,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// surahResponse mirrors the subset of the API response the provider reads.
type surahResponse struct {
	Data struct {
		Number int `json:"number"`
		Ayahs  []struct {
			NumberInSurah int    `json:"numberInSurah"`
			Text          string `json:"text"`
		} `json:"ayahs"`
	} `json:"data"`
}

// Surah implements corpus.Provider.
func (p *Provider) Surah(ctx context.Context, number int) ([]types.Ayah, error) {
	if number < 1 {
		return nil, fmt.Errorf("alquran corpus: surah number %d: %w", number, corpus.ErrNotFound)
	}
	endpoint := fmt.Sprintf("%s/surah/%d/%s", p.baseURL, number, p.edition)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("alquran corpus: build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alquran corpus: %w: %w", corpus.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("alquran corpus: surah %d: %w", number, corpus.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("alquran corpus: %w: status %d", corpus.ErrUnavailable, resp.StatusCode)
	}

	var body surahResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("alquran corpus: %w: decode response: %w", corpus.ErrUnavailable, err)
	}
	if len(body.Data.Ayahs) == 0 {
		return nil, fmt.Errorf("alquran corpus: surah %d has no verses: %w", number, corpus.ErrNotFound)
	}

	ayahs := make([]types.Ayah, len(body.Data.Ayahs))
	for i, a := range body.Data.Ayahs {
		ayahs[i] = types.Ayah{
			Surah:  number,
			Number: a.NumberInSurah,
			Text:   a.Text,
		}
	}
	return ayahs, nil
}
