// Package mock provides a test double for the search package interfaces.
//
// Use Provider to script search outcomes per query and inspect which queries
// the caller issued.
package mock

import (
	"context"
	"sync"

	"github.com/qariapp/ayahsync/pkg/provider/search"
	"github.com/qariapp/ayahsync/pkg/types"
)

// Provider is a mock implementation of search.Provider.
type Provider struct {
	mu sync.Mutex

	// Results maps an exact query string to its scripted outcome. Queries
	// not present in the map answer with DefaultErr.
	Results map[string]Result

	// DefaultErr is returned for unscripted queries. When nil,
	// search.ErrNoMatch is used.
	DefaultErr error

	// Queries records every query passed to Search, in call order.
	Queries []string
}

// Result is one scripted search outcome.
type Result struct {
	ID  types.Identification
	Err error
}

// Compile-time interface check.
var _ search.Provider = (*Provider)(nil)

// Search records the query and returns its scripted outcome.
func (p *Provider) Search(ctx context.Context, query string) (types.Identification, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Queries = append(p.Queries, query)

	if r, ok := p.Results[query]; ok {
		return r.ID, r.Err
	}
	if p.DefaultErr != nil {
		return types.Identification{}, p.DefaultErr
	}
	return types.Identification{}, search.ErrNoMatch
}

// Reset clears all recorded queries. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Queries = nil
}
