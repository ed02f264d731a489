// Package mock provides a test double for the corpus package interfaces.
package mock

import (
	"context"
	"sync"

	"github.com/qariapp/ayahsync/pkg/provider/corpus"
	"github.com/qariapp/ayahsync/pkg/types"
)

// Provider is a mock implementation of corpus.Provider.
type Provider struct {
	mu sync.Mutex

	// Surahs maps a surah number to its scripted verse list. Numbers not
	// present answer with corpus.ErrNotFound.
	Surahs map[int][]types.Ayah

	// Err, if non-nil, is returned from every Surah call regardless of Surahs.
	Err error

	// Requests records every surah number passed to Surah, in call order.
	Requests []int
}

// Compile-time interface check.
var _ corpus.Provider = (*Provider)(nil)

// Surah records the call and returns the scripted verses.
func (p *Provider) Surah(ctx context.Context, number int) ([]types.Ayah, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Requests = append(p.Requests, number)

	if p.Err != nil {
		return nil, p.Err
	}
	ayahs, ok := p.Surahs[number]
	if !ok || len(ayahs) == 0 {
		return nil, corpus.ErrNotFound
	}
	out := make([]types.Ayah, len(ayahs))
	copy(out, ayahs)
	return out, nil
}

// Reset clears all recorded requests. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Requests = nil
}
