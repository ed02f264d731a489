package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qariapp/ayahsync/pkg/types"
)

// Fallback is a composite [Provider] that consults a list of backends in
// registration order. An [ErrUnavailable] answer moves on to the next
// backend; an authoritative [ErrNoMatch] stops the chain — a mirror that
// indexes the same corpus will not disagree, so asking again only adds
// latency.
//
// Fallback is safe for concurrent use when its providers are.
type Fallback struct {
	providers []Provider
	names     []string
}

// Compile-time interface check.
var _ Provider = (*Fallback)(nil)

// NewFallback creates a [Fallback] over the given named providers.
// Names appear in logs only. Panics if the two slices differ in length.
func NewFallback(providers []Provider, names []string) *Fallback {
	if len(providers) != len(names) {
		panic("search: NewFallback requires one name per provider")
	}
	return &Fallback{providers: providers, names: names}
}

// Search implements [Provider].
func (f *Fallback) Search(ctx context.Context, query string) (types.Identification, error) {
	var lastErr error
	for i, p := range f.providers {
		id, err := p.Search(ctx, query)
		if err == nil {
			return id, nil
		}
		if !IsUnavailable(err) {
			return types.Identification{}, err
		}
		slog.Warn("search backend unavailable, trying next",
			"backend", f.names[i], "error", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrUnavailable
	}
	return types.Identification{}, fmt.Errorf("search: all backends failed: %w", lastErr)
}

// IsUnavailable reports whether err represents a backend that could not be
// consulted, as opposed to one that answered with no match.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
