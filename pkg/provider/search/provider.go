// Package search defines the Provider interface for full-text Quran search
// backends.
//
// A search provider resolves a noisy Arabic text fragment to the surah it
// belongs to. The result taxonomy is deliberately tri-state so callers can
// tell "we tried and found nothing" apart from "we could not try":
//
//   - a nil error with a populated [types.Identification] means found;
//   - [ErrNoMatch] means the backend answered and had no match;
//   - any error matching [ErrUnavailable] means the backend could not be
//     consulted (network failure, timeout, non-2xx response).
//
// Implementations must be safe for concurrent use.
package search

import (
	"context"
	"errors"

	"github.com/qariapp/ayahsync/pkg/types"
)

// ErrNoMatch is returned when the backend processed the query and found no
// matching surah. This is a routine outcome for noisy fragments, not a fault.
var ErrNoMatch = errors.New("search: no match")

// ErrUnavailable is returned (wrapped) when the backend could not be
// consulted at all. Callers distinguish it from [ErrNoMatch] with errors.Is.
var ErrUnavailable = errors.New("search: backend unavailable")

// Provider is the abstraction over any full-text search backend.
type Provider interface {
	// Search resolves query to the best-matching surah. The error follows the
	// package taxonomy: nil, ErrNoMatch, or a wrapped ErrUnavailable.
	// Implementations must respect ctx cancellation and apply their own
	// bounded request timeout.
	Search(ctx context.Context, query string) (types.Identification, error)
}
