// Package corpus defines the Provider interface for canonical Quran text
// backends.
//
// A corpus provider returns the ordered verses of one surah. The error
// taxonomy mirrors the search package's tri-state contract: [ErrNotFound]
// means the backend answered and has no such document, while a wrapped
// [ErrUnavailable] means the backend could not be consulted. The alignment
// run treats either as terminal — without reference text there is nothing to
// align against — but callers can still tell the two apart.
//
// Implementations must be safe for concurrent use.
package corpus

import (
	"context"
	"errors"

	"github.com/qariapp/ayahsync/pkg/types"
)

// ErrNotFound is returned when the backend has no surah with the requested
// number (or answered with an empty verse list).
var ErrNotFound = errors.New("corpus: surah not found")

// ErrUnavailable is returned (wrapped) when the backend could not be
// consulted at all.
var ErrUnavailable = errors.New("corpus: backend unavailable")

// Provider is the abstraction over any canonical-text backend.
type Provider interface {
	// Surah returns the ordered verses of the surah with the given 1-based
	// number. Verse numbers in the result are 1-based and strictly
	// increasing. Implementations must respect ctx cancellation and apply
	// their own bounded request timeout.
	Surah(ctx context.Context, number int) ([]types.Ayah, error)
}
