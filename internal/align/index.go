package align

import (
	"github.com/qariapp/ayahsync/internal/arabic"
	"github.com/qariapp/ayahsync/pkg/types"
)

// Index holds the ordered reference units of one surah alongside their
// normalised texts. Normalisation happens exactly once, at construction —
// re-normalising the corpus per comparison would be wasted work since the
// matcher runs once per segment over the whole candidate list.
//
// Index is immutable after construction and safe for concurrent use.
type Index struct {
	ayahs      []types.Ayah
	normalized []string
}

// NewIndex builds an [Index] over ayahs, preserving their order. The slice is
// copied; the caller may reuse it.
func NewIndex(ayahs []types.Ayah) *Index {
	idx := &Index{
		ayahs:      make([]types.Ayah, len(ayahs)),
		normalized: make([]string, len(ayahs)),
	}
	copy(idx.ayahs, ayahs)
	for i, a := range ayahs {
		idx.normalized[i] = arabic.Normalize(a.Text)
	}
	return idx
}

// Len returns the number of reference units in the index.
func (idx *Index) Len() int { return len(idx.ayahs) }

// Ayahs returns the ordered reference units. The returned slice must not be
// mutated.
func (idx *Index) Ayahs() []types.Ayah { return idx.ayahs }

// Normalized returns the normalised texts, index-aligned with [Index.Ayahs].
// The returned slice must not be mutated.
func (idx *Index) Normalized() []string { return idx.normalized }
