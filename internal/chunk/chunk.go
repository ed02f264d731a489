// Package chunk converts chunk-relative ASR timestamps to absolute ones.
//
// Long recordings are split upstream into fixed-duration chunks before
// transcription, and the ASR returns timestamps local to each chunk. The
// alignment engine consumes absolute timestamps only, so the caller applies
// the per-chunk offset here before handing segments over.
package chunk

import "github.com/qariapp/ayahsync/pkg/types"

// DefaultDuration is the fixed chunk length in seconds used when splitting
// oversized audio upstream (10 minutes).
const DefaultDuration = 600.0

// Offset returns a copy of segs with index×duration added to every start and
// end timestamp. The input slice is not modified.
func Offset(segs []types.Segment, index int, duration float64) []types.Segment {
	shift := float64(index) * duration
	out := make([]types.Segment, len(segs))
	for i, s := range segs {
		s.Start += shift
		s.End += shift
		out[i] = s
	}
	return out
}

// Merge applies [Offset] to each chunk by its position and concatenates the
// results in chunk order. Cross-chunk ordering of the output is best-effort;
// the timeline builder's final sort is the safety net for boundary artifacts.
func Merge(chunks [][]types.Segment, duration float64) []types.Segment {
	var total int
	for _, c := range chunks {
		total += len(c)
	}
	out := make([]types.Segment, 0, total)
	for i, c := range chunks {
		out = append(out, Offset(c, i, duration)...)
	}
	return out
}
