// Package match implements the fuzzy segment-to-ayah scorer used by the
// alignment engine.
//
// The scoring measure is a partial ratio: the shorter string is slid over
// every equal-length rune window of the longer string and scored with a
// Levenshtein ratio; the best window wins. This tolerates an ASR segment
// being a true substring or superstring of the reference verse, which is the
// common case since segment boundaries rarely align exactly with verse
// boundaries.
package match

import "github.com/antzucaro/matchr"

// DefaultFloor is the minimum partial-ratio score a candidate must reach to
// be considered a match. Tunable via config; the default follows the scoring
// scale's conventional cutoff for "same verse, noisy rendition".
const DefaultFloor = 70.0

// Match identifies the winning candidate of a [BestMatch] call.
type Match struct {
	// Index is the position of the winning candidate in the candidates slice.
	Index int

	// Score is the candidate's partial-ratio score in [0, 100].
	Score float64
}

// Ratio returns the Levenshtein similarity of a and b on a 0–100 scale:
// 100 means identical, 0 means no character survives the edit.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	n := max(len(ra), len(rb))
	if n == 0 {
		return 100
	}
	d := matchr.Levenshtein(a, b)
	return (1 - float64(d)/float64(n)) * 100
}

// PartialRatio returns the maximum [Ratio] achievable by sliding the shorter
// of a, b over all equal-length rune windows of the longer, on a 0–100 scale.
// Two empty strings score 100; one empty string scores 0.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		if len(rb) == 0 {
			return 100
		}
		return 0
	}

	short := string(ra)
	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		window := string(rb[i : i+len(ra)])
		d := matchr.Levenshtein(short, window)
		score := (1 - float64(d)/float64(len(ra))) * 100
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// BestMatch scores segment against every candidate with [PartialRatio] and
// returns the highest-scoring one at or above floor.
//
// Ties break to the lowest index: for forward-reading recitation the earlier
// verse is the likelier one, and the result stays deterministic when two
// verses normalise to identical text. Returns ok=false when no candidate
// reaches floor. The candidate scan is a single O(len(candidates)) pass.
func BestMatch(segment string, candidates []string, floor float64) (Match, bool) {
	best := Match{Index: -1}
	for i, c := range candidates {
		score := PartialRatio(segment, c)
		if score > best.Score || best.Index < 0 {
			best = Match{Index: i, Score: score}
		}
	}
	if best.Index < 0 || best.Score < floor {
		return Match{Index: -1}, false
	}
	return best, true
}
