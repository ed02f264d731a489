// Package types defines the shared data model used across all ayahsync packages.
//
// These types form the lingua franca between the transcript boundary, the
// alignment engine, the collaborator providers, and the run store. They are
// intentionally minimal — each package defines its own domain types, but
// cross-cutting data structures live here to avoid circular imports.
package types

// Segment is one timestamped span of ASR output. It is constructed exactly
// once at the transcript boundary; downstream code never inspects the raw
// provider response shape.
type Segment struct {
	// Text is the transcribed speech content for this span.
	Text string `json:"text"`

	// Start is the absolute start time in seconds. When the source audio was
	// split into chunks upstream, the per-chunk offset must already be applied
	// (see the chunk package) before a Segment reaches the alignment engine.
	Start float64 `json:"start"`

	// End is the absolute end time in seconds. Always >= Start.
	End float64 `json:"end"`
}

// Duration returns the span length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Ayah is one canonical reference unit: a single verse of a surah.
// Number is 1-based and strictly increasing within a surah in reading order.
// Ayah values are immutable once fetched from the corpus provider.
type Ayah struct {
	// Surah is the 1-based surah (chapter) number.
	Surah int `json:"surah"`

	// Number is the 1-based ayah number within the surah.
	Number int `json:"ayah"`

	// Text is the canonical Uthmani-script verse text, diacritics included.
	Text string `json:"text"`
}

// TimelineEntry is the externally visible alignment record: the matched
// ayah's identity and canonical text paired with the segment's timing.
// The canonical wording is authoritative for display; the ASR timing is
// authoritative for synchronisation.
type TimelineEntry struct {
	Surah int    `json:"surah"`
	Ayah  int    `json:"ayah"`
	Text  string `json:"text"`

	// Start and End are the matched segment's timestamps in seconds.
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Identification names the reference document a recitation belongs to,
// as resolved by the search collaborator.
type Identification struct {
	// Surah is the 1-based surah number.
	Surah int `json:"surah"`

	// Name is the surah's human-readable display name (e.g., "Al-Faatiha").
	Name string `json:"name"`
}
