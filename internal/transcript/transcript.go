// Package transcript is the input boundary for ASR output.
//
// Whisper-style verbose-JSON transcriptions are decoded into one explicit
// [Recitation] record here, exactly once. Downstream packages consume
// [types.Segment] values and never inspect the provider's response shape.
package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/qariapp/ayahsync/pkg/types"
)

// Recitation is one recording's worth of ASR output, ready for alignment.
type Recitation struct {
	// Title is a human-readable label for the recording (file name, video
	// title). May be empty.
	Title string `json:"title,omitempty"`

	// Segments are the timestamped spans in ASR order, chunk offsets already
	// applied where relevant.
	Segments []types.Segment `json:"segments"`

	// FullText is the concatenation of all segment texts in order. Used only
	// by the identification fallback.
	FullText string `json:"text"`
}

// rawTranscription mirrors the verbose-JSON transcription shape emitted by
// Whisper-compatible ASR services.
type rawTranscription struct {
	Title    string          `json:"title"`
	Text     string          `json:"text"`
	Segments []types.Segment `json:"segments"`
}

// Parse decodes a verbose-JSON transcription from r.
//
// A transcription with no segments but a non-empty text becomes a single
// zero-timed segment, so identification can still run. FullText is derived
// from the segment texts when the source omits it. Segments with start > end
// are an input-contract violation and fail the parse.
func Parse(r io.Reader) (*Recitation, error) {
	var raw rawTranscription
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("transcript: decode json: %w", err)
	}

	if len(raw.Segments) == 0 && strings.TrimSpace(raw.Text) != "" {
		raw.Segments = []types.Segment{{Text: raw.Text}}
	}

	for i, s := range raw.Segments {
		if s.Start > s.End {
			return nil, fmt.Errorf("transcript: segment %d: start %f after end %f", i, s.Start, s.End)
		}
	}

	rec := &Recitation{
		Title:    raw.Title,
		Segments: raw.Segments,
		FullText: raw.Text,
	}
	if rec.FullText == "" {
		parts := make([]string, len(raw.Segments))
		for i, s := range raw.Segments {
			parts[i] = strings.TrimSpace(s.Text)
		}
		rec.FullText = strings.Join(parts, " ")
	}
	return rec, nil
}

// Load reads and parses the transcription file at path. When the recitation
// carries no title, the file path is used.
func Load(path string) (*Recitation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: open %q: %w", path, err)
	}
	defer f.Close()

	rec, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("transcript: parse %q: %w", path, err)
	}
	if rec.Title == "" {
		rec.Title = path
	}
	return rec, nil
}
