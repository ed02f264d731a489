package identify_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/qariapp/ayahsync/internal/identify"
	"github.com/qariapp/ayahsync/pkg/provider/search"
	"github.com/qariapp/ayahsync/pkg/provider/search/mock"
	"github.com/qariapp/ayahsync/pkg/types"
)

// dropRunes mirrors the identifier's leading-rune trim so tests can compute
// the exact query a segment produces.
func dropRunes(s string, n int) string {
	r := []rune(s)
	return string(r[n:])
}

func TestIdentify_FirstUsableSegmentWins(t *testing.T) {
	t.Parallel()

	seg := "الحمد لله رب العالمين"
	searcher := &mock.Provider{Results: map[string]mock.Result{
		dropRunes(seg, 2): {ID: types.Identification{Surah: 1, Name: "Al-Faatiha"}},
	}}

	id := identify.New(searcher)
	got, err := id.Identify(context.Background(), []types.Segment{
		{Text: "قصير", Start: 0, End: 1}, // 4 runes: skipped
		{Text: seg, Start: 1, End: 5},
	}, seg)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if got.Surah != 1 || got.Name != "Al-Faatiha" {
		t.Errorf("Identify = %+v, want surah 1 Al-Faatiha", got)
	}
	if len(searcher.Queries) != 1 {
		t.Errorf("searcher consulted %d times, want 1 (short segment must be skipped)", len(searcher.Queries))
	}
}

func TestIdentify_StripsOpeningFormula(t *testing.T) {
	t.Parallel()

	verse := "قل هو الله احد"
	segText := identify.Bismillah + " " + verse
	searcher := &mock.Provider{Results: map[string]mock.Result{
		dropRunes(verse, 2): {ID: types.Identification{Surah: 112, Name: "Al-Ikhlaas"}},
	}}

	id := identify.New(searcher)
	got, err := id.Identify(context.Background(), []types.Segment{
		{Text: segText, Start: 0, End: 8},
	}, segText)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if got.Surah != 112 {
		t.Errorf("Identify surah = %d, want 112", got.Surah)
	}
	if q := searcher.Queries[0]; strings.Contains(q, "بسم الله") {
		t.Errorf("query %q still contains the opening formula", q)
	}
}

func TestIdentify_BareFormulaSegmentSkipped(t *testing.T) {
	t.Parallel()

	// After stripping the formula nothing usable remains; the identifier
	// must move on rather than query a stub.
	searcher := &mock.Provider{Results: map[string]mock.Result{}}

	id := identify.New(searcher)
	_, err := id.Identify(context.Background(), []types.Segment{
		{Text: identify.Bismillah + " اذا", Start: 0, End: 4},
	}, "")
	if !errors.Is(err, identify.ErrUnidentified) {
		t.Fatalf("Identify = %v, want ErrUnidentified", err)
	}
	if len(searcher.Queries) != 0 {
		t.Errorf("searcher consulted %d times, want 0", len(searcher.Queries))
	}
}

func TestIdentify_FallsBackToTranscriptPrefix(t *testing.T) {
	t.Parallel()

	fullText := strings.Repeat("يس والقران الحكيم ", 20)
	prefix := string([]rune(strings.TrimSpace(fullText))[:100])

	searcher := &mock.Provider{Results: map[string]mock.Result{
		prefix: {ID: types.Identification{Surah: 36, Name: "Yaseen"}},
	}}

	id := identify.New(searcher)
	got, err := id.Identify(context.Background(), []types.Segment{
		{Text: "غير قابل للتمييز هنا", Start: 0, End: 3}, // queried, no match
	}, fullText)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if got.Surah != 36 {
		t.Errorf("Identify surah = %d, want 36", got.Surah)
	}
	if len(searcher.Queries) != 2 {
		t.Errorf("searcher consulted %d times, want 2", len(searcher.Queries))
	}
}

func TestIdentify_AtMostTenSegmentsProbed(t *testing.T) {
	t.Parallel()

	segments := make([]types.Segment, 15)
	for i := range segments {
		segments[i] = types.Segment{Text: fmt.Sprintf("نص عربي طويل بما يكفي %d", i)}
	}
	searcher := &mock.Provider{}

	id := identify.New(searcher)
	_, err := id.Identify(context.Background(), segments, "")
	if !errors.Is(err, identify.ErrUnidentified) {
		t.Fatalf("Identify = %v, want ErrUnidentified", err)
	}
	// 10 segment probes, no prefix probe (fullText empty).
	if len(searcher.Queries) != 10 {
		t.Errorf("searcher consulted %d times, want 10", len(searcher.Queries))
	}
}

func TestIdentify_ExhaustedIsUnidentified(t *testing.T) {
	t.Parallel()

	searcher := &mock.Provider{}
	id := identify.New(searcher)
	_, err := id.Identify(context.Background(), []types.Segment{
		{Text: "نص عربي طويل بما يكفي"},
	}, "نص عربي طويل بما يكفي")
	if !errors.Is(err, identify.ErrUnidentified) {
		t.Errorf("Identify = %v, want ErrUnidentified", err)
	}
	if search.IsUnavailable(err) {
		t.Errorf("Identify = %v, must not look unavailable", err)
	}
}

func TestIdentify_UnavailableIsDistinct(t *testing.T) {
	t.Parallel()

	searcher := &mock.Provider{
		DefaultErr: fmt.Errorf("dial tcp: %w", search.ErrUnavailable),
	}
	id := identify.New(searcher)
	_, err := id.Identify(context.Background(), []types.Segment{
		{Text: "نص عربي طويل بما يكفي"},
	}, "نص عربي طويل بما يكفي")
	if !search.IsUnavailable(err) {
		t.Errorf("Identify = %v, want unavailable", err)
	}
	if errors.Is(err, identify.ErrUnidentified) {
		t.Errorf("Identify = %v, must not be ErrUnidentified", err)
	}
}
