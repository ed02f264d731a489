package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/qariapp/ayahsync/internal/identify"
	"github.com/qariapp/ayahsync/internal/store"
	corpusmock "github.com/qariapp/ayahsync/pkg/provider/corpus/mock"
	"github.com/qariapp/ayahsync/pkg/provider/search"
	searchmock "github.com/qariapp/ayahsync/pkg/provider/search/mock"
	"github.com/qariapp/ayahsync/pkg/types"
)

// ikhlas is the 4-verse corpus used by the repair tests.
var ikhlas = []types.Ayah{
	{Surah: 112, Number: 1, Text: "قُلْ هُوَ ٱللَّهُ أَحَدٌ"},
	{Surah: 112, Number: 2, Text: "ٱللَّهُ ٱلصَّمَدُ"},
	{Surah: 112, Number: 3, Text: "لَمْ يَلِدْ وَلَمْ يُولَدْ"},
	{Surah: 112, Number: 4, Text: "وَلَمْ يَكُن لَّهُۥ كُفُوًا أَحَدٌ"},
}

func dropTwoRunes(s string) string {
	r := []rune(s)
	return string(r[2:])
}

func TestRepair_BackfillsIdentificationAndTimeline(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	segText := "قل هو الله احد"
	searcher := &searchmock.Provider{Results: map[string]searchmock.Result{
		dropTwoRunes(segText): {ID: types.Identification{Surah: 112, Name: "Al-Ikhlaas"}},
	}}
	corpus := &corpusmock.Provider{Surahs: map[int][]types.Ayah{112: ikhlas}}

	s := store.NewMemStore()
	orphan, _ := s.Save(ctx, store.Run{
		Title:    "unidentified recording",
		FullText: segText,
		Segments: []types.Segment{{Text: segText, Start: 0, End: 3.5}},
	})

	r := store.NewRepairer(s, identify.New(searcher), corpus, nil)
	repaired, err := r.Repair(ctx)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if repaired != 1 {
		t.Fatalf("Repair = %d runs, want 1", repaired)
	}

	got, _ := s.Get(ctx, orphan.ID)
	if got.Surah != 112 || got.SurahName != "Al-Ikhlaas" {
		t.Errorf("repaired run identity = %d %q", got.Surah, got.SurahName)
	}
	if len(got.Timeline) != 1 || got.Timeline[0].Ayah != 1 {
		t.Errorf("repaired run timeline = %+v, want one entry for ayah 1", got.Timeline)
	}
}

func TestRepair_UnidentifiableRunLeftAlone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	searcher := &searchmock.Provider{} // no match for anything
	corpus := &corpusmock.Provider{}

	s := store.NewMemStore()
	_, _ = s.Save(ctx, store.Run{
		FullText: "نص عربي طويل بما يكفي",
		Segments: []types.Segment{{Text: "نص عربي طويل بما يكفي"}},
	})

	r := store.NewRepairer(s, identify.New(searcher), corpus, nil)
	repaired, err := r.Repair(ctx)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if repaired != 0 {
		t.Errorf("Repair = %d, want 0", repaired)
	}
	un, _ := s.Unidentified(ctx)
	if len(un) != 1 {
		t.Errorf("run disappeared from unidentified set")
	}
}

func TestRepair_SearchOutageAbortsScan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	searcher := &searchmock.Provider{
		DefaultErr: fmt.Errorf("dial: %w", search.ErrUnavailable),
	}
	s := store.NewMemStore()
	_, _ = s.Save(ctx, store.Run{
		FullText: "نص عربي طويل بما يكفي",
		Segments: []types.Segment{{Text: "نص عربي طويل بما يكفي"}},
	})

	r := store.NewRepairer(s, identify.New(searcher), &corpusmock.Provider{}, nil)
	if _, err := r.Repair(ctx); !search.IsUnavailable(err) {
		t.Errorf("Repair = %v, want unavailable", err)
	}
}
