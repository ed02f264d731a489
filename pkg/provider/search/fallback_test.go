package search_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/qariapp/ayahsync/pkg/provider/search"
	"github.com/qariapp/ayahsync/pkg/provider/search/mock"
	"github.com/qariapp/ayahsync/pkg/types"
)

func TestFallback_PrimarySuccess(t *testing.T) {
	t.Parallel()

	primary := &mock.Provider{Results: map[string]mock.Result{
		"q": {ID: types.Identification{Surah: 36, Name: "Yaseen"}},
	}}
	secondary := &mock.Provider{}

	f := search.NewFallback(
		[]search.Provider{primary, secondary},
		[]string{"primary", "mirror"},
	)
	id, err := f.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if id.Surah != 36 {
		t.Errorf("Search surah = %d, want 36", id.Surah)
	}
	if len(secondary.Queries) != 0 {
		t.Errorf("mirror was consulted %d times, want 0", len(secondary.Queries))
	}
}

func TestFallback_UnavailableMovesToNext(t *testing.T) {
	t.Parallel()

	primary := &mock.Provider{
		DefaultErr: fmt.Errorf("dial: %w", search.ErrUnavailable),
	}
	secondary := &mock.Provider{Results: map[string]mock.Result{
		"q": {ID: types.Identification{Surah: 18, Name: "Al-Kahf"}},
	}}

	f := search.NewFallback(
		[]search.Provider{primary, secondary},
		[]string{"primary", "mirror"},
	)
	id, err := f.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if id.Surah != 18 {
		t.Errorf("Search surah = %d, want 18", id.Surah)
	}
}

func TestFallback_NoMatchStopsChain(t *testing.T) {
	t.Parallel()

	primary := &mock.Provider{} // answers ErrNoMatch for everything
	secondary := &mock.Provider{}

	f := search.NewFallback(
		[]search.Provider{primary, secondary},
		[]string{"primary", "mirror"},
	)
	_, err := f.Search(context.Background(), "q")
	if !errors.Is(err, search.ErrNoMatch) {
		t.Fatalf("Search = %v, want ErrNoMatch", err)
	}
	if len(secondary.Queries) != 0 {
		t.Errorf("mirror was consulted after an authoritative no-match")
	}
}

func TestFallback_AllUnavailable(t *testing.T) {
	t.Parallel()

	unavailable := fmt.Errorf("dial: %w", search.ErrUnavailable)
	f := search.NewFallback(
		[]search.Provider{
			&mock.Provider{DefaultErr: unavailable},
			&mock.Provider{DefaultErr: unavailable},
		},
		[]string{"primary", "mirror"},
	)
	_, err := f.Search(context.Background(), "q")
	if !search.IsUnavailable(err) {
		t.Errorf("Search = %v, want unavailable", err)
	}
	if errors.Is(err, search.ErrNoMatch) {
		t.Errorf("Search = %v, must not be ErrNoMatch", err)
	}
}
