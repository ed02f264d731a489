package alquran_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qariapp/ayahsync/pkg/provider/search"
	"github.com/qariapp/ayahsync/pkg/provider/search/alquran"
)

func TestSearch_ParsesFirstMatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": 200,
			"data": {
				"count": 2,
				"matches": [
					{"surah": {"number": 112, "englishName": "Al-Ikhlaas"}},
					{"surah": {"number": 2, "englishName": "Al-Baqara"}}
				]
			}
		}`))
	}))
	defer srv.Close()

	p := alquran.New(alquran.WithBaseURL(srv.URL))
	id, err := p.Search(context.Background(), "قل هو الله احد")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if id.Surah != 112 || id.Name != "Al-Ikhlaas" {
		t.Errorf("Search = %+v, want surah 112 Al-Ikhlaas", id)
	}
}

func TestSearch_EmptyMatchesIsNoMatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code": 200, "data": {"count": 0, "matches": []}}`))
	}))
	defer srv.Close()

	p := alquran.New(alquran.WithBaseURL(srv.URL))
	_, err := p.Search(context.Background(), "xyz")
	if !errors.Is(err, search.ErrNoMatch) {
		t.Errorf("Search = %v, want ErrNoMatch", err)
	}
}

func TestSearch_NotFoundIsNoMatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code": 404}`, http.StatusNotFound)
	}))
	defer srv.Close()

	p := alquran.New(alquran.WithBaseURL(srv.URL))
	_, err := p.Search(context.Background(), "xyz")
	if !errors.Is(err, search.ErrNoMatch) {
		t.Errorf("Search = %v, want ErrNoMatch", err)
	}
}

func TestSearch_ServerErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := alquran.New(alquran.WithBaseURL(srv.URL))
	_, err := p.Search(context.Background(), "xyz")
	if !errors.Is(err, search.ErrUnavailable) {
		t.Errorf("Search = %v, want ErrUnavailable", err)
	}
	if errors.Is(err, search.ErrNoMatch) {
		t.Errorf("Search = %v, must not be ErrNoMatch", err)
	}
}

func TestSearch_TransportFailureIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately: connections will be refused

	p := alquran.New(alquran.WithBaseURL(srv.URL))
	_, err := p.Search(context.Background(), "xyz")
	if !errors.Is(err, search.ErrUnavailable) {
		t.Errorf("Search = %v, want ErrUnavailable", err)
	}
}

func TestSearch_QueryIsPathEscaped(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"data": {"matches": [{"surah": {"number": 1, "englishName": "Al-Faatiha"}}]}}`))
	}))
	defer srv.Close()

	p := alquran.New(alquran.WithBaseURL(srv.URL))
	if _, err := p.Search(context.Background(), "بسم الله"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotPath == "" || gotPath == "/search/بسم الله/all/ar" {
		t.Errorf("query was not path-escaped: %q", gotPath)
	}
}
