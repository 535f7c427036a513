package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ryanreadbooks/zaikit/zai"
)

type fakeZAI struct {
	got  *zai.WebSearchRequest
	resp *zai.WebSearchResponse
	err  error
}

func (f *fakeZAI) WebSearch(_ context.Context, req *zai.WebSearchRequest) (*zai.WebSearchResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestZAISearch(t *testing.T) {
	fake := &fakeZAI{resp: &zai.WebSearchResponse{
		SearchResult: []zai.WebSearchResult{
			{Title: "Go", Link: "https://go.dev", Content: "<p>The <b>Go</b> language</p>", Media: "go.dev"},
		},
	}}

	results, err := NewZAI(fake, "search-prime").Search(t.Context(), Query{Text: "golang", Count: 3})
	if err != nil {
		t.Fatal(err)
	}
	if fake.got.Query != "golang" || fake.got.Count != 3 || fake.got.Engine != "search-prime" {
		t.Errorf("request = %+v", fake.got)
	}
	if len(results) != 1 || results[0].URL != "https://go.dev" {
		t.Fatalf("results = %+v", results)
	}
	if strings.Contains(results[0].Snippet, "<b>") || !strings.Contains(results[0].Snippet, "Go") {
		t.Errorf("snippet not cleaned: %q", results[0].Snippet)
	}
}

func TestZAISearchError(t *testing.T) {
	errDown := errors.New("down")
	if _, err := NewZAI(&fakeZAI{err: errDown}, "").Search(t.Context(), Query{Text: "x"}); !errors.Is(err, errDown) {
		t.Fatalf("got %v", err)
	}
}

func TestCleanSnippet(t *testing.T) {
	if got := CleanSnippet("  plain text  "); got != "plain text" {
		t.Errorf("got %q", got)
	}
	if got := CleanSnippet("<em>bold</em> move"); strings.Contains(got, "<em>") {
		t.Errorf("got %q", got)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(nil); got != "No results found." {
		t.Errorf("got %q", got)
	}
	got := Format([]Result{{Title: "A", URL: "u1"}, {Title: "B", URL: "u2"}})
	if !strings.HasPrefix(got, "1. A\nu1") || !strings.Contains(got, "2. B") {
		t.Errorf("got %q", got)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(BackendZAI, nil, "", ""); err == nil {
		t.Error("want error without zai client")
	}
	if _, err := New(BackendBrave, nil, "", ""); err == nil {
		t.Error("want error without brave key")
	}
	if _, err := New("bing", nil, "", ""); err == nil {
		t.Error("want unknown backend error")
	}
	if s, err := New("", &fakeZAI{}, "search-prime", ""); err != nil || s == nil {
		t.Errorf("default backend: %v", err)
	}
}
