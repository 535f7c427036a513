// Package search runs web searches against Z.AI or Brave.
package search

import (
	"context"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

type Backend string

const (
	BackendZAI   Backend = "zai"
	BackendBrave Backend = "brave"
)

type Query struct {
	Text         string
	Count        int
	Recency      string
	DomainFilter string
}

type Result struct {
	Title       string
	URL         string
	Snippet     string
	Source      string
	PublishDate string
}

type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, error)
}

// CleanSnippet turns html fragments returned by search backends into
// markdown. Plain text is returned as is.
func CleanSnippet(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}

// Format renders results as a numbered plain text list, used as tool
// output for the model.
func Format(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "%d. %s\n%s\n%s", i+1, r.Title, r.URL, r.Snippet)
	}
	return b.String()
}

// New picks a backend. Brave needs its own api key; zai reuses the
// platform client with the given engine.
func New(backend Backend, zai ZAIWebSearcher, engine, braveKey string) (Searcher, error) {
	switch backend {
	case "", BackendZAI:
		if zai == nil {
			return nil, fmt.Errorf("zai search backend needs a client")
		}
		return NewZAI(zai, engine), nil
	case BackendBrave:
		return NewBrave(braveKey)
	}
	return nil, fmt.Errorf("unknown search backend: %s", backend)
}
