package search

import (
	"context"
	"fmt"
	"log/slog"

	bravesearch "github.com/cnosuke/go-brave-search"
)

const maxBraveCount = 20

type Brave struct {
	client *bravesearch.Client
}

func NewBrave(apiKey string) (*Brave, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("brave search needs BRAVE_API_KEY")
	}
	client, err := bravesearch.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("new brave client: %w", err)
	}
	return &Brave{client: client}, nil
}

func (b *Brave) Search(ctx context.Context, q Query) ([]Result, error) {
	count := min(max(q.Count, 1), maxBraveCount)
	slog.Debug("[search] brave", "query", q.Text, "count", count)

	resp, err := b.client.WebSearch(ctx, q.Text, &bravesearch.WebSearchParams{
		Count: count,
	})
	if err != nil {
		return nil, fmt.Errorf("brave search: %w", err)
	}

	web := resp.GetWebResults()
	results := make([]Result, 0, len(web))
	for _, r := range web {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: CleanSnippet(r.Description),
		})
	}
	return results, nil
}
