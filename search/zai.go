package search

import (
	"context"
	"log/slog"

	"github.com/ryanreadbooks/zaikit/zai"
)

type ZAIWebSearcher interface {
	WebSearch(ctx context.Context, req *zai.WebSearchRequest) (*zai.WebSearchResponse, error)
}

type ZAI struct {
	client ZAIWebSearcher
	engine string
}

func NewZAI(client ZAIWebSearcher, engine string) *ZAI {
	return &ZAI{client: client, engine: engine}
}

func (s *ZAI) Search(ctx context.Context, q Query) ([]Result, error) {
	slog.Debug("[search] zai", "query", q.Text, "count", q.Count)

	resp, err := s.client.WebSearch(ctx, &zai.WebSearchRequest{
		Query:        q.Text,
		Engine:       s.engine,
		Count:        q.Count,
		Recency:      zai.RecencyFilter(q.Recency),
		DomainFilter: q.DomainFilter,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.SearchResult))
	for _, r := range resp.SearchResult {
		results = append(results, Result{
			Title:       r.Title,
			URL:         r.Link,
			Snippet:     CleanSnippet(r.Content),
			Source:      r.Media,
			PublishDate: r.PublishDate,
		})
	}
	return results, nil
}
