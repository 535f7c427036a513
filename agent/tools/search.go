package tools

import (
	"context"
	"errors"

	"github.com/ryanreadbooks/zaikit/component/tool"
	"github.com/ryanreadbooks/zaikit/search"
)

const (
	defaultSearchResults = 3
	maxSearchResults     = 5
)

type SearchWebInput struct {
	Query      string `json:"query" jsonschema:"description=Search query"`
	NumResults int    `json:"num_results,omitempty" jsonschema:"description=Number of results to return (1-5)"`
}

type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type SearchWebOutput struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
}

func clampResults(n int) int {
	if n <= 0 {
		return defaultSearchResults
	}
	return min(n, maxSearchResults)
}

func SearchWeb(searcher search.Searcher) tool.Invoker {
	return tool.NewInvoker(tool.Info{
		Name:        "search_web",
		Description: "Search the web for information",
	}, func(ctx context.Context, input SearchWebInput) (*SearchWebOutput, error) {
		if searcher == nil {
			return nil, errors.New("web search is not configured")
		}

		n := clampResults(input.NumResults)
		results, err := searcher.Search(ctx, search.Query{Text: input.Query, Count: n})
		if err != nil {
			return nil, err
		}
		if len(results) > n {
			results = results[:n]
		}

		out := &SearchWebOutput{Query: input.Query, Results: make([]SearchHit, 0, len(results))}
		for _, r := range results {
			out.Results = append(out.Results, SearchHit{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
		}
		return out, nil
	})
}
