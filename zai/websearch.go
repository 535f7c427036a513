package zai

import (
	"context"
	"strings"
)

const (
	DefaultSearchEngine = "search-prime"
	MaxSearchCount      = 15
)

type RecencyFilter string

const (
	RecencyNoLimit  RecencyFilter = "noLimit"
	RecencyOneDay   RecencyFilter = "oneDay"
	RecencyOneWeek  RecencyFilter = "oneWeek"
	RecencyOneMonth RecencyFilter = "oneMonth"
	RecencyOneYear  RecencyFilter = "oneYear"
)

type WebSearchRequest struct {
	Query        string
	Engine       string
	Count        int
	Recency      RecencyFilter
	DomainFilter string
}

type WebSearchResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Content     string `json:"content"`
	Media       string `json:"media"`
	Icon        string `json:"icon"`
	Refer       string `json:"refer"`
	PublishDate string `json:"publish_date"`
}

type WebSearchResponse struct {
	ID           string            `json:"id"`
	Created      int64             `json:"created"`
	RequestID    string            `json:"request_id"`
	SearchResult []WebSearchResult `json:"search_result"`
}

// ClampCount keeps the result count within what the api accepts.
func ClampCount(n int) int {
	return min(max(n, 1), MaxSearchCount)
}

func (c *Client) WebSearch(ctx context.Context, req *WebSearchRequest) (*WebSearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	engine := req.Engine
	if engine == "" {
		engine = DefaultSearchEngine
	}
	recency := req.Recency
	if recency == "" {
		recency = RecencyNoLimit
	}

	body := map[string]any{
		"search_engine":         engine,
		"search_query":          query,
		"count":                 ClampCount(req.Count),
		"search_recency_filter": recency,
		"request_id":            newRequestID(),
	}
	if req.DomainFilter != "" {
		body["search_domain_filter"] = req.DomainFilter
	}

	var out WebSearchResponse
	if err := c.postJSON(ctx, c.cfg.WebSearchPath, body, &out); err != nil {
		return nil, wrap("web search", err)
	}

	return &out, nil
}
