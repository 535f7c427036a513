package explorer

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ryanreadbooks/zaikit/llm/schema"
	"github.com/ryanreadbooks/zaikit/render"
	"github.com/ryanreadbooks/zaikit/search"
	"github.com/ryanreadbooks/zaikit/zai"
)

type WebSearchOptions struct {
	Query   string
	Count   int
	Domain  string
	Recency zai.RecencyFilter
}

// WebSearchAPI calls the search endpoint directly and prints each hit.
func WebSearchAPI(ctx context.Context, env *Env, opts WebSearchOptions) error {
	if env.ZAI == nil {
		return ErrNoPlatform
	}

	query := cmp.Or(opts.Query, "Latest developments in AI")
	req := &zai.WebSearchRequest{
		Query:        query,
		Engine:       env.Config.Search.Engine,
		Count:        zai.ClampCount(cmp.Or(opts.Count, 5)),
		Recency:      cmp.Or(opts.Recency, zai.RecencyNoLimit),
		DomainFilter: opts.Domain,
	}

	env.Out.Section("Web Search API")
	env.Out.KV("Engine", cmp.Or(req.Engine, zai.DefaultSearchEngine))
	env.Out.KV("Query", query)
	env.Out.KV("Results", req.Count)
	env.Out.KV("Recency", req.Recency)
	if opts.Domain != "" {
		env.Out.KV("Domain Filter", opts.Domain)
	}

	resp, err := render.Spin(ctx, env.Out, "Searching", func(ctx context.Context) (*zai.WebSearchResponse, error) {
		return env.ZAI.WebSearch(ctx, req)
	})
	if err != nil {
		return fmt.Errorf("web search: %w", err)
	}
	if len(resp.SearchResult) == 0 {
		env.Out.Warn("No results found")
		return nil
	}

	env.Out.Textf("Found %d results", len(resp.SearchResult))
	rows := make([][]string, 0, len(resp.SearchResult))
	for i, r := range resp.SearchResult {
		body := r.Link + "\n\n" + truncate(search.CleanSnippet(r.Content), 200)
		env.Out.Panel(render.KindInfo, fmt.Sprintf("Result %d: %s", i+1, r.Title), body)
		rows = append(rows, []string{strconv.Itoa(i + 1), truncate(r.Title, 50), cmp.Or(r.Media, hostOf(r.Link)), r.PublishDate})
	}
	env.Out.Table([]string{"#", "Title", "Source", "Published"}, rows)
	return nil
}

func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}
	return u.Host
}

type WebSearchChatOptions struct {
	Query  string
	Stream bool

	// Research runs a short multi-turn conversation with search enabled on
	// every turn.
	Research bool
}

var researchQuestions = []string{
	"What is quantum computing and how does it differ from classical computing?",
	"What companies are leading in quantum computing development?",
	"What are the main challenges in building practical quantum computers?",
}

// WebSearchChat enables the provider side web_search tool, so answers are
// grounded in fresh results without any local tool call.
func WebSearchChat(ctx context.Context, env *Env, opts WebSearchChatOptions) error {
	query := cmp.Or(opts.Query, "What are the latest developments in large language models?")
	webTool := schema.NewWebSearchToolParam(cmp.Or(env.Config.Search.Engine, zai.DefaultSearchEngine), 5)

	env.Out.Section("Web Search in Chat")
	env.Out.KV("Model", env.Config.Models.LLM)

	if opts.Research {
		var history []schema.MessageParam
		for i, q := range researchQuestions {
			env.Out.Text("")
			env.Out.KV(fmt.Sprintf("Question %d", i+1), q)
			history = append(history, schema.NewUserMessageParam(q))

			req := env.chatRequest(env.Config.Models.LLM, history...)
			req.Tools = []schema.ToolParam{webTool}
			msg, _, err := env.complete(ctx, "Searching and answering", req)
			if err != nil {
				return fmt.Errorf("research question %d: %w", i+1, err)
			}
			history = append(history, schema.NewAssistantMessageParam(msg.Content, nil, ""))
			env.Out.Answer("Response", truncate(msg.Content, 500))
		}
		return nil
	}

	env.Out.KV("Query", query)
	req := env.chatRequest(env.Config.Models.LLM, schema.NewUserMessageParam(query))
	req.Tools = []schema.ToolParam{webTool}

	if opts.Stream {
		env.Out.Text("")
		resp, err := env.stream(ctx, req, false)
		if err != nil {
			return fmt.Errorf("web search chat: %w", err)
		}
		env.Out.Remember(resp.Content)
		return nil
	}

	if env.LLM == nil {
		return ErrNoLLM
	}
	resp, err := render.Spin(ctx, env.Out, "Searching and generating response", func(ctx context.Context) (*schema.Response, error) {
		return env.LLM.ChatCompletion(ctx, req)
	})
	if err != nil {
		return fmt.Errorf("web search chat: %w", err)
	}

	choice := resp.FirstChoice()
	env.Out.Answer("Response", choice.Message.Content)
	if len(resp.WebSearch) > 0 {
		rows := make([][]string, 0, len(resp.WebSearch))
		for i, ref := range resp.WebSearch {
			rows = append(rows, []string{strconv.Itoa(i + 1), truncate(ref.Title, 50), cmp.Or(ref.Media, hostOf(ref.Link))})
		}
		env.Out.Table([]string{"#", "Reference", "Source"}, rows)
	}
	env.usage(resp.Usage)
	return nil
}
