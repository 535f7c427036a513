// Package capability holds function calling, structured output, web search
// and agent commands.
package capability

import (
	"context"
	"fmt"
	"slices"

	"github.com/ryanreadbooks/zaikit/cmd/app"
	"github.com/ryanreadbooks/zaikit/explorer"
	"github.com/ryanreadbooks/zaikit/zai"

	"github.com/spf13/cobra"
)

var (
	functionOpts     explorer.FunctionCallingOptions
	structuredKind   string
	structuredPrompt string
	webOpts          explorer.WebSearchOptions
	recency          string
	webChatOpts      explorer.WebSearchChatOptions
	agentOpts        explorer.AgentOptions
)

var CapabilityCmd = &cobra.Command{
	Use:   "capability",
	Short: "Function calling and structured output examples.",
}

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "Let the model call local functions.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.FunctionCalling(ctx, env, functionOpts)
	}),
}

var structuredCmd = &cobra.Command{
	Use:   "structured",
	Short: "Ask for json output.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		kind := explorer.StructuredKind(structuredKind)
		if !slices.Contains(explorer.StructuredKinds, kind) {
			return fmt.Errorf("unknown kind %q, want one of %v", structuredKind, explorer.StructuredKinds)
		}
		return explorer.StructuredOutput(ctx, env, kind, structuredPrompt)
	}),
}

var SearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Web search examples.",
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Call the web search API directly.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		opts := webOpts
		opts.Recency = zai.RecencyFilter(recency)
		return explorer.WebSearchAPI(ctx, env, opts)
	}),
}

var webChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the built in web_search tool.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.WebSearchChat(ctx, env, webChatOpts)
	}),
}

var AgentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the multi-function agent.",
	Long:  "Run the multi-function agent. It calls calculator, datetime, weather, search and unit tools until it can answer.",
	RunE: app.Run(func(ctx context.Context, env *explorer.Env) error {
		return explorer.AgentDemo(ctx, env, agentOpts)
	}),
}

func init() {
	functionsCmd.Flags().StringVarP(&functionOpts.Query, "query", "q", "", "Question for the model.")
	functionsCmd.Flags().StringVar(&functionOpts.Force, "force", "", "Force a call to this function.")
	functionsCmd.Flags().BoolVar(&functionOpts.Stream, "stream", false, "Stream the turns, tool calls included.")

	structuredCmd.Flags().StringVarP(&structuredKind, "kind", "k", string(explorer.StructuredProduct), "product, person, event, extraction or validation.")
	structuredCmd.Flags().StringVarP(&structuredPrompt, "prompt", "p", "", "Override the example prompt.")
	CapabilityCmd.AddCommand(functionsCmd, structuredCmd)

	webCmd.Flags().StringVarP(&webOpts.Query, "query", "q", "", "Search query.")
	webCmd.Flags().IntVarP(&webOpts.Count, "count", "n", 5, "Results, 1 to 15.")
	webCmd.Flags().StringVarP(&webOpts.Domain, "domain", "d", "", "Only results from this domain.")
	webCmd.Flags().StringVarP(&recency, "recency", "r", string(zai.RecencyNoLimit), "noLimit, oneDay, oneWeek, oneMonth or oneYear.")
	webChatCmd.Flags().StringVarP(&webChatOpts.Query, "query", "q", "", "Question for the model.")
	webChatCmd.Flags().BoolVar(&webChatOpts.Stream, "stream", false, "Stream the answer.")
	webChatCmd.Flags().BoolVar(&webChatOpts.Research, "research", false, "Multi-turn research on one topic.")
	SearchCmd.AddCommand(webCmd, webChatCmd)

	AgentCmd.Flags().StringVarP(&agentOpts.Query, "query", "q", "", "Task for the agent.")
	AgentCmd.Flags().IntVar(&agentOpts.MaxIterations, "max-iterations", 5, "Tool rounds before giving up.")
	AgentCmd.Flags().BoolVar(&agentOpts.Complex, "complex", false, "Run several multi-tool tasks.")
}
