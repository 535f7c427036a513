package tools

import (
	"github.com/ryanreadbooks/zaikit/component/tool"
	"github.com/ryanreadbooks/zaikit/search"
)

// Agent returns the multi function agent toolset.
func Agent(searcher search.Searcher) *tool.Registry {
	return tool.NewRegistry(
		Calculate(),
		CurrentDatetime(nil),
		Weather(),
		SearchWeb(searcher),
		ConvertUnits(),
	)
}
