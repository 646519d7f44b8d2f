package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/hazyhaar/touchstone-catalog/pkg/kit"
	"github.com/hazyhaar/touchstone-catalog/pkg/query"
)

// RegisterMCPTools registers the catalog MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, svc *Service) {
	kit.RegisterMCPTool(srv, searchTool(), svc.searchEP, decodeSearch)
	kit.RegisterMCPTool(srv, queryTool(), svc.queryEP, decodeQuery)
	kit.RegisterMCPTool(srv, resolveTool(), svc.resolveEP, decodeResolve)
}

func searchTool() mcp.Tool {
	return mcp.NewTool("search_catalog",
		mcp.WithDescription("Search the food catalog. Understands regional names (palta, choclo, frutilla) and tolerates typos."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text query")),
		mcp.WithNumber("min_score", mcp.Description("Drop results scoring below this (0-1)")),
		mcp.WithNumber("max_results", mcp.Description("Maximum number of results")),
	)
}

func queryTool() mcp.Tool {
	return mcp.NewTool("query_catalog",
		mcp.WithDescription("Search, filter and sort the catalog in one call."),
		mcp.WithString("search_term", mcp.Description("Optional free-text query")),
		mcp.WithString("filters", mcp.Description(`JSON array of filters, e.g. [{"kind":"category","value":"fruits"},{"kind":"rating","value":8,"operator":"gte"}]. Kinds: category, allergen, rating, nutrition`)),
		mcp.WithString("sort_field", mcp.Description("Field to sort by (id, name, category, rating or an attribute path)")),
		mcp.WithString("sort_direction", mcp.Description("asc or desc"), mcp.Enum("asc", "desc")),
	)
}

func resolveTool() mcp.Tool {
	return mcp.NewTool("resolve_synonym",
		mcp.WithDescription("Resolve a regional or colloquial food term to its canonical name and catalog entry."),
		mcp.WithString("term", mcp.Required(), mcp.Description("The term to resolve")),
	)
}

func decodeSearch(req mcp.CallToolRequest) (any, error) {
	args := req.GetArguments()
	q, _ := args["query"].(string)
	if strings.TrimSpace(q) == "" {
		return nil, fmt.Errorf("query is required")
	}
	out := &searchReq{Query: q}
	if v, ok := args["min_score"]; ok {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("min_score: %w", err)
		}
		out.Options.MinScore = f
	}
	if v, ok := args["max_results"]; ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			return nil, fmt.Errorf("max_results: %w", err)
		}
		out.Options.MaxResults = n
	}
	return out, nil
}

func decodeQuery(req mcp.CallToolRequest) (any, error) {
	args := req.GetArguments()
	out := &query.Request{}
	out.SearchTerm, _ = args["search_term"].(string)
	out.SortField, _ = args["sort_field"].(string)
	if v, _ := args["sort_direction"].(string); v != "" {
		out.SortDirection = query.Direction(v)
	}
	if v, _ := args["filters"].(string); strings.TrimSpace(v) != "" {
		if err := json.Unmarshal([]byte(v), &out.Filters); err != nil {
			return nil, fmt.Errorf("filters: %w", err)
		}
	}
	return out, nil
}

func decodeResolve(req mcp.CallToolRequest) (any, error) {
	term, _ := req.GetArguments()["term"].(string)
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("term is required")
	}
	return &resolveReq{Term: term}, nil
}
