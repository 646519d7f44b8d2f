package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/touchstone-catalog/pkg/catalog"
	"github.com/hazyhaar/touchstone-catalog/pkg/query"
	"github.com/hazyhaar/touchstone-catalog/pkg/search"
	"github.com/hazyhaar/touchstone-catalog/pkg/synonym"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	tbl, err := synonym.Default()
	require.NoError(t, err)
	se, err := search.New(catalog.Sample(), tbl)
	require.NoError(t, err)
	qe, err := query.New(se)
	require.NoError(t, err)
	svc, err := NewService(se, qe, append([]Option{WithBatchWorkers(2)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, out any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

type searchResult struct {
	Entry struct {
		ID string `json:"id"`
	} `json:"entry"`
	Score     float64  `json:"score"`
	Kind      string   `json:"match_kind"`
	Fragments []string `json:"matched_fragments"`
}

type searchBody struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Results []searchResult `json:"results"`
}

func TestSearchRoute(t *testing.T) {
	h := NewRouter(newTestService(t))

	var body searchBody
	rec := doJSON(t, h, http.MethodGet, "/v1/search?q=palta", "", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	require.NotEmpty(t, body.Results)
	assert.Equal(t, "avocado_001", body.Results[0].Entry.ID)
	assert.Equal(t, "synonym", body.Results[0].Kind)
	assert.Contains(t, body.Results[0].Fragments, "palta → avocado")
	assert.Equal(t, len(body.Results), body.Count)
}

func TestSearchRouteOptions(t *testing.T) {
	h := NewRouter(newTestService(t))

	var body searchBody
	rec := doJSON(t, h, http.MethodGet, "/v1/search?q=chips&max_results=1", "", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body.Results, 1)

	rec = doJSON(t, h, http.MethodGet, "/v1/search?q=chips&min_score=2", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/search?q=chips&max_results=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchRouteBlankQuery(t *testing.T) {
	h := NewRouter(newTestService(t))

	var body searchBody
	rec := doJSON(t, h, http.MethodGet, "/v1/search?q=+++", "", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body.Results)
	assert.Zero(t, body.Count)
}

func TestSearchBatchRoute(t *testing.T) {
	h := NewRouter(newTestService(t, WithMaxBatch(3)))

	var body struct {
		Results []searchBody `json:"results"`
	}
	rec := doJSON(t, h, http.MethodPost, "/v1/search/batch", `{"queries":["apple","palta","mnago"]}`, &body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Results, 3)
	assert.Equal(t, "apple", body.Results[0].Query)
	assert.Equal(t, "apple_002", body.Results[0].Results[0].Entry.ID)
	assert.Equal(t, "avocado_001", body.Results[1].Results[0].Entry.ID)
	assert.Equal(t, "mango_019", body.Results[2].Results[0].Entry.ID)

	rec = doJSON(t, h, http.MethodPost, "/v1/search/batch", `{"queries":["a","b","c","d"]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/search/batch", `{"queries":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/search/batch", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/search/batch", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestQueryRoute(t *testing.T) {
	h := NewRouter(newTestService(t))

	var body struct {
		Items []struct {
			ID     string  `json:"id"`
			Rating float64 `json:"rating"`
		} `json:"items"`
		TotalCount     int               `json:"total_count"`
		AppliedFilters []query.Criterion `json:"applied_filters"`
	}
	rec := doJSON(t, h, http.MethodPost, "/v1/query", `{
		"filters": [
			{"kind": "category", "value": "fruits"},
			{"kind": "rating", "value": 9, "operator": "gte"},
			{"kind": "color", "value": "red"}
		],
		"sort_field": "rating",
		"sort_direction": "desc"
	}`, &body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, body.Items)
	assert.Equal(t, len(body.Items), body.TotalCount)
	assert.Len(t, body.AppliedFilters, 2)
	for i := 1; i < len(body.Items); i++ {
		assert.GreaterOrEqual(t, body.Items[i-1].Rating, body.Items[i].Rating)
	}
	assert.GreaterOrEqual(t, body.Items[len(body.Items)-1].Rating, 9.0)

	rec = doJSON(t, h, http.MethodPost, "/v1/query", `{"sort_field":"rating","sort_direction":"up"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSynonymRoutes(t *testing.T) {
	h := NewRouter(newTestService(t))

	var resolved resolveResponse
	rec := doJSON(t, h, http.MethodGet, "/v1/synonyms/Palta", "", &resolved)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "palta", resolved.Normalized)
	require.Len(t, resolved.Entries, 1)
	assert.Equal(t, "avocado_001", resolved.Entries[0].TargetID)
	assert.Equal(t, "Argentina", resolved.Entries[0].Region.Country)
	assert.True(t, resolved.Known)
	assert.Equal(t, "avocado", resolved.Canonical)
	require.NotNil(t, resolved.Region)
	assert.Equal(t, "AR", resolved.Region.Code)
	assert.Equal(t, "es", resolved.Region.Language)

	var canonical resolveResponse
	rec = doJSON(t, h, http.MethodGet, "/v1/synonyms/avocado", "", &canonical)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, canonical.Known)
	assert.Nil(t, canonical.Region, "canonical terms carry no region")

	var unknown resolveResponse
	rec = doJSON(t, h, http.MethodGet, "/v1/synonyms/dragonfruit", "", &unknown)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, unknown.Known)
	assert.Empty(t, unknown.Canonical)
	assert.NotNil(t, unknown.Entries)
	assert.Empty(t, unknown.Entries)

	var vars variationsResponse
	rec = doJSON(t, h, http.MethodGet, "/v1/synonyms/palta/variations", "", &vars)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "avocado", vars.Canonical)
	var terms []string
	for _, v := range vars.Variations {
		terms = append(terms, v.Term)
	}
	assert.Equal(t, []string{"aguacate", "palta"}, terms)
	assert.Equal(t, "avocado_001", vars.TargetID)
	assert.Equal(t, []string{"AR", "CL", "PE", "UY"}, vars.Regions["palta"])
	assert.Equal(t, []string{"MX", "ES", "CO", "VE", "EC"}, vars.Regions["aguacate"])
}

func TestStrategiesRoute(t *testing.T) {
	h := NewRouter(newTestService(t))

	var body struct {
		Strategies []struct {
			Kind     string `json:"kind"`
			Priority int    `json:"priority"`
		} `json:"strategies"`
	}
	rec := doJSON(t, h, http.MethodGet, "/v1/strategies", "", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Strategies, 5)
	assert.Equal(t, "exact", body.Strategies[0].Kind)
	assert.Equal(t, 100, body.Strategies[0].Priority)
	assert.Equal(t, "substring", body.Strategies[4].Kind)
}

func TestHealthAndMetrics(t *testing.T) {
	svc := newTestService(t)
	h := NewRouter(svc)

	var health healthResponse
	rec := doJSON(t, h, http.MethodGet, "/v1/health", "", &health)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, len(catalog.Sample()), health.Entries)
	assert.Equal(t, 4, health.FilterKinds)

	doJSON(t, h, http.MethodGet, "/v1/search?q=apple", "", nil)
	rec = doJSON(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalog_searches_total{kind="exact"} 1`)
	assert.Contains(t, rec.Body.String(), "catalog_entries 36")

	require.NoError(t, svc.UpdateCatalog(catalog.Sample()[:3]))
	rec = doJSON(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Contains(t, rec.Body.String(), "catalog_entries 3")
}

func TestCORSPreflight(t *testing.T) {
	h := NewRouter(newTestService(t))
	rec := doJSON(t, h, http.MethodOptions, "/v1/search", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := srv.GetTool(name)
	require.NotNil(t, tool, name)
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func toolText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPTools(t *testing.T) {
	srv := server.NewMCPServer("catalog", "test", server.WithToolCapabilities(false))
	RegisterMCPTools(srv, newTestService(t))

	res := callTool(t, srv, "search_catalog", map[string]any{"query": "palta", "max_results": 1.0})
	require.False(t, res.IsError)
	var sr searchBody
	require.NoError(t, json.Unmarshal([]byte(toolText(t, res)), &sr))
	require.Len(t, sr.Results, 1)
	assert.Equal(t, "avocado_001", sr.Results[0].Entry.ID)

	res = callTool(t, srv, "search_catalog", map[string]any{})
	assert.True(t, res.IsError)

	res = callTool(t, srv, "query_catalog", map[string]any{
		"filters":    `[{"kind":"category","value":"fish"}]`,
		"sort_field": "name",
	})
	require.False(t, res.IsError)
	var qr query.Result
	require.NoError(t, json.Unmarshal([]byte(toolText(t, res)), &qr))
	assert.Equal(t, []string{"salmon_003"}, catalog.IDs(qr.Items))

	res = callTool(t, srv, "query_catalog", map[string]any{"filters": `{broken`})
	assert.True(t, res.IsError)

	res = callTool(t, srv, "resolve_synonym", map[string]any{"term": "choclo"})
	require.False(t, res.IsError)
	assert.Contains(t, toolText(t, res), `"canonical_term":"corn"`)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(nil, nil)
	assert.Error(t, err)

	tbl, err := synonym.Default()
	require.NoError(t, err)
	se, err := search.New(nil, tbl)
	require.NoError(t, err)
	qe, err := query.New(se)
	require.NoError(t, err)

	_, err = NewService(se, qe, WithBatchWorkers(0))
	assert.Error(t, err)
	_, err = NewService(se, qe, WithMaxBatch(-1))
	assert.Error(t, err)
}
