package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/hazyhaar/touchstone-catalog/pkg/kit"
	"github.com/hazyhaar/touchstone-catalog/pkg/normalize"
	"github.com/hazyhaar/touchstone-catalog/pkg/query"
	"github.com/hazyhaar/touchstone-catalog/pkg/search"
	"github.com/hazyhaar/touchstone-catalog/pkg/synonym"
)

// Shared request/response types used by both HTTP and MCP transports.

type searchReq struct {
	Query   string
	Options search.Options
}

type searchResponse struct {
	Query   string          `json:"query"`
	Count   int             `json:"count"`
	Results []search.Result `json:"results"`
}

type batchReq struct {
	Queries []string       `json:"queries"`
	Options search.Options `json:"options"`
}

type batchResponse struct {
	Results []searchResponse `json:"results"`
}

type resolveReq struct {
	Term string
}

type resolveResponse struct {
	Term       string          `json:"term"`
	Normalized string          `json:"normalized"`
	Known      bool            `json:"known"`
	Canonical  string          `json:"canonical,omitempty"`
	Region     *synonym.Region `json:"region,omitempty"`
	Entries    []synonym.Entry `json:"entries"`
}

type variationsResponse struct {
	Term       string              `json:"term"`
	Canonical  string              `json:"canonical,omitempty"`
	TargetID   string              `json:"target_id,omitempty"`
	Variations []synonym.Variation `json:"variations"`
	Regions    map[string][]string `json:"regions,omitempty"` // every region per synonym
}

type strategiesResponse struct {
	Strategies []search.Info `json:"strategies"`
}

func searchEndpoint(se *search.Engine, m *Metrics) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*searchReq)
		results := se.Search(req.Query, req.Options)
		m.countSearch(results)
		return searchResponse{Query: req.Query, Count: len(results), Results: results}, nil
	}
}

func batchEndpoint(se *search.Engine, pool *ants.Pool, maxBatch int, m *Metrics) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*batchReq)
		if len(req.Queries) == 0 {
			return nil, fmt.Errorf("queries array is empty")
		}
		if len(req.Queries) > maxBatch {
			return nil, fmt.Errorf("too many queries (max %d, got %d)", maxBatch, len(req.Queries))
		}

		out := make([]searchResponse, len(req.Queries))
		var wg sync.WaitGroup
		for i, q := range req.Queries {
			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()
				results := se.Search(q, req.Options)
				m.countSearch(results)
				out[i] = searchResponse{Query: q, Count: len(results), Results: results}
			})
			if err != nil {
				wg.Done()
				wg.Wait()
				return nil, fmt.Errorf("submit query %d: %w", i, err)
			}
		}
		wg.Wait()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return batchResponse{Results: out}, nil
	}
}

func queryEndpoint(se *search.Engine, qe *query.Engine) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*query.Request)
		return qe.Execute(se.Catalog().Entries(), *req), nil
	}
}

func resolveEndpoint(se *search.Engine) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*resolveReq)
		tbl := se.Synonyms()
		resp := resolveResponse{
			Term:       req.Term,
			Normalized: normalize.Normalize(req.Term, normalize.Standard),
			Known:      tbl.HasSynonyms(req.Term),
			Entries:    []synonym.Entry{},
		}
		if !resp.Known {
			return resp, nil
		}
		resp.Entries = tbl.Resolve(req.Term)
		resp.Canonical, _ = tbl.CanonicalTerm(req.Term)
		if region, ok := tbl.RegionInfo(req.Term); ok {
			resp.Region = region
		}
		return resp, nil
	}
}

func variationsEndpoint(se *search.Engine) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*resolveReq)
		tbl := se.Synonyms()
		resp := variationsResponse{Term: req.Term, Variations: []synonym.Variation{}}
		entries := tbl.Resolve(req.Term)
		if len(entries) == 0 {
			return resp, nil
		}
		resp.Canonical = entries[0].CanonicalTerm
		resp.TargetID = entries[0].TargetID
		if v := tbl.Variations(resp.Canonical); v != nil {
			resp.Variations = v
		}
		if g, ok := tbl.Group(resp.TargetID); ok && len(g.Synonyms) > 0 {
			resp.Regions = make(map[string][]string, len(g.Synonyms))
			for _, syn := range g.Synonyms {
				resp.Regions[syn.Term] = syn.Regions
			}
		}
		return resp, nil
	}
}

func strategiesEndpoint(se *search.Engine) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return strategiesResponse{Strategies: se.Strategies()}, nil
	}
}
