package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hazyhaar/touchstone-catalog/pkg/kit"
	"github.com/hazyhaar/touchstone-catalog/pkg/query"
	"github.com/hazyhaar/touchstone-catalog/pkg/search"
)

// NewRouter returns an http.Handler with all catalog API routes.
func NewRouter(svc *Service) http.Handler {
	mux := http.NewServeMux()
	h := &handler{svc: svc}

	mux.HandleFunc("GET /v1/search", h.handleSearch)
	mux.HandleFunc("GET /v1/search/batch", methodNotAllowed)
	mux.HandleFunc("POST /v1/search/batch", h.handleSearchBatch)
	mux.HandleFunc("POST /v1/query", h.handleQuery)
	mux.HandleFunc("GET /v1/synonyms/{term}", h.handleResolve)
	mux.HandleFunc("GET /v1/synonyms/{term}/variations", h.handleVariations)
	mux.HandleFunc("GET /v1/strategies", h.handleStrategies)
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	mux.Handle("GET /metrics", svc.metrics.Handler())

	return kit.RequestID(cors(mux))
}

type handler struct {
	svc *Service
}

// --- search ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	opts, err := parseSearchOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.searchEP(r.Context(), &searchReq{Query: r.URL.Query().Get("q"), Options: opts})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- search batch ---

func (h *handler) handleSearchBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	var req batchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	resp, err := h.svc.batchEP(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- query ---

func (h *handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	var req query.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SortDirection != "" && req.SortDirection != query.Ascending && req.SortDirection != query.Descending {
		writeError(w, http.StatusBadRequest, "sort_direction must be asc or desc")
		return
	}
	resp, err := h.svc.queryEP(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- synonyms ---

func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	h.serveTerm(w, r, h.svc.resolveEP)
}

func (h *handler) handleVariations(w http.ResponseWriter, r *http.Request) {
	h.serveTerm(w, r, h.svc.variationsEP)
}

func (h *handler) serveTerm(w http.ResponseWriter, r *http.Request, ep kit.Endpoint) {
	term := r.PathValue("term")
	if term == "" {
		writeError(w, http.StatusBadRequest, "missing term")
		return
	}
	resp, err := ep(r.Context(), &resolveReq{Term: term})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- strategies ---

func (h *handler) handleStrategies(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.strategiesEP(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status       string `json:"status"`
	Entries      int    `json:"entries"`
	SynonymTerms int    `json:"synonym_terms"`
	FilterKinds  int    `json:"filter_kinds"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		Entries:      h.svc.search.Len(),
		SynonymTerms: h.svc.search.Synonyms().Stats().TotalTerms,
		FilterKinds:  len(h.svc.query.Registry().Kinds()),
	})
}

// --- helpers ---

func parseSearchOptions(r *http.Request) (search.Options, error) {
	var opts search.Options
	q := r.URL.Query()
	if v := q.Get("min_score"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return opts, badParamError("min_score")
		}
		opts.MinScore = f
	}
	if v := q.Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, badParamError("max_results")
		}
		opts.MaxResults = n
	}
	return opts, nil
}

type badParamError string

func (e badParamError) Error() string { return "invalid " + string(e) }

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
