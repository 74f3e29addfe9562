package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/flatnav/flatnav-go/pkg/api/rest/middleware"
	"github.com/flatnav/flatnav-go/pkg/observability"
	"github.com/flatnav/flatnav-go/pkg/tenant"
)

// Handler serves the flatnav HTTP surface directly against an in-process
// tenant manager: there is no RPC hop between the REST layer and the graph.
type Handler struct {
	manager *tenant.Manager
	metrics *observability.Metrics

	defaultEfConstruction int
	defaultEfSearch       int
}

// NewHandler creates a new REST API handler.
func NewHandler(manager *tenant.Manager, metrics *observability.Metrics, efConstruction, efSearch int) *Handler {
	return &Handler{
		manager:               manager,
		metrics:               metrics,
		defaultEfConstruction: efConstruction,
		defaultEfSearch:       efSearch,
	}
}

// InsertRequest is the JSON body for POST /v1/vectors
type InsertRequest struct {
	Namespace      string    `json:"namespace"`
	Label          uint64    `json:"label"`
	Vector         []float32 `json:"vector"`
	EfConstruction int       `json:"ef_construction,omitempty"`
}

// InsertResponse is the JSON body returned from POST /v1/vectors
type InsertResponse struct {
	Success bool   `json:"success"`
	Label   uint64 `json:"label"`
	Error   string `json:"error,omitempty"`
}

// SearchRequest is the JSON body for POST /v1/vectors/search
type SearchRequest struct {
	Namespace string    `json:"namespace"`
	Vector    []float32 `json:"vector"`
	TopK      int       `json:"top_k"`
	EfSearch  int       `json:"ef_search,omitempty"`
}

// SearchResult mirrors one flatnav.Result over the wire.
type SearchResult struct {
	Label    uint64  `json:"label"`
	Distance float32 `json:"distance"`
}

// SearchResponse is the JSON body returned from POST /v1/vectors/search
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}

// BatchInsertRequest is the JSON body for POST /v1/vectors/batch
type BatchInsertRequest struct {
	Namespace      string      `json:"namespace"`
	Vectors        []InsertVec `json:"vectors"`
	EfConstruction int         `json:"ef_construction,omitempty"`
}

// InsertVec is one (label, vector) pair within a batch insert request.
type InsertVec struct {
	Label  uint64    `json:"label"`
	Vector []float32 `json:"vector"`
}

// BatchInsertResponse is the JSON body returned from POST /v1/vectors/batch
type BatchInsertResponse struct {
	Inserted int      `json:"inserted"`
	Errors   []string `json:"errors,omitempty"`
}

// HealthCheck handles GET /v1/health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// GetStats handles GET /v1/stats and GET /v1/stats/{namespace}
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/stats")
	namespace := strings.TrimPrefix(path, "/")

	if namespace != "" {
		if err := middleware.AuthorizeNamespace(r.Context(), namespace); err != nil {
			writeError(w, err.Error(), http.StatusForbidden)
			return
		}
		t, err := h.manager.GetTenant(namespace)
		if err != nil {
			writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, namespaceStats(t), http.StatusOK)
		return
	}

	all := h.manager.ListTenants()
	stats := make([]map[string]interface{}, 0, len(all))
	for _, t := range all {
		if middleware.AuthorizeNamespace(r.Context(), t.Namespace) != nil {
			continue
		}
		stats = append(stats, namespaceStats(t))
	}
	if h.metrics != nil {
		h.metrics.UpdateTenantCount(len(all))
	}
	writeJSON(w, map[string]interface{}{"namespaces": stats}, http.StatusOK)
}

func namespaceStats(t *tenant.Tenant) map[string]interface{} {
	stats := map[string]interface{}{
		"namespace":    t.Namespace,
		"vector_count": t.Usage.VectorCount,
		"dimensions":   t.Usage.Dimensions,
		"is_active":    t.IsActive,
		"usage":        t.GetUsagePercentage(),
	}
	if cacheStats, ok := t.CacheStats(); ok {
		stats["cache"] = cacheStats
	}
	return stats
}

// Insert handles POST /v1/vectors
func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req InsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := middleware.AuthorizeNamespace(r.Context(), req.Namespace); err != nil {
		writeError(w, err.Error(), http.StatusForbidden)
		return
	}

	t, err := h.getOrCreateTenant(req.Namespace, len(req.Vector))
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	efConstruction := req.EfConstruction
	if efConstruction <= 0 {
		efConstruction = h.defaultEfConstruction
	}

	start := time.Now()
	if err := t.InsertVector(req.Label, req.Vector, efConstruction); err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("Insert", "insert_failed")
		}
		writeJSON(w, InsertResponse{Success: false, Error: err.Error()}, http.StatusBadRequest)
		return
	}

	duration := time.Since(start)
	if h.metrics != nil {
		h.metrics.RecordRequest("Insert", "success", duration)
		h.metrics.RecordInsert(duration)
		h.metrics.UpdateGraphSize(t.Namespace, t.Index.Len())
	}

	writeJSON(w, InsertResponse{Success: true, Label: req.Label}, http.StatusCreated)
}

// Search handles POST /v1/vectors/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := middleware.AuthorizeNamespace(r.Context(), req.Namespace); err != nil {
		writeError(w, err.Error(), http.StatusForbidden)
		return
	}

	t, err := h.manager.GetTenant(req.Namespace)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	efSearch := req.EfSearch
	if efSearch <= 0 {
		efSearch = h.defaultEfSearch
	}
	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	cacheBefore, hasCache := t.CacheStats()

	start := time.Now()
	results, err := t.QueryVector(req.Vector, efSearch, topK)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("Query", "query_failed")
		}
		writeJSON(w, SearchResponse{Error: err.Error()}, http.StatusBadRequest)
		return
	}
	duration := time.Since(start)

	if hasCache && h.metrics != nil {
		cacheAfter, _ := t.CacheStats()
		if cacheAfter.Hits > cacheBefore.Hits {
			h.metrics.RecordCacheHit()
		} else if cacheAfter.Misses > cacheBefore.Misses {
			h.metrics.RecordCacheMiss()
		}
		h.metrics.UpdateCacheSize(cacheAfter.Size)
	}

	out := make([]SearchResult, len(results))
	for i, res := range results {
		out[i] = SearchResult{Label: res.Label, Distance: res.Distance}
	}

	if h.metrics != nil {
		h.metrics.RecordRequest("Query", "success", duration)
		h.metrics.RecordQuery(duration, len(out))
	}

	writeJSON(w, SearchResponse{Results: out}, http.StatusOK)
}

// BatchInsert handles POST /v1/vectors/batch
func (h *Handler) BatchInsert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BatchInsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := middleware.AuthorizeNamespace(r.Context(), req.Namespace); err != nil {
		writeError(w, err.Error(), http.StatusForbidden)
		return
	}

	dim := 0
	if len(req.Vectors) > 0 {
		dim = len(req.Vectors[0].Vector)
	}
	t, err := h.getOrCreateTenant(req.Namespace, dim)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	efConstruction := req.EfConstruction
	if efConstruction <= 0 {
		efConstruction = h.defaultEfConstruction
	}

	start := time.Now()
	inserted := 0
	var errs []string
	for _, v := range req.Vectors {
		if err := t.InsertVector(v.Label, v.Vector, efConstruction); err != nil {
			errs = append(errs, fmt.Sprintf("label %d: %v", v.Label, err))
			continue
		}
		inserted++
	}
	duration := time.Since(start)

	if h.metrics != nil {
		h.metrics.RecordBatchInsert(duration, inserted)
		h.metrics.UpdateGraphSize(t.Namespace, t.Index.Len())
	}

	writeJSON(w, BatchInsertResponse{Inserted: inserted, Errors: errs}, http.StatusCreated)
}

// getOrCreateTenant returns the tenant for namespace, creating it with an
// unlimited quota if it doesn't exist yet. dim is not used: a new
// namespace's index takes the dimension the manager was built with.
func (h *Handler) getOrCreateTenant(namespace string, dim int) (*tenant.Tenant, error) {
	t, err := h.manager.GetTenant(namespace)
	if err == nil {
		return t, nil
	}
	quota := tenant.UnlimitedQuota()
	return h.manager.CreateTenant(namespace, quota)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}

// ParseIntQuery parses an integer query parameter
func ParseIntQuery(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}
