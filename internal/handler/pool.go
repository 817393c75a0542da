package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rmaia/bolao/internal/auth"
	"github.com/rmaia/bolao/internal/service"
)

// PoolHandler serves the pool endpoints: create, join, list, get, count.
type PoolHandler struct {
	pools  *service.PoolService
	logger *slog.Logger
}

func NewPoolHandler(pools *service.PoolService, logger *slog.Logger) *PoolHandler {
	return &PoolHandler{pools: pools, logger: logger}
}

// HandleCreate creates a new pool.
//
// HTTP: POST /api/pools
// BODY: {"title": "World Cup"}
//
// Runs behind OptionalAuth: an authenticated caller becomes owner and
// first participant; an anonymous caller gets an ownerless pool. Either
// way the response is just the title and the shareable code — the pool
// id is not exposed at creation.
func (h *PoolHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid create-pool JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context()) // "" when anonymous

	pool, err := h.pools.Create(r.Context(), req.Title, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"title": pool.Title,
		"code":  pool.Code,
	})
}

// HandleJoin adds the caller to the pool with the posted code.
//
// HTTP: POST /api/pools/join (requires auth)
// BODY: {"code": "AB12CD"}
func (h *PoolHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid join-pool JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.pools.Join(r.Context(), req.Code, userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// HandleList returns summaries of the pools the caller participates in.
//
// HTTP: GET /api/pools (requires auth)
func (h *PoolHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	summaries, err := h.pools.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// HandleGetByID returns one pool summary.
//
// HTTP: GET /api/pools/{id} (requires auth, but no membership check —
// any authenticated user can open a pool page by id)
func (h *PoolHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	summary, err := h.pools.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// HandleCount returns the total number of pools.
//
// HTTP: GET /api/pools/count (public — it's the landing page's
// "X pools already created" banner)
func (h *PoolHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.pools.Count(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}
