package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rmaia/bolao/internal/auth"
	"github.com/rmaia/bolao/internal/service"
)

// GuessHandler serves guess submission, the per-pool game listing, and
// the guess count.
type GuessHandler struct {
	guesses *service.GuessService
	logger  *slog.Logger
}

func NewGuessHandler(guesses *service.GuessService, logger *slog.Logger) *GuessHandler {
	return &GuessHandler{guesses: guesses, logger: logger}
}

// HandleSubmit records the caller's score guess for one game.
//
// HTTP: POST /api/pools/{poolId}/games/{gameId}/guesses (requires auth)
// BODY: {"firstTeamPoints": 2, "secondTeamPoints": 1}
//
// This is the parsing boundary for point values: they must be present,
// integral, and non-negative here. No upper bound is enforced — if
// someone wants to predict 50x0, that's between them and their friends.
// Business rules (membership, duplicates, the kickoff window) belong to
// the service.
func (h *GuessHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("poolId")
	gameID := r.PathValue("gameId")

	// Pointers distinguish "field absent" from a legitimate 0-0 guess.
	var req struct {
		FirstTeamPoints  *int `json:"firstTeamPoints"`
		SecondTeamPoints *int `json:"secondTeamPoints"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid guess JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}
	if req.FirstTeamPoints == nil || req.SecondTeamPoints == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "firstTeamPoints and secondTeamPoints are required"})
		return
	}
	if *req.FirstTeamPoints < 0 || *req.SecondTeamPoints < 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "points must be non-negative"})
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())

	guess, err := h.guesses.Submit(r.Context(), poolID, gameID, *req.FirstTeamPoints, *req.SecondTeamPoints, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, guess)
}

// HandleListGames returns every game with the caller's own guess in the
// given pool attached (null where they haven't guessed).
//
// HTTP: GET /api/pools/{id}/games (requires auth)
func (h *GuessHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("id")
	userID, _ := auth.UserIDFromContext(r.Context())

	games, err := h.guesses.ListGames(r.Context(), poolID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, games)
}

// HandleCount returns the total number of guesses.
//
// HTTP: GET /api/guesses/count (public)
func (h *GuessHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.guesses.Count(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}
