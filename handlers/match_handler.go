package handlers

import (
	"net/http"

	"github.com/bracketlab/tournament-engine/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type submitResultRequest struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

// SubmitResultHandler godoc
// @Summary Record a match result
// @Description Stores the score, advances winner and loser along their links and resolves any byes the advancement created.
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body submitResultRequest true "Final score"
// @Success 200 {object} services.MatchOutcome
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /matches/{matchID}/result [post]
func (h *MatchHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req submitResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.matchService.SubmitResult(r.Context(), matchID, req.Score1, req.Score2)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResolveByesHandler godoc
// @Summary Resolve outstanding byes
// @Description Re-runs the bye cascade for a tournament. Safe to call repeatedly.
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/byes/resolve [post]
func (h *MatchHandler) ResolveByesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	processed, err := h.matchService.ResolveByes(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"byes_resolved": processed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
