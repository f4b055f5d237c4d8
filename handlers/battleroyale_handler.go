package handlers

import (
	"net/http"

	"github.com/bracketlab/tournament-engine/brackets"
	"github.com/bracketlab/tournament-engine/services"
)

type BattleRoyaleHandler struct {
	battleRoyaleService services.BattleRoyaleService
}

func NewBattleRoyaleHandler(battleRoyaleService services.BattleRoyaleService) *BattleRoyaleHandler {
	return &BattleRoyaleHandler{battleRoyaleService: battleRoyaleService}
}

type battleRoyaleEntryRequest struct {
	ParticipantID int `json:"participant_id"`
	Placement     int `json:"placement"`
	Kills         int `json:"kills"`
}

type scoreRoundRequest struct {
	Entries []battleRoyaleEntryRequest `json:"entries"`
}

// ScoreRoundHandler godoc
// @Summary Score one battle royale round
// @Description Applies placements and kills to the tournament's cumulative standings table.
// @Tags battle-royale
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body scoreRoundRequest true "Round results"
// @Success 200 {object} services.BattleRoyaleResult
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/battle-royale/results [post]
func (h *BattleRoyaleHandler) ScoreRoundHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req scoreRoundRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries := make([]brackets.BattleRoyaleEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = brackets.BattleRoyaleEntry{
			ParticipantID: e.ParticipantID,
			Placement:     e.Placement,
			Kills:         e.Kills,
		}
	}

	result, err := h.battleRoyaleService.ScoreRound(r.Context(), tournamentID, entries)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
