package handlers

import (
	"net/http"

	"github.com/bracketlab/tournament-engine/services"
)

const defaultQualifiersPerGroup = 2

type PlayoffHandler struct {
	playoffService services.PlayoffService
}

func NewPlayoffHandler(playoffService services.PlayoffService) *PlayoffHandler {
	return &PlayoffHandler{playoffService: playoffService}
}

type createPlayoffsRequest struct {
	QualifiersPerGroup int `json:"qualifiers_per_group"`
}

// CreatePlayoffsHandler godoc
// @Summary Build the playoff bracket from finished group tables
// @Description Promotes the top entries of each group into a single-elimination bracket, re-seeded by table quality.
// @Tags playoffs
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body createPlayoffsRequest false "Qualifiers per group, default 2"
// @Success 201 {object} services.PlayoffSummary
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /tournaments/{tournamentID}/playoffs [post]
func (h *PlayoffHandler) CreatePlayoffsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	req := createPlayoffsRequest{QualifiersPerGroup: defaultQualifiersPerGroup}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	summary, err := h.playoffService.CreatePlayoffs(r.Context(), tournamentID, req.QualifiersPerGroup)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"playoffs": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
