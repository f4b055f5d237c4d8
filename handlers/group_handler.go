package handlers

import (
	"net/http"

	"github.com/bracketlab/tournament-engine/services"
)

type GroupHandler struct {
	roundRobinService services.RoundRobinService
}

func NewGroupHandler(roundRobinService services.RoundRobinService) *GroupHandler {
	return &GroupHandler{roundRobinService: roundRobinService}
}

type createGroupsRequest struct {
	NumGroups int `json:"num_groups"`
}

type recordFixtureRequest struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

// CreateGroupsHandler godoc
// @Summary Create round robin groups and fixtures
// @Description Splits accepted participants into pools with snake seeding and schedules every pool with the circle method.
// @Tags groups
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body createGroupsRequest true "Number of groups"
// @Success 201 {object} services.GroupStageSummary
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tournaments/{tournamentID}/groups [post]
func (h *GroupHandler) CreateGroupsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	req := createGroupsRequest{NumGroups: 1}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	summary, err := h.roundRobinService.CreateGroups(r.Context(), tournamentID, req.NumGroups)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"group_stage": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordFixtureResultHandler godoc
// @Summary Record a round robin fixture result
// @Description Stores the score (draws allowed) and recomputes the group table.
// @Tags groups
// @Accept json
// @Produce json
// @Param fixtureID path int true "Fixture ID"
// @Param body body recordFixtureRequest true "Final score"
// @Success 200 {object} services.FixtureOutcome
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /fixtures/{fixtureID}/result [post]
func (h *GroupHandler) RecordFixtureResultHandler(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req recordFixtureRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.roundRobinService.RecordFixtureResult(r.Context(), fixtureID, req.Score1, req.Score2)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetStandingsHandler godoc
// @Summary Read ranked group tables
// @Tags groups
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {array} services.GroupStandings
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/standings [get]
func (h *GroupHandler) GetStandingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.roundRobinService.GetStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
