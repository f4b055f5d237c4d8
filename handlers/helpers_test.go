package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bracketlab/tournament-engine/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", services.ErrTournamentNotFound, http.StatusNotFound},
		{"validation", services.ErrDrawNotAllowed, http.StatusBadRequest},
		{"conflict", services.ErrBracketExists, http.StatusConflict},
		{"precondition", services.ErrGroupStageIncomplete, http.StatusUnprocessableEntity},
		{"storage", services.ErrStorage, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		mapServiceErrorToHTTP(rec, req, tc.err)
		if rec.Code != tc.wantStatus {
			t.Errorf("%s: got status %d, want %d", tc.name, rec.Code, tc.wantStatus)
		}
	}
}

// Partial completion is a 500 like a storage failure, but its payload is
// flagged so callers can tell the cascade stopped with work left.
func TestPartialCompletionResponseIsDistinct(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tournaments/1/byes/resolve", nil)
	err := fmt.Errorf("%w: 2 matches resolved before iteration cap", services.ErrPartialCompletion)

	mapServiceErrorToHTTP(rec, req, err)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var body struct {
		Error             string `json:"error"`
		PartialCompletion bool   `json:"partial_completion"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.PartialCompletion {
		t.Fatalf("payload %s is missing the partial_completion flag", rec.Body.String())
	}
	if body.Error == "" {
		t.Fatal("payload is missing the error message")
	}
}
