package services

import (
	"context"
	"errors"
	"testing"

	"github.com/bracketlab/tournament-engine/models"
)

func TestGenerateBracketSingleEliminationWithByes(t *testing.T) {
	env := newTestEnv()
	env.store.addTournament(1, models.BracketSingleElimination, 16, models.StatusRegistrationOpen)
	env.store.addParticipants(1, 11, 12, 13, 14, 15)

	summary, err := env.bracket.GenerateBracket(context.Background(), 1, false)
	if err != nil {
		t.Fatal(err)
	}

	if summary.BracketSize != 8 || summary.Rounds != 3 || summary.MatchCount != 7 {
		t.Fatalf("summary size/rounds/matches = %d/%d/%d, want 8/3/7",
			summary.BracketSize, summary.Rounds, summary.MatchCount)
	}
	if summary.ByeCount != 3 {
		t.Fatalf("bye count %d, want 3", summary.ByeCount)
	}
	// The three one-participant round-one matches settle immediately; the
	// remaining matches wait for real results.
	if summary.AutoResolved != 3 {
		t.Fatalf("auto resolved %d, want 3", summary.AutoResolved)
	}

	if env.store.tournaments[1].Status != models.StatusOngoing {
		t.Fatalf("tournament status %q, want ongoing", env.store.tournaments[1].Status)
	}

	recorded := 0
	for _, m := range env.store.matches {
		if m.State == models.MatchStateScoreRecorded {
			recorded++
		}
	}
	if recorded != 3 {
		t.Fatalf("%d matches recorded after generation, want the 3 byes", recorded)
	}
}

func TestGenerateBracketRejectsExistingUnlessForced(t *testing.T) {
	env := newTestEnv()
	env.store.addTournament(1, models.BracketSingleElimination, 16, models.StatusRegistrationOpen)
	env.store.addParticipants(1, 11, 12, 13, 14)
	ctx := context.Background()

	if _, err := env.bracket.GenerateBracket(ctx, 1, false); err != nil {
		t.Fatal(err)
	}
	_, err := env.bracket.GenerateBracket(ctx, 1, false)
	if !errors.Is(err, ErrBracketExists) {
		t.Fatalf("expected ErrBracketExists, got %v", err)
	}
	if !errors.Is(err, ErrConflict) {
		t.Fatal("ErrBracketExists must classify as a conflict")
	}

	summary, err := env.bracket.GenerateBracket(ctx, 1, true)
	if err != nil {
		t.Fatalf("forced regeneration failed: %v", err)
	}
	if summary.MatchCount != 3 {
		t.Fatalf("regenerated bracket has %d matches, want 3", summary.MatchCount)
	}
	if len(env.store.matches) != 3 {
		t.Fatalf("store holds %d matches after forced rebuild, want 3", len(env.store.matches))
	}
}

func TestGenerateBracketValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.bracket.GenerateBracket(ctx, 99, false); !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("expected ErrTournamentNotFound, got %v", err)
	}

	env.store.addTournament(1, models.BracketRoundRobin, 16, models.StatusRegistrationOpen)
	env.store.addParticipants(1, 11, 12, 13, 14)
	if _, err := env.bracket.GenerateBracket(ctx, 1, false); !errors.Is(err, ErrUnsupportedBracket) {
		t.Fatalf("expected ErrUnsupportedBracket for round robin, got %v", err)
	}

	env.store.addTournament(2, models.BracketSingleElimination, 16, models.StatusDraft)
	env.store.addParticipants(2, 21, 22)
	if _, err := env.bracket.GenerateBracket(ctx, 2, false); !errors.Is(err, ErrTournamentNotReady) {
		t.Fatalf("expected ErrTournamentNotReady for draft tournament, got %v", err)
	}

	env.store.addTournament(3, models.BracketSingleElimination, 16, models.StatusRegistrationOpen)
	env.store.addParticipants(3, 31)
	if _, err := env.bracket.GenerateBracket(ctx, 3, false); !errors.Is(err, ErrNotEnoughParticipants) {
		t.Fatalf("expected ErrNotEnoughParticipants, got %v", err)
	}

	env.store.addTournament(4, models.BracketSingleElimination, 2, models.StatusRegistrationOpen)
	env.store.addParticipants(4, 41, 42, 43)
	if _, err := env.bracket.GenerateBracket(ctx, 4, false); !errors.Is(err, ErrTooManyParticipants) {
		t.Fatalf("expected ErrTooManyParticipants, got %v", err)
	}
}

func TestGetBracketGroupsSectionsAndRounds(t *testing.T) {
	env := newTestEnv()
	env.store.addTournament(1, models.BracketDoubleElimination, 16, models.StatusRegistrationOpen)
	env.store.addParticipants(1, 11, 12, 13, 14)
	ctx := context.Background()

	if _, err := env.bracket.GenerateBracket(ctx, 1, false); err != nil {
		t.Fatal(err)
	}

	view, err := env.bracket.GetBracket(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if view.BracketType != models.BracketDoubleElimination {
		t.Fatalf("view bracket type %q", view.BracketType)
	}

	bySection := make(map[models.BracketSection]int)
	total := 0
	for _, sec := range view.Sections {
		for _, round := range sec.Rounds {
			bySection[sec.Section] += len(round.Matches)
			total += len(round.Matches)
		}
	}
	if total != 6 {
		t.Fatalf("view shows %d matches for 4 entrants, want 6", total)
	}
	if bySection[models.SectionWinners] != 3 || bySection[models.SectionLosers] != 2 || bySection[models.SectionGrandFinals] != 1 {
		t.Fatalf("section spread %v, want winners 3, losers 2, grand finals 1", bySection)
	}

	for _, sec := range view.Sections {
		for _, round := range sec.Rounds {
			for _, m := range round.Matches {
				if m.Round == 1 && sec.Section == models.SectionWinners && len(m.Participants) != 2 {
					t.Fatalf("winners round one match %d shows %d participants", m.ID, len(m.Participants))
				}
			}
		}
	}
}
