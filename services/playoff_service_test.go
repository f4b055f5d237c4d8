package services

import (
	"context"
	"errors"
	"testing"

	"github.com/bracketlab/tournament-engine/models"
)

// finishGroupStage records every pending fixture with the lower participant
// ID winning 2-0, which makes the group tables fully deterministic.
func finishGroupStage(t *testing.T, env *testEnv, tournamentID int) {
	t.Helper()
	ctx := context.Background()
	for id, f := range env.store.fixtures {
		g, ok := env.store.groups[f.GroupID]
		if !ok || g.TournamentID != tournamentID || f.Status == models.FixtureCompleted {
			continue
		}
		score1, score2 := 2, 0
		if f.Participant2ID < f.Participant1ID {
			score1, score2 = 0, 2
		}
		if _, err := env.roundRobin.RecordFixtureResult(ctx, id, score1, score2); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCreatePlayoffsKeepsGroupOpponentsApart(t *testing.T) {
	env := newTestEnv()
	env.store.addTournament(1, models.BracketRoundRobin, 16, models.StatusRegistrationOpen)
	env.store.addParticipants(1, 1, 2, 3, 4, 5, 6, 7, 8)
	ctx := context.Background()

	if _, err := env.roundRobin.CreateGroups(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}
	finishGroupStage(t, env, 1)

	summary, err := env.playoff.CreatePlayoffs(ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}

	if summary.BracketSize != 4 || summary.Matches != 3 {
		t.Fatalf("playoff size %d with %d matches, want 4 and 3", summary.BracketSize, summary.Matches)
	}
	if len(summary.Qualifiers) != 4 {
		t.Fatalf("%d qualifiers, want 4", len(summary.Qualifiers))
	}

	// Snake pools were {1,4,5,8} and {2,3,6,7}; with the lower ID always
	// winning, the qualifiers are 1, 4, 2 and 3. No round-one match may
	// rematch two entries from the same pool.
	memberGroup := make(map[int]int)
	for groupID, members := range env.store.members {
		for _, pid := range members {
			memberGroup[pid] = groupID
		}
	}
	for _, m := range env.store.matches {
		if m.Section != models.SectionWinners || m.Round != 1 {
			continue
		}
		ids := matchParticipantIDs(env, m.ID)
		if len(ids) != 2 {
			t.Fatalf("playoff round one match %d has %d participants", m.ID, len(ids))
		}
		if memberGroup[ids[0]] == memberGroup[ids[1]] {
			t.Fatalf("round one match %d pairs group mates %v", m.ID, ids)
		}
	}

	// Group winners are re-seeded into opposite halves.
	r1m0 := findMatch(t, env, models.SectionWinners, 1, 0)
	r1m1 := findMatch(t, env, models.SectionWinners, 1, 1)
	firstPair := matchParticipantIDs(env, r1m0.ID)
	secondPair := matchParticipantIDs(env, r1m1.ID)
	inFirst := firstPair[0] == 1 || firstPair[1] == 1
	twoInSecond := secondPair[0] == 2 || secondPair[1] == 2
	if !inFirst || !twoInSecond {
		t.Fatalf("group winners share a half: %v and %v", firstPair, secondPair)
	}
}

func TestCreatePlayoffsPreconditions(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.playoff.CreatePlayoffs(ctx, 42, 2); !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("expected ErrTournamentNotFound, got %v", err)
	}

	env.store.addTournament(1, models.BracketRoundRobin, 16, models.StatusRegistrationOpen)
	env.store.addParticipants(1, 1, 2, 3, 4, 5, 6, 7, 8)

	if _, err := env.playoff.CreatePlayoffs(ctx, 1, 0); !errors.Is(err, ErrInvalidQualifierCount) {
		t.Fatalf("expected ErrInvalidQualifierCount, got %v", err)
	}
	if _, err := env.playoff.CreatePlayoffs(ctx, 1, 2); !errors.Is(err, ErrNoGroups) {
		t.Fatalf("expected ErrNoGroups before group creation, got %v", err)
	}

	if _, err := env.roundRobin.CreateGroups(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := env.playoff.CreatePlayoffs(ctx, 1, 2); !errors.Is(err, ErrGroupStageIncomplete) {
		t.Fatalf("expected ErrGroupStageIncomplete with pending fixtures, got %v", err)
	}

	finishGroupStage(t, env, 1)
	if _, err := env.playoff.CreatePlayoffs(ctx, 1, 5); !errors.Is(err, ErrInvalidQualifierCount) {
		t.Fatalf("expected ErrInvalidQualifierCount for more qualifiers than group members, got %v", err)
	}

	if _, err := env.playoff.CreatePlayoffs(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := env.playoff.CreatePlayoffs(ctx, 1, 2); !errors.Is(err, ErrBracketExists) {
		t.Fatalf("expected ErrBracketExists on a rebuilt playoff, got %v", err)
	}
}

func TestPlayoffBracketPlaysThrough(t *testing.T) {
	env := newTestEnv()
	env.store.addTournament(1, models.BracketRoundRobin, 16, models.StatusRegistrationOpen)
	env.store.addParticipants(1, 1, 2, 3, 4, 5, 6, 7, 8)
	ctx := context.Background()

	if _, err := env.roundRobin.CreateGroups(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}
	finishGroupStage(t, env, 1)
	if _, err := env.playoff.CreatePlayoffs(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}

	r1m0 := findMatch(t, env, models.SectionWinners, 1, 0)
	r1m1 := findMatch(t, env, models.SectionWinners, 1, 1)
	final := findMatch(t, env, models.SectionWinners, 2, 0)

	w0 := matchParticipantIDs(env, r1m0.ID)[0]
	w1 := matchParticipantIDs(env, r1m1.ID)[0]
	submitWin(t, env, r1m0.ID, w0)
	submitWin(t, env, r1m1.ID, w1)

	out := submitWin(t, env, final.ID, w0)
	if !out.TournamentCompleted || *out.ChampionParticipantID != w0 {
		t.Fatal("playoff final must crown the champion")
	}
	if env.store.tournaments[1].Status != models.StatusCompleted {
		t.Fatalf("tournament status %q, want completed", env.store.tournaments[1].Status)
	}
}
