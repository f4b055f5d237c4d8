package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/bracketlab/tournament-engine/brackets"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
)

// memStore is an in-memory stand-in for the database shared by the fake
// repositories. Tests exercise the services end to end without Postgres.
type memStore struct {
	tournaments  map[int]*models.Tournament
	participants []*models.Participant
	matches      map[int]*models.Match
	matchParts   []*models.MatchParticipant
	groups       map[int]*models.Group
	members      map[int][]int
	standings    map[int]*models.Standing
	fixtures     map[int]*models.RoundRobinFixture

	nextMatchID    int
	nextGroupID    int
	nextStandingID int
	nextFixtureID  int
}

func newMemStore() *memStore {
	return &memStore{
		tournaments:    make(map[int]*models.Tournament),
		matches:        make(map[int]*models.Match),
		groups:         make(map[int]*models.Group),
		members:        make(map[int][]int),
		standings:      make(map[int]*models.Standing),
		fixtures:       make(map[int]*models.RoundRobinFixture),
		nextMatchID:    1,
		nextGroupID:    1,
		nextStandingID: 1,
		nextFixtureID:  1,
	}
}

func (s *memStore) addTournament(id int, bracketType models.BracketType, maxParticipants int, status models.TournamentStatus) {
	s.tournaments[id] = &models.Tournament{
		ID:              id,
		Name:            "test",
		BracketType:     bracketType,
		MaxParticipants: maxParticipants,
		Status:          status,
		CreatedAt:       time.Now(),
	}
}

func (s *memStore) addParticipants(tournamentID int, ids ...int) {
	base := time.Now()
	for i, id := range ids {
		s.participants = append(s.participants, &models.Participant{
			ID:           id,
			TournamentID: tournamentID,
			DisplayName:  "p",
			SourceKind:   models.SourcePlayer,
			CreatedAt:    base.Add(time.Duration(i) * time.Second),
		})
	}
}

type fakeTransactor struct{}

func (fakeTransactor) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTournamentRepo struct{ store *memStore }

func (r *fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := r.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

type fakeParticipantRepo struct{ store *memStore }

func (r *fakeParticipantRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Participant, error) {
	for _, p := range r.store.participants {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListAcceptedByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.Participant, error) {
	var out []*models.Participant
	for _, p := range r.store.participants {
		if p.TournamentID == tournamentID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type fakeMatchRepo struct{ store *memStore }

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	match.ID = r.store.nextMatchID
	r.store.nextMatchID++
	match.CreatedAt = time.Now()
	cp := *match
	r.store.matches[match.ID] = &cp
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	m, ok := r.store.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.store.matches {
		if m.TournamentID == tournamentID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Section != out[j].Section {
			return out[i].Section < out[j].Section
		}
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (r *fakeMatchRepo) UpdateLinks(_ context.Context, _ repositories.SQLExecutor, matchID int, nextMatchID, loserGoesToMatchID *int) error {
	m, ok := r.store.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.NextMatchID = nextMatchID
	m.LoserGoesToMatchID = loserGoesToMatchID
	return nil
}

func (r *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, matchID int, score1, score2, winnerParticipantID *int, state models.MatchState) error {
	m, ok := r.store.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Score1 = score1
	m.Score2 = score2
	m.WinnerParticipantID = winnerParticipantID
	m.State = state
	return nil
}

func (r *fakeMatchRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, m := range r.store.matches {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for id, m := range r.store.matches {
		if m.TournamentID == tournamentID {
			delete(r.store.matches, id)
		}
	}
	return nil
}

type fakeMatchParticipantRepo struct{ store *memStore }

func (r *fakeMatchParticipantRepo) InsertIfAbsent(_ context.Context, _ repositories.SQLExecutor, mp *models.MatchParticipant) (bool, error) {
	for _, existing := range r.store.matchParts {
		if existing.MatchID == mp.MatchID && existing.ParticipantID == mp.ParticipantID {
			return false, nil
		}
	}
	cp := *mp
	r.store.matchParts = append(r.store.matchParts, &cp)
	return true, nil
}

func (r *fakeMatchParticipantRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]*models.MatchParticipant, error) {
	var out []*models.MatchParticipant
	for _, mp := range r.store.matchParts {
		if mp.MatchID == matchID {
			cp := *mp
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out, nil
}

func (r *fakeMatchParticipantRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.MatchParticipant, error) {
	var out []*models.MatchParticipant
	for _, mp := range r.store.matchParts {
		m, ok := r.store.matches[mp.MatchID]
		if ok && m.TournamentID == tournamentID {
			cp := *mp
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchID != out[j].MatchID {
			return out[i].MatchID < out[j].MatchID
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out, nil
}

func (r *fakeMatchParticipantRepo) UpdateOutcome(_ context.Context, _ repositories.SQLExecutor, matchID, participantID int, isWinner bool, resultText *string, status models.MatchParticipantStatus) error {
	for _, mp := range r.store.matchParts {
		if mp.MatchID == matchID && mp.ParticipantID == participantID {
			mp.IsWinner = isWinner
			mp.ResultText = resultText
			mp.Status = status
			return nil
		}
	}
	return repositories.ErrMatchParticipantNotFound
}

func (r *fakeMatchParticipantRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	kept := r.store.matchParts[:0]
	for _, mp := range r.store.matchParts {
		m, ok := r.store.matches[mp.MatchID]
		if ok && m.TournamentID == tournamentID {
			continue
		}
		kept = append(kept, mp)
	}
	r.store.matchParts = kept
	return nil
}

type fakeGroupRepo struct{ store *memStore }

func (r *fakeGroupRepo) Create(_ context.Context, _ repositories.SQLExecutor, group *models.Group) error {
	group.ID = r.store.nextGroupID
	r.store.nextGroupID++
	cp := *group
	r.store.groups[group.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Group, error) {
	g, ok := r.store.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGroupRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.Group, error) {
	var out []*models.Group
	for _, g := range r.store.groups {
		if g.TournamentID == tournamentID {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeGroupRepo) AddMember(_ context.Context, _ repositories.SQLExecutor, groupID, participantID int) error {
	for _, id := range r.store.members[groupID] {
		if id == participantID {
			return repositories.ErrGroupMemberConflict
		}
	}
	r.store.members[groupID] = append(r.store.members[groupID], participantID)
	return nil
}

func (r *fakeGroupRepo) ListMembers(_ context.Context, _ repositories.SQLExecutor, groupID int) ([]int, error) {
	out := append([]int(nil), r.store.members[groupID]...)
	sort.Ints(out)
	return out, nil
}

func (r *fakeGroupRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for id, g := range r.store.groups {
		if g.TournamentID == tournamentID {
			delete(r.store.members, id)
			delete(r.store.groups, id)
		}
	}
	return nil
}

type fakeStandingRepo struct{ store *memStore }

func (r *fakeStandingRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, standings []*models.Standing) error {
	for _, st := range standings {
		st.ID = r.store.nextStandingID
		r.store.nextStandingID++
		st.UpdatedAt = time.Now()
		cp := *st
		r.store.standings[st.ID] = &cp
	}
	return nil
}

func (r *fakeStandingRepo) GetByGroupAndParticipant(_ context.Context, _ repositories.SQLExecutor, groupID, participantID int) (*models.Standing, error) {
	for _, st := range r.store.standings {
		if st.GroupID == groupID && st.ParticipantID == participantID {
			cp := *st
			return &cp, nil
		}
	}
	return nil, repositories.ErrStandingNotFound
}

func (r *fakeStandingRepo) ListByGroup(_ context.Context, _ repositories.SQLExecutor, groupID int) ([]*models.Standing, error) {
	var out []*models.Standing
	for _, st := range r.store.standings {
		if st.GroupID == groupID {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.ScoreFor != b.ScoreFor {
			return a.ScoreFor > b.ScoreFor
		}
		return a.ParticipantID < b.ParticipantID
	})
	return out, nil
}

func (r *fakeStandingRepo) Update(_ context.Context, _ repositories.SQLExecutor, standing *models.Standing) error {
	st, ok := r.store.standings[standing.ID]
	if !ok {
		return repositories.ErrStandingNotFound
	}
	cp := *standing
	cp.UpdatedAt = time.Now()
	*st = cp
	return nil
}

func (r *fakeStandingRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for id, st := range r.store.standings {
		if st.TournamentID == tournamentID {
			delete(r.store.standings, id)
		}
	}
	return nil
}

type fakeFixtureRepo struct{ store *memStore }

func (r *fakeFixtureRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, fixtures []*models.RoundRobinFixture) error {
	for _, f := range fixtures {
		f.ID = r.store.nextFixtureID
		r.store.nextFixtureID++
		cp := *f
		r.store.fixtures[f.ID] = &cp
	}
	return nil
}

func (r *fakeFixtureRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.RoundRobinFixture, error) {
	f, ok := r.store.fixtures[id]
	if !ok {
		return nil, repositories.ErrFixtureNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFixtureRepo) ListByGroup(_ context.Context, _ repositories.SQLExecutor, groupID int) ([]*models.RoundRobinFixture, error) {
	var out []*models.RoundRobinFixture
	for _, f := range r.store.fixtures {
		if f.GroupID == groupID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeFixtureRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, fixtureID int, score1, score2 int, winnerID *int, status models.FixtureStatus) error {
	f, ok := r.store.fixtures[fixtureID]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	f.Score1 = &score1
	f.Score2 = &score2
	f.WinnerID = winnerID
	f.Status = status
	return nil
}

func (r *fakeFixtureRepo) CountPendingByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, f := range r.store.fixtures {
		g, ok := r.store.groups[f.GroupID]
		if ok && g.TournamentID == tournamentID && f.Status != models.FixtureCompleted {
			count++
		}
	}
	return count, nil
}

func (r *fakeFixtureRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for id, f := range r.store.fixtures {
		g, ok := r.store.groups[f.GroupID]
		if ok && g.TournamentID == tournamentID {
			delete(r.store.fixtures, id)
		}
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHub() *brackets.Hub {
	return brackets.NewHub(testLogger())
}

// testEnv wires every service against one shared in-memory store.
type testEnv struct {
	store        *memStore
	bracket      BracketService
	match        MatchService
	roundRobin   RoundRobinService
	playoff      PlayoffService
	battleRoyale BattleRoyaleService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	txr := fakeTransactor{}
	locker := NewTournamentLocker()
	hub := testHub()
	logger := testLogger()

	tournamentRepo := &fakeTournamentRepo{store: store}
	participantRepo := &fakeParticipantRepo{store: store}
	matchRepo := &fakeMatchRepo{store: store}
	matchParticipantRepo := &fakeMatchParticipantRepo{store: store}
	groupRepo := &fakeGroupRepo{store: store}
	standingRepo := &fakeStandingRepo{store: store}
	fixtureRepo := &fakeFixtureRepo{store: store}

	return &testEnv{
		store: store,
		bracket: NewBracketService(
			txr, tournamentRepo, participantRepo, matchRepo, matchParticipantRepo,
			locker, hub, logger,
		),
		match: NewMatchService(
			txr, tournamentRepo, matchRepo, matchParticipantRepo,
			locker, hub, logger,
		),
		roundRobin: NewRoundRobinService(
			txr, tournamentRepo, participantRepo, groupRepo, standingRepo, fixtureRepo,
			locker, hub, logger,
		),
		playoff: NewPlayoffService(
			txr, tournamentRepo, participantRepo, groupRepo, standingRepo, fixtureRepo,
			matchRepo, matchParticipantRepo, locker, hub, logger,
		),
		battleRoyale: NewBattleRoyaleService(
			txr, tournamentRepo, participantRepo, groupRepo, standingRepo,
			locker, hub, logger,
		),
	}
}
