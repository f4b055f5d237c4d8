package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/bracketlab/tournament-engine/brackets"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
)

// GroupStageSummary describes what CreateGroups produced.
type GroupStageSummary struct {
	TournamentID int   `json:"tournament_id"`
	GroupIDs     []int `json:"group_ids"`
	Fixtures     int   `json:"fixtures"`
	Rounds       int   `json:"rounds"`
}

// GroupStandings is one group's ranked table.
type GroupStandings struct {
	GroupID   int                `json:"group_id"`
	GroupName string             `json:"group_name"`
	Rows      []*models.Standing `json:"rows"`
}

// FixtureOutcome reports the effect of a recorded fixture result.
type FixtureOutcome struct {
	FixtureID         int  `json:"fixture_id"`
	GroupID           int  `json:"group_id"`
	WinnerID          *int `json:"winner_id,omitempty"`
	Draw              bool `json:"draw"`
	GroupStageDone    bool `json:"group_stage_done"`
	PendingFixtures   int  `json:"pending_fixtures"`
	StandingsRewritten int `json:"standings_rewritten"`
}

type RoundRobinService interface {
	// CreateGroups splits accepted entries into numGroups pools using snake
	// order, seeds zeroed standings and schedules every pool with the
	// circle method.
	CreateGroups(ctx context.Context, tournamentID, numGroups int) (*GroupStageSummary, error)

	// RecordFixtureResult stores a fixture score, allowing draws, and
	// recomputes the group's table in the same transaction.
	RecordFixtureResult(ctx context.Context, fixtureID, score1, score2 int) (*FixtureOutcome, error)

	GetStandings(ctx context.Context, tournamentID int) ([]*GroupStandings, error)
}

type roundRobinService struct {
	txr             Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	groupRepo       repositories.GroupRepository
	standingRepo    repositories.StandingRepository
	fixtureRepo     repositories.FixtureRepository
	locker          *TournamentLocker
	hub             *brackets.Hub
	logger          *slog.Logger
}

func NewRoundRobinService(
	txr Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	groupRepo repositories.GroupRepository,
	standingRepo repositories.StandingRepository,
	fixtureRepo repositories.FixtureRepository,
	locker *TournamentLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) RoundRobinService {
	return &roundRobinService{
		txr:             txr,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		groupRepo:       groupRepo,
		standingRepo:    standingRepo,
		fixtureRepo:     fixtureRepo,
		locker:          locker,
		hub:             hub,
		logger:          logger,
	}
}

func groupName(index int) string {
	return fmt.Sprintf("Group %c", 'A'+rune(index))
}

func (s *roundRobinService) CreateGroups(ctx context.Context, tournamentID, numGroups int) (*GroupStageSummary, error) {
	if numGroups < 1 {
		return nil, ErrInvalidGroupCount
	}

	unlock := s.locker.lock(tournamentID)
	defer unlock()

	var summary *GroupStageSummary
	err := s.txr.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.BracketType != models.BracketRoundRobin {
			return ErrUnsupportedBracket
		}
		if tournament.Status != models.StatusRegistrationOpen && tournament.Status != models.StatusOngoing {
			return ErrTournamentNotReady
		}

		existing, err := s.groupRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrGroupsExist
		}

		participants, err := s.participantRepo.ListAcceptedByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(participants) < 2*numGroups {
			return ErrNotEnoughParticipants
		}

		seeded := make([]int, len(participants))
		for i, p := range participants {
			seeded[i] = p.ID
		}
		pools := brackets.AssignGroups(seeded, numGroups)

		summary = &GroupStageSummary{TournamentID: tournamentID}
		for gi, pool := range pools {
			group := &models.Group{
				TournamentID: tournamentID,
				Name:         groupName(gi),
				IsPrimary:    gi == 0,
			}
			if err := s.groupRepo.Create(ctx, exec, group); err != nil {
				return err
			}
			summary.GroupIDs = append(summary.GroupIDs, group.ID)

			standings := make([]*models.Standing, 0, len(pool))
			for _, pid := range pool {
				if err := s.groupRepo.AddMember(ctx, exec, group.ID, pid); err != nil {
					return err
				}
				standings = append(standings, &models.Standing{
					TournamentID:  tournamentID,
					GroupID:       group.ID,
					ParticipantID: pid,
				})
			}
			if err := s.standingRepo.BatchCreate(ctx, exec, standings); err != nil {
				return err
			}

			pairings := brackets.ScheduleRoundRobin(pool)
			fixtures := make([]*models.RoundRobinFixture, 0, len(pairings))
			for _, pr := range pairings {
				fixtures = append(fixtures, &models.RoundRobinFixture{
					GroupID:        group.ID,
					RoundNumber:    pr.Round,
					Participant1ID: pr.P1,
					Participant2ID: pr.P2,
					Status:         models.FixtureScheduled,
				})
				if pr.Round > summary.Rounds {
					summary.Rounds = pr.Round
				}
			}
			if err := s.fixtureRepo.BatchCreate(ctx, exec, fixtures); err != nil {
				return err
			}
			summary.Fixtures += len(fixtures)
		}

		if tournament.Status == models.StatusRegistrationOpen {
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusOngoing); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.Info("group stage created",
		slog.Int("tournament_id", tournamentID),
		slog.Int("groups", len(summary.GroupIDs)),
		slog.Int("fixtures", summary.Fixtures))

	s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), brackets.Message{
		Type:    brackets.EventBracketGenerated,
		Payload: summary,
	})
	return summary, nil
}

func (s *roundRobinService) RecordFixtureResult(ctx context.Context, fixtureID, score1, score2 int) (*FixtureOutcome, error) {
	if score1 < 0 || score2 < 0 {
		return nil, ErrNegativeScore
	}

	peek, err := s.fixtureRepo.GetByID(ctx, nil, fixtureID)
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, ErrFixtureNotFound
		}
		return nil, classify(err)
	}
	group, err := s.groupRepo.GetByID(ctx, nil, peek.GroupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, classify(err)
	}
	tournamentID := group.TournamentID

	unlock := s.locker.lock(tournamentID)
	defer unlock()

	var outcome *FixtureOutcome
	err = s.txr.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		fixture, err := s.fixtureRepo.GetByID(ctx, exec, fixtureID)
		if err != nil {
			if errors.Is(err, repositories.ErrFixtureNotFound) {
				return ErrFixtureNotFound
			}
			return err
		}
		if fixture.Status == models.FixtureCompleted {
			return ErrFixtureAlreadyCompleted
		}

		var winnerID *int
		switch {
		case score1 > score2:
			winnerID = &fixture.Participant1ID
		case score2 > score1:
			winnerID = &fixture.Participant2ID
		}
		if err := s.fixtureRepo.UpdateResult(ctx, exec, fixtureID, score1, score2, winnerID, models.FixtureCompleted); err != nil {
			return err
		}

		row1, err := s.standingRepo.GetByGroupAndParticipant(ctx, exec, fixture.GroupID, fixture.Participant1ID)
		if err != nil {
			return err
		}
		row2, err := s.standingRepo.GetByGroupAndParticipant(ctx, exec, fixture.GroupID, fixture.Participant2ID)
		if err != nil {
			return err
		}
		brackets.ApplyFixtureResult(row1, row2, score1, score2)

		// Re-rank the whole group so stored positions stay consistent
		// with the ordering readers see.
		rows, err := s.standingRepo.ListByGroup(ctx, exec, fixture.GroupID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.ParticipantID == row1.ParticipantID {
				*row = *row1
			}
			if row.ParticipantID == row2.ParticipantID {
				*row = *row2
			}
		}
		brackets.SortStandings(rows)
		for _, row := range rows {
			if err := s.standingRepo.Update(ctx, exec, row); err != nil {
				return err
			}
		}

		pending, err := s.fixtureRepo.CountPendingByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		outcome = &FixtureOutcome{
			FixtureID:         fixtureID,
			GroupID:           fixture.GroupID,
			WinnerID:          winnerID,
			Draw:              winnerID == nil,
			GroupStageDone:     pending == 0,
			PendingFixtures:    pending,
			StandingsRewritten: len(rows),
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), brackets.Message{
		Type:    brackets.EventStandingsUpdated,
		Payload: outcome,
	})
	return outcome, nil
}

func (s *roundRobinService) GetStandings(ctx context.Context, tournamentID int) ([]*GroupStandings, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, classify(err)
	}
	groups, err := s.groupRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, classify(err)
	}
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}

	out := make([]*GroupStandings, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i, grp := range groups {
		i, grp := i, grp
		g.Go(func() error {
			rows, err := s.standingRepo.ListByGroup(gctx, nil, grp.ID)
			if err != nil {
				return err
			}
			out[i] = &GroupStandings{GroupID: grp.ID, GroupName: grp.Name, Rows: rows}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}
