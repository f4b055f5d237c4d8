package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/bracketlab/tournament-engine/brackets"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
)

// BattleRoyaleResult reports the ranked outcome of one scored lobby.
type BattleRoyaleResult struct {
	TournamentID int                          `json:"tournament_id"`
	GroupID      int                          `json:"group_id"`
	Scored       []brackets.BattleRoyaleScored `json:"scored"`
}

type BattleRoyaleService interface {
	// ScoreRound applies one lobby's placements and kills to the
	// tournament's cumulative table. The first call creates the primary
	// group and zeroed standings for every accepted entry.
	ScoreRound(ctx context.Context, tournamentID int, entries []brackets.BattleRoyaleEntry) (*BattleRoyaleResult, error)
}

type battleRoyaleService struct {
	txr             Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	groupRepo       repositories.GroupRepository
	standingRepo    repositories.StandingRepository
	scoring         brackets.BattleRoyaleScoring
	locker          *TournamentLocker
	hub             *brackets.Hub
	logger          *slog.Logger
}

func NewBattleRoyaleService(
	txr Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	groupRepo repositories.GroupRepository,
	standingRepo repositories.StandingRepository,
	locker *TournamentLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) BattleRoyaleService {
	return &battleRoyaleService{
		txr:             txr,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		groupRepo:       groupRepo,
		standingRepo:    standingRepo,
		scoring:         brackets.NewBattleRoyaleScoring(),
		locker:          locker,
		hub:             hub,
		logger:          logger,
	}
}

func (s *battleRoyaleService) ScoreRound(ctx context.Context, tournamentID int, entries []brackets.BattleRoyaleEntry) (*BattleRoyaleResult, error) {
	if len(entries) == 0 {
		return nil, ErrValidation
	}

	unlock := s.locker.lock(tournamentID)
	defer unlock()

	var result *BattleRoyaleResult
	err := s.txr.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.BracketType != models.BracketBattleRoyale {
			return ErrUnsupportedBracket
		}
		if tournament.Status != models.StatusRegistrationOpen && tournament.Status != models.StatusOngoing {
			return ErrTournamentNotReady
		}

		participants, err := s.participantRepo.ListAcceptedByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		known := make(map[int]bool, len(participants))
		for _, p := range participants {
			known[p.ID] = true
		}

		seen := make(map[int]bool, len(entries))
		placements := make(map[int]bool, len(entries))
		for _, e := range entries {
			if !known[e.ParticipantID] {
				return ErrUnknownParticipant
			}
			if e.Placement < 1 || e.Placement > len(entries) || e.Kills < 0 {
				return ErrInvalidPlacement
			}
			if seen[e.ParticipantID] || placements[e.Placement] {
				return ErrInvalidPlacement
			}
			seen[e.ParticipantID] = true
			placements[e.Placement] = true
		}

		group, err := s.ensurePrimaryGroup(ctx, exec, tournamentID, participants)
		if err != nil {
			return err
		}

		scored := s.scoring.Score(entries)
		for _, sc := range scored {
			row, err := s.standingRepo.GetByGroupAndParticipant(ctx, exec, group.ID, sc.ParticipantID)
			if err != nil {
				return err
			}
			row.MatchesPlayed++
			row.Points += sc.Points
			row.ScoreFor += sc.Kills
			if sc.Placement == 1 {
				row.Wins++
			} else {
				row.Losses++
			}
			if err := s.standingRepo.Update(ctx, exec, row); err != nil {
				return err
			}
		}

		rows, err := s.standingRepo.ListByGroup(ctx, exec, group.ID)
		if err != nil {
			return err
		}
		brackets.SortStandings(rows)
		for _, row := range rows {
			if err := s.standingRepo.Update(ctx, exec, row); err != nil {
				return err
			}
		}

		if tournament.Status == models.StatusRegistrationOpen {
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusOngoing); err != nil {
				return err
			}
		}

		result = &BattleRoyaleResult{
			TournamentID: tournamentID,
			GroupID:      group.ID,
			Scored:       scored,
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.Info("battle royale round scored",
		slog.Int("tournament_id", tournamentID),
		slog.Int("entries", len(result.Scored)))

	s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), brackets.Message{
		Type:    brackets.EventStandingsUpdated,
		Payload: result,
	})
	return result, nil
}

// ensurePrimaryGroup returns the tournament's primary group, creating it
// along with zeroed standings on first use.
func (s *battleRoyaleService) ensurePrimaryGroup(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, participants []*models.Participant) (*models.Group, error) {
	groups, err := s.groupRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.IsPrimary {
			return g, nil
		}
	}

	group := &models.Group{
		TournamentID: tournamentID,
		Name:         "Lobby",
		IsPrimary:    true,
	}
	if err := s.groupRepo.Create(ctx, exec, group); err != nil {
		return nil, err
	}
	standings := make([]*models.Standing, 0, len(participants))
	for _, p := range participants {
		if err := s.groupRepo.AddMember(ctx, exec, group.ID, p.ID); err != nil {
			return nil, err
		}
		standings = append(standings, &models.Standing{
			TournamentID:  tournamentID,
			GroupID:       group.ID,
			ParticipantID: p.ID,
		})
	}
	if err := s.standingRepo.BatchCreate(ctx, exec, standings); err != nil {
		return nil, err
	}
	return group, nil
}
