package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bracketlab/tournament-engine/brackets"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
)

// MatchOutcome reports everything a single result submission caused,
// including the knock-on effects of the bye cascade.
type MatchOutcome struct {
	MatchID               int  `json:"match_id"`
	WinnerParticipantID   int  `json:"winner_participant_id"`
	LoserParticipantID    int  `json:"loser_participant_id"`
	AdvancedToMatchID     *int `json:"advanced_to_match_id,omitempty"`
	LoserSentToMatchID    *int `json:"loser_sent_to_match_id,omitempty"`
	ByesResolved          int  `json:"byes_resolved"`
	TournamentCompleted   bool `json:"tournament_completed"`
	ChampionParticipantID *int `json:"champion_participant_id,omitempty"`
}

type MatchService interface {
	// SubmitResult records a score for a scheduled two-participant match,
	// determines the winner, advances both participants along their match
	// links and cascades any byes the advancement uncovered. The whole
	// effect is one transaction under the tournament's write lock.
	SubmitResult(ctx context.Context, matchID, score1, score2 int) (*MatchOutcome, error)

	// ResolveByes re-runs the bye cascade for a tournament. Idempotent: a
	// second call with no new byes reports zero processed matches.
	ResolveByes(ctx context.Context, tournamentID int) (int, error)
}

type matchService struct {
	txr            Transactor
	tournamentRepo repositories.TournamentRepository
	prog           progression
	locker         *TournamentLocker
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewMatchService(
	txr Transactor,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	matchParticipantRepo repositories.MatchParticipantRepository,
	locker *TournamentLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txr:            txr,
		tournamentRepo: tournamentRepo,
		prog: progression{
			tournamentRepo:       tournamentRepo,
			matchRepo:            matchRepo,
			matchParticipantRepo: matchParticipantRepo,
		},
		locker: locker,
		hub:    hub,
		logger: logger,
	}
}

func (s *matchService) SubmitResult(ctx context.Context, matchID, score1, score2 int) (*MatchOutcome, error) {
	if score1 < 0 || score2 < 0 {
		return nil, ErrNegativeScore
	}

	// Resolve the tournament first so the per-tournament lock is taken
	// before any state is read for the decision.
	peek, err := s.prog.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, classify(err)
	}
	tournamentID := peek.TournamentID

	unlock := s.locker.lock(tournamentID)
	defer unlock()

	var outcome *MatchOutcome
	err = s.txr.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}

		st, err := s.prog.loadState(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		match, ok := st.byID[matchID]
		if !ok {
			return ErrMatchNotFound
		}
		if match.State == models.MatchStateScoreRecorded {
			return ErrMatchAlreadyScored
		}

		// Slot order follows participant ID, the same order the read
		// model exposes, so score1 and score2 are unambiguous.
		slots := st.parts[matchID]
		if len(slots) != 2 {
			return ErrWrongParticipantCount
		}
		if score1 == score2 {
			return ErrDrawNotAllowed
		}

		winner, loser := slots[0], slots[1]
		winnerScore, loserScore := score1, score2
		if score2 > score1 {
			winner, loser = slots[1], slots[0]
			winnerScore, loserScore = score2, score1
		}

		s1, s2 := score1, score2
		if err := s.prog.matchRepo.UpdateResult(ctx, exec, matchID, &s1, &s2, &winner.ParticipantID, models.MatchStateScoreRecorded); err != nil {
			return err
		}
		match.State = models.MatchStateScoreRecorded
		match.WinnerParticipantID = &winner.ParticipantID

		winnerText := fmt.Sprintf("%d-%d", winnerScore, loserScore)
		loserText := fmt.Sprintf("%d-%d", loserScore, winnerScore)
		if err := s.prog.matchParticipantRepo.UpdateOutcome(ctx, exec, matchID, winner.ParticipantID, true, &winnerText, models.MatchParticipantPlayed); err != nil {
			return err
		}
		if err := s.prog.matchParticipantRepo.UpdateOutcome(ctx, exec, matchID, loser.ParticipantID, false, &loserText, models.MatchParticipantPlayed); err != nil {
			return err
		}

		outcome = &MatchOutcome{
			MatchID:             matchID,
			WinnerParticipantID: winner.ParticipantID,
			LoserParticipantID:  loser.ParticipantID,
		}

		if match.NextMatchID != nil {
			if _, err := s.prog.advanceTo(ctx, exec, st, *match.NextMatchID, winner); err != nil {
				return err
			}
			outcome.AdvancedToMatchID = match.NextMatchID
		}
		if match.LoserGoesToMatchID != nil {
			if _, err := s.prog.advanceTo(ctx, exec, st, *match.LoserGoesToMatchID, loser); err != nil {
				return err
			}
			outcome.LoserSentToMatchID = match.LoserGoesToMatchID
		}

		resolved, err := s.prog.cascadeByes(ctx, exec, st)
		if err != nil {
			return err
		}
		outcome.ByesResolved = resolved

		completed, champion, err := s.prog.completeIfFinished(ctx, exec, st, tournament)
		if err != nil {
			return err
		}
		outcome.TournamentCompleted = completed
		outcome.ChampionParticipantID = champion
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.Info("match result recorded",
		slog.Int("tournament_id", tournamentID),
		slog.Int("match_id", matchID),
		slog.Int("winner_participant_id", outcome.WinnerParticipantID))

	room := strconv.Itoa(tournamentID)
	s.hub.BroadcastToRoom(room, brackets.Message{Type: brackets.EventMatchUpdated, Payload: outcome})
	if outcome.TournamentCompleted {
		s.hub.BroadcastToRoom(room, brackets.Message{Type: brackets.EventTournamentCompleted, Payload: outcome})
	}
	return outcome, nil
}

func (s *matchService) ResolveByes(ctx context.Context, tournamentID int) (int, error) {
	unlock := s.locker.lock(tournamentID)
	defer unlock()

	processed := 0
	err := s.txr.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}

		st, err := s.prog.loadState(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		processed, err = s.prog.cascadeByes(ctx, exec, st)
		if err != nil {
			return err
		}
		_, _, err = s.prog.completeIfFinished(ctx, exec, st, tournament)
		return err
	})
	if err != nil {
		return 0, classify(err)
	}

	if processed > 0 {
		s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), brackets.Message{
			Type:    brackets.EventMatchUpdated,
			Payload: map[string]int{"byes_resolved": processed},
		})
	}
	return processed, nil
}
