package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"

	"github.com/bracketlab/tournament-engine/brackets"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
	"golang.org/x/sync/errgroup"
)

type BracketSummary struct {
	TournamentID int                `json:"tournament_id"`
	BracketType  models.BracketType `json:"bracket_type"`
	BracketSize  int                `json:"bracket_size"`
	Rounds       int                `json:"rounds"`
	MatchCount   int                `json:"match_count"`
	ByeCount     int                `json:"bye_count"`
	AutoResolved int                `json:"auto_resolved"`
}

type RoundView struct {
	Round   int             `json:"round"`
	Matches []*models.Match `json:"matches"`
}

type SectionView struct {
	Section models.BracketSection `json:"section"`
	Rounds  []RoundView           `json:"rounds"`
}

type BracketView struct {
	TournamentID int                `json:"tournament_id"`
	BracketType  models.BracketType `json:"bracket_type"`
	Status       models.TournamentStatus `json:"status"`
	Sections     []SectionView           `json:"sections"`
}

type BracketService interface {
	// GenerateBracket builds and persists the elimination bracket for a
	// tournament from its accepted participant list. When matches already
	// exist the call is rejected unless force is set, in which case the
	// old bracket is replaced atomically.
	GenerateBracket(ctx context.Context, tournamentID int, force bool) (*BracketSummary, error)
	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)
}

type bracketService struct {
	txr             Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	prog            progression
	locker          *TournamentLocker
	hub             *brackets.Hub
	logger          *slog.Logger
}

func NewBracketService(
	txr Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	matchParticipantRepo repositories.MatchParticipantRepository,
	locker *TournamentLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		txr:             txr,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
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

func generatorFor(bracketType models.BracketType) (brackets.Generator, error) {
	switch bracketType {
	case models.BracketSingleElimination:
		return brackets.NewSingleEliminationGenerator(), nil
	case models.BracketDoubleElimination:
		return brackets.NewDoubleEliminationGenerator(), nil
	default:
		// Round robin and battle royale tournaments are driven through
		// groups, not a match graph.
		return nil, ErrUnsupportedBracket
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int, force bool) (*BracketSummary, error) {
	unlock := s.locker.lock(tournamentID)
	defer unlock()

	var summary *BracketSummary
	err := s.txr.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if tournament.Status != models.StatusRegistrationOpen && tournament.Status != models.StatusOngoing {
			return ErrTournamentNotReady
		}

		generator, err := generatorFor(tournament.BracketType)
		if err != nil {
			return err
		}

		existing, err := s.prog.matchRepo.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if existing > 0 {
			if !force {
				return ErrBracketExists
			}
			// Atomic replace: the old graph disappears and the new one
			// appears in the same transaction.
			if err := s.prog.matchParticipantRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
				return err
			}
			if err := s.prog.matchRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
				return err
			}
		}

		accepted, err := s.participantRepo.ListAcceptedByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(accepted) < 2 {
			return ErrNotEnoughParticipants
		}
		if tournament.MaxParticipants > 0 && len(accepted) > tournament.MaxParticipants {
			return ErrTooManyParticipants
		}

		ids := make([]int, len(accepted))
		byID := make(map[int]*models.Participant, len(accepted))
		for i, p := range accepted {
			ids[i] = p.ID
			byID[p.ID] = p
		}
		slots := brackets.SeededSlots(ids)

		plan, err := generator.Generate(ctx, brackets.GenerateParams{Tournament: tournament, Slots: slots})
		if err != nil {
			return err
		}
		if err := s.prog.materializePlan(ctx, exec, tournament, plan, byID); err != nil {
			return err
		}

		st, err := s.prog.loadState(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		resolved, err := s.prog.cascadeByes(ctx, exec, st)
		if err != nil {
			return err
		}

		if tournament.Status != models.StatusOngoing {
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusOngoing); err != nil {
				return err
			}
		}

		summary = &BracketSummary{
			TournamentID: tournamentID,
			BracketType:  tournament.BracketType,
			BracketSize:  plan.BracketSize,
			Rounds:       plan.Rounds,
			MatchCount:   len(plan.Matches),
			ByeCount:     plan.BracketSize - len(accepted),
			AutoResolved: resolved,
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("matches", summary.MatchCount),
		slog.Int("byes", summary.ByeCount))
	s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), brackets.Message{
		Type:    brackets.EventBracketGenerated,
		Payload: summary,
	})
	return summary, nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	var (
		tournament *models.Tournament
		matches    []*models.Match
		entries    []*models.MatchParticipant
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, nil, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		m, err := s.prog.matchRepo.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return err
		}
		matches = m
		return nil
	})
	g.Go(func() error {
		e, err := s.prog.matchParticipantRepo.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return err
		}
		entries = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, classify(err)
	}

	byMatch := make(map[int][]models.MatchParticipant)
	for _, mp := range entries {
		byMatch[mp.MatchID] = append(byMatch[mp.MatchID], *mp)
	}

	sections := make(map[models.BracketSection]map[int][]*models.Match)
	for _, m := range matches {
		m.Participants = byMatch[m.ID]
		if sections[m.Section] == nil {
			sections[m.Section] = make(map[int][]*models.Match)
		}
		sections[m.Section][m.Round] = append(sections[m.Section][m.Round], m)
	}

	view := &BracketView{
		TournamentID: tournamentID,
		BracketType:  tournament.BracketType,
		Status:       tournament.Status,
	}
	for _, section := range []models.BracketSection{models.SectionWinners, models.SectionLosers, models.SectionGrandFinals} {
		rounds, ok := sections[section]
		if !ok {
			continue
		}
		sv := SectionView{Section: section}
		roundNumbers := make([]int, 0, len(rounds))
		for r := range rounds {
			roundNumbers = append(roundNumbers, r)
		}
		sort.Ints(roundNumbers)
		for _, r := range roundNumbers {
			ms := rounds[r]
			sort.Slice(ms, func(i, j int) bool { return ms[i].Position < ms[j].Position })
			sv.Rounds = append(sv.Rounds, RoundView{Round: r, Matches: ms})
		}
		view.Sections = append(view.Sections, sv)
	}
	return view, nil
}
