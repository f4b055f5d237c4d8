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
)

// PlayoffSummary describes the knockout stage built from a finished group
// stage.
type PlayoffSummary struct {
	TournamentID int   `json:"tournament_id"`
	Qualifiers   []int `json:"qualifiers"`
	BracketSize  int   `json:"bracket_size"`
	Matches      int   `json:"matches"`
	ByesResolved int   `json:"byes_resolved"`
}

type PlayoffService interface {
	// CreatePlayoffs promotes the top qualifiersPerGroup entries of every
	// group into a single-elimination bracket. Group winners are re-seeded
	// by table quality; the rest are slotted so first-round rematches of
	// group opponents are avoided when possible.
	CreatePlayoffs(ctx context.Context, tournamentID, qualifiersPerGroup int) (*PlayoffSummary, error)
}

type playoffService struct {
	txr             Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	groupRepo       repositories.GroupRepository
	standingRepo    repositories.StandingRepository
	fixtureRepo     repositories.FixtureRepository
	prog            progression
	locker          *TournamentLocker
	hub             *brackets.Hub
	logger          *slog.Logger
}

func NewPlayoffService(
	txr Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	groupRepo repositories.GroupRepository,
	standingRepo repositories.StandingRepository,
	fixtureRepo repositories.FixtureRepository,
	matchRepo repositories.MatchRepository,
	matchParticipantRepo repositories.MatchParticipantRepository,
	locker *TournamentLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) PlayoffService {
	return &playoffService{
		txr:             txr,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		groupRepo:       groupRepo,
		standingRepo:    standingRepo,
		fixtureRepo:     fixtureRepo,
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

// qualifier carries a standing row together with its source group so the
// seeding pass can keep group opponents apart.
type qualifier struct {
	row     *models.Standing
	groupID int
	rank    int
}

// betterTable orders qualifiers by the same quality metrics the group
// tables use.
func betterTable(a, b *models.Standing) bool {
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
}

func (s *playoffService) CreatePlayoffs(ctx context.Context, tournamentID, qualifiersPerGroup int) (*PlayoffSummary, error) {
	if qualifiersPerGroup < 1 {
		return nil, ErrInvalidQualifierCount
	}

	unlock := s.locker.lock(tournamentID)
	defer unlock()

	var summary *PlayoffSummary
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

		groups, err := s.groupRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return ErrNoGroups
		}

		pending, err := s.fixtureRepo.CountPendingByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return ErrGroupStageIncomplete
		}

		existing, err := s.prog.matchRepo.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrBracketExists
		}

		var winners, rest []qualifier
		for _, grp := range groups {
			rows, err := s.standingRepo.ListByGroup(ctx, exec, grp.ID)
			if err != nil {
				return err
			}
			if len(rows) < qualifiersPerGroup {
				return ErrInvalidQualifierCount
			}
			for rank := 0; rank < qualifiersPerGroup; rank++ {
				q := qualifier{row: rows[rank], groupID: grp.ID, rank: rank}
				if rank == 0 {
					winners = append(winners, q)
				} else {
					rest = append(rest, q)
				}
			}
		}

		sort.Slice(winners, func(i, j int) bool {
			return betterTable(winners[i].row, winners[j].row)
		})
		sort.Slice(rest, func(i, j int) bool {
			if rest[i].rank != rest[j].rank {
				return rest[i].rank < rest[j].rank
			}
			return betterTable(rest[i].row, rest[j].row)
		})

		total := len(winners) + len(rest)
		if total < 2 {
			return ErrNotEnoughParticipants
		}
		size := brackets.NextPowerOfTwo(total)

		slots := make([]*int, size)
		slotGroup := make(map[int]int, total)
		for i := range winners {
			pos := brackets.SeedPosition(i, size)
			pid := winners[i].row.ParticipantID
			slots[pos] = &pid
			slotGroup[pos] = winners[i].groupID
		}

		// Remaining qualifiers walk the open slots in seed order and avoid
		// a round-one slot whose neighbor came from the same group.
		order := make([]int, size)
		for seed := 0; seed < size; seed++ {
			order[seed] = brackets.SeedPosition(seed, size)
		}
		for _, q := range rest {
			chosen := -1
			for _, pos := range order {
				if slots[pos] != nil {
					continue
				}
				opponent := pos ^ 1
				if gid, taken := slotGroup[opponent]; taken && gid == q.groupID {
					continue
				}
				chosen = pos
				break
			}
			if chosen == -1 {
				for _, pos := range order {
					if slots[pos] == nil {
						chosen = pos
						break
					}
				}
			}
			pid := q.row.ParticipantID
			slots[chosen] = &pid
			slotGroup[chosen] = q.groupID
		}

		participants, err := s.participantRepo.ListAcceptedByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		byID := make(map[int]*models.Participant, len(participants))
		for _, p := range participants {
			byID[p.ID] = p
		}

		plan, err := brackets.NewSingleEliminationGenerator().Generate(ctx, brackets.GenerateParams{
			Tournament: tournament,
			Slots:      slots,
		})
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

		qualifiers := make([]int, 0, total)
		for _, pos := range order {
			if slots[pos] != nil {
				qualifiers = append(qualifiers, *slots[pos])
			}
		}
		summary = &PlayoffSummary{
			TournamentID: tournamentID,
			Qualifiers:   qualifiers,
			BracketSize:  size,
			Matches:      len(plan.Matches),
			ByesResolved: resolved,
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.Info("playoff bracket created",
		slog.Int("tournament_id", tournamentID),
		slog.Int("qualifiers", len(summary.Qualifiers)),
		slog.Int("bracket_size", summary.BracketSize))

	s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), brackets.Message{
		Type:    brackets.EventBracketGenerated,
		Payload: summary,
	})
	return summary, nil
}
