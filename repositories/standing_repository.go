package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bracketlab/tournament-engine/models"
)

var ErrStandingNotFound = errors.New("standing not found")

type StandingRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.Standing) error
	GetByGroupAndParticipant(ctx context.Context, exec SQLExecutor, groupID, participantID int) (*models.Standing, error)
	ListByGroup(ctx context.Context, exec SQLExecutor, groupID int) ([]*models.Standing, error)
	Update(ctx context.Context, exec SQLExecutor, standing *models.Standing) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) BatchCreate(ctx context.Context, exec SQLExecutor, standings []*models.Standing) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO standings
			(tournament_id, group_id, participant_id, matches_played, wins, draws, losses,
			 score_for, score_against, points, position, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	for _, s := range standings {
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = time.Now()
		}
		err := executor.QueryRowContext(ctx, query,
			s.TournamentID, s.GroupID, s.ParticipantID, s.MatchesPlayed,
			s.Wins, s.Draws, s.Losses, s.ScoreFor, s.ScoreAgainst,
			s.Points, s.Position, s.UpdatedAt,
		).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("failed to create standing for participant %d: %w", s.ParticipantID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) scanStanding(row interface{ Scan(...interface{}) error }) (*models.Standing, error) {
	s := &models.Standing{}
	err := row.Scan(
		&s.ID, &s.TournamentID, &s.GroupID, &s.ParticipantID, &s.MatchesPlayed,
		&s.Wins, &s.Draws, &s.Losses, &s.ScoreFor, &s.ScoreAgainst,
		&s.Points, &s.Position, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return s, nil
}

const standingColumns = `
	id, tournament_id, group_id, participant_id, matches_played, wins, draws, losses,
	score_for, score_against, points, position, updated_at
`

func (r *postgresStandingRepository) GetByGroupAndParticipant(ctx context.Context, exec SQLExecutor, groupID, participantID int) (*models.Standing, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + standingColumns + `FROM standings WHERE group_id = $1 AND participant_id = $2`
	return r.scanStanding(executor.QueryRowContext(ctx, query, groupID, participantID))
}

func (r *postgresStandingRepository) ListByGroup(ctx context.Context, exec SQLExecutor, groupID int) ([]*models.Standing, error) {
	executor := r.getExecutor(exec)
	// Matches the computed ranking order so readers see a consistent table;
	// position is authoritative once the calculator has run.
	query := `SELECT` + standingColumns + `FROM standings
		WHERE group_id = $1
		ORDER BY points DESC, (score_for - score_against) DESC, score_for DESC, participant_id ASC`

	rows, err := executor.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for group %d: %w", groupID, err)
	}
	defer rows.Close()

	standings := make([]*models.Standing, 0)
	for rows.Next() {
		s, errScan := r.scanStanding(rows)
		if errScan != nil {
			return nil, errScan
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

func (r *postgresStandingRepository) Update(ctx context.Context, exec SQLExecutor, standing *models.Standing) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE standings SET
			matches_played = $1, wins = $2, draws = $3, losses = $4,
			score_for = $5, score_against = $6, points = $7, position = $8,
			updated_at = NOW()
		WHERE id = $9`
	result, err := executor.ExecContext(ctx, query,
		standing.MatchesPlayed, standing.Wins, standing.Draws, standing.Losses,
		standing.ScoreFor, standing.ScoreAgainst, standing.Points, standing.Position,
		standing.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update standing %d: %w", standing.ID, err)
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}

func (r *postgresStandingRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM standings WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete standings for tournament %d: %w", tournamentID, err)
	}
	return nil
}
