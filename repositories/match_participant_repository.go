package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bracketlab/tournament-engine/models"
)

var ErrMatchParticipantNotFound = errors.New("match participant not found")

type MatchParticipantRepository interface {
	// InsertIfAbsent adds a participant slot to a match unless the pair
	// already exists. Returns true when a row was actually inserted, which
	// keeps retried advancement calls idempotent.
	InsertIfAbsent(ctx context.Context, exec SQLExecutor, mp *models.MatchParticipant) (bool, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchParticipant, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.MatchParticipant, error)
	UpdateOutcome(ctx context.Context, exec SQLExecutor, matchID, participantID int, isWinner bool, resultText *string, status models.MatchParticipantStatus) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchParticipantRepository struct {
	db *sql.DB
}

func NewPostgresMatchParticipantRepository(db *sql.DB) MatchParticipantRepository {
	return &postgresMatchParticipantRepository{db: db}
}

func (r *postgresMatchParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchParticipantRepository) InsertIfAbsent(ctx context.Context, exec SQLExecutor, mp *models.MatchParticipant) (bool, error) {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO match_participants (match_id, participant_id, name, picture_ref, status, is_winner, result_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (match_id, participant_id) DO NOTHING`

	result, err := executor.ExecContext(ctx, query,
		mp.MatchID,
		mp.ParticipantID,
		mp.Name,
		mp.PictureRef,
		mp.Status,
		mp.IsWinner,
		mp.ResultText,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert participant %d into match %d: %w", mp.ParticipantID, mp.MatchID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *postgresMatchParticipantRepository) scanRow(row interface{ Scan(...interface{}) error }) (*models.MatchParticipant, error) {
	mp := &models.MatchParticipant{}
	err := row.Scan(
		&mp.MatchID,
		&mp.ParticipantID,
		&mp.Name,
		&mp.PictureRef,
		&mp.Status,
		&mp.IsWinner,
		&mp.ResultText,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchParticipantNotFound
		}
		return nil, err
	}
	return mp, nil
}

func (r *postgresMatchParticipantRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchParticipant, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT match_id, participant_id, name, picture_ref, status, is_winner, result_text
		FROM match_participants
		WHERE match_id = $1
		ORDER BY participant_id`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for match %d: %w", matchID, err)
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *postgresMatchParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.MatchParticipant, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT mp.match_id, mp.participant_id, mp.name, mp.picture_ref, mp.status, mp.is_winner, mp.result_text
		FROM match_participants mp
		JOIN matches m ON m.id = mp.match_id
		WHERE m.tournament_id = $1
		ORDER BY mp.match_id, mp.participant_id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list match participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *postgresMatchParticipantRepository) collect(rows *sql.Rows) ([]*models.MatchParticipant, error) {
	entries := make([]*models.MatchParticipant, 0)
	for rows.Next() {
		mp, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, mp)
	}
	return entries, rows.Err()
}

func (r *postgresMatchParticipantRepository) UpdateOutcome(ctx context.Context, exec SQLExecutor, matchID, participantID int, isWinner bool, resultText *string, status models.MatchParticipantStatus) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE match_participants
		SET is_winner = $1, result_text = $2, status = $3
		WHERE match_id = $4 AND participant_id = $5`
	result, err := executor.ExecContext(ctx, query, isWinner, resultText, status, matchID, participantID)
	if err != nil {
		return fmt.Errorf("failed to update outcome for match %d participant %d: %w", matchID, participantID, err)
	}
	return checkAffectedRows(result, ErrMatchParticipantNotFound)
}

func (r *postgresMatchParticipantRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `
		DELETE FROM match_participants
		WHERE match_id IN (SELECT id FROM matches WHERE tournament_id = $1)`
	_, err := executor.ExecContext(ctx, query, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete match participants for tournament %d: %w", tournamentID, err)
	}
	return nil
}
