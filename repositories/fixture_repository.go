package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bracketlab/tournament-engine/models"
)

var ErrFixtureNotFound = errors.New("round robin fixture not found")

type FixtureRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, fixtures []*models.RoundRobinFixture) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.RoundRobinFixture, error)
	ListByGroup(ctx context.Context, exec SQLExecutor, groupID int) ([]*models.RoundRobinFixture, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, fixtureID int, score1, score2 int, winnerID *int, status models.FixtureStatus) error
	CountPendingByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresFixtureRepository struct {
	db *sql.DB
}

func NewPostgresFixtureRepository(db *sql.DB) FixtureRepository {
	return &postgresFixtureRepository{db: db}
}

func (r *postgresFixtureRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresFixtureRepository) BatchCreate(ctx context.Context, exec SQLExecutor, fixtures []*models.RoundRobinFixture) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO round_robin_fixtures
			(group_id, round_number, participant1_id, participant2_id, score1, score2, winner_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	for _, f := range fixtures {
		err := executor.QueryRowContext(ctx, query,
			f.GroupID, f.RoundNumber, f.Participant1ID, f.Participant2ID,
			f.Score1, f.Score2, f.WinnerID, f.Status,
		).Scan(&f.ID)
		if err != nil {
			return fmt.Errorf("failed to create fixture for group %d round %d: %w", f.GroupID, f.RoundNumber, err)
		}
	}
	return nil
}

func (r *postgresFixtureRepository) scanFixture(row interface{ Scan(...interface{}) error }) (*models.RoundRobinFixture, error) {
	f := &models.RoundRobinFixture{}
	err := row.Scan(
		&f.ID, &f.GroupID, &f.RoundNumber, &f.Participant1ID, &f.Participant2ID,
		&f.Score1, &f.Score2, &f.WinnerID, &f.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	return f, nil
}

const fixtureColumns = `
	id, group_id, round_number, participant1_id, participant2_id, score1, score2, winner_id, status
`

func (r *postgresFixtureRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.RoundRobinFixture, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + fixtureColumns + `FROM round_robin_fixtures WHERE id = $1`
	return r.scanFixture(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresFixtureRepository) ListByGroup(ctx context.Context, exec SQLExecutor, groupID int) ([]*models.RoundRobinFixture, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + fixtureColumns + `FROM round_robin_fixtures
		WHERE group_id = $1
		ORDER BY round_number, id`

	rows, err := executor.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures for group %d: %w", groupID, err)
	}
	defer rows.Close()

	fixtures := make([]*models.RoundRobinFixture, 0)
	for rows.Next() {
		f, errScan := r.scanFixture(rows)
		if errScan != nil {
			return nil, errScan
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, rows.Err()
}

func (r *postgresFixtureRepository) UpdateResult(ctx context.Context, exec SQLExecutor, fixtureID int, score1, score2 int, winnerID *int, status models.FixtureStatus) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE round_robin_fixtures
		SET score1 = $1, score2 = $2, winner_id = $3, status = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query, score1, score2, winnerID, status, fixtureID)
	if err != nil {
		return fmt.Errorf("failed to update fixture %d: %w", fixtureID, err)
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) CountPendingByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COUNT(*)
		FROM round_robin_fixtures f
		JOIN groups g ON g.id = f.group_id
		WHERE g.tournament_id = $1 AND f.status <> $2`

	var count int
	err := executor.QueryRowContext(ctx, query, tournamentID, models.FixtureCompleted).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending fixtures for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresFixtureRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `
		DELETE FROM round_robin_fixtures
		WHERE group_id IN (SELECT id FROM groups WHERE tournament_id = $1)`
	_, err := executor.ExecContext(ctx, query, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete fixtures for tournament %d: %w", tournamentID, err)
	}
	return nil
}
