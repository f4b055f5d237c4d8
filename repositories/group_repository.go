package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bracketlab/tournament-engine/models"
)

var (
	ErrGroupNotFound        = errors.New("group not found")
	ErrGroupMemberConflict  = errors.New("participant is already a member of the group")
	ErrGroupMembersNotFound = errors.New("group has no members")
)

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Group, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Group, error)
	AddMember(ctx context.Context, exec SQLExecutor, groupID, participantID int) error
	ListMembers(ctx context.Context, exec SQLExecutor, groupID int) ([]int, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO groups (tournament_id, name, is_primary)
		VALUES ($1, $2, $3)
		RETURNING id`
	err := executor.QueryRowContext(ctx, query, group.TournamentID, group.Name, group.IsPrimary).Scan(&group.ID)
	if err != nil {
		return fmt.Errorf("failed to create group %q for tournament %d: %w", group.Name, group.TournamentID, err)
	}
	return nil
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Group, error) {
	executor := r.getExecutor(exec)
	g := &models.Group{}
	err := executor.QueryRowContext(ctx,
		`SELECT id, tournament_id, name, is_primary FROM groups WHERE id = $1`, id,
	).Scan(&g.ID, &g.TournamentID, &g.Name, &g.IsPrimary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group %d: %w", id, err)
	}
	return g, nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Group, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT id, tournament_id, name, is_primary FROM groups WHERE tournament_id = $1 ORDER BY id`,
		tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.TournamentID, &g.Name, &g.IsPrimary); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *postgresGroupRepository) AddMember(ctx context.Context, exec SQLExecutor, groupID, participantID int) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO group_memberships (group_id, participant_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, participant_id) DO NOTHING`
	result, err := executor.ExecContext(ctx, query, groupID, participantID)
	if err != nil {
		return fmt.Errorf("failed to add participant %d to group %d: %w", participantID, groupID, err)
	}
	return checkAffectedRows(result, ErrGroupMemberConflict)
}

func (r *postgresGroupRepository) ListMembers(ctx context.Context, exec SQLExecutor, groupID int) ([]int, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT participant_id FROM group_memberships WHERE group_id = $1 ORDER BY participant_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of group %d: %w", groupID, err)
	}
	defer rows.Close()

	members := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func (r *postgresGroupRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx,
		`DELETE FROM group_memberships WHERE group_id IN (SELECT id FROM groups WHERE tournament_id = $1)`,
		tournamentID,
	); err != nil {
		return fmt.Errorf("failed to delete group memberships for tournament %d: %w", tournamentID, err)
	}
	if _, err := executor.ExecContext(ctx,
		`DELETE FROM groups WHERE tournament_id = $1`, tournamentID,
	); err != nil {
		return fmt.Errorf("failed to delete groups for tournament %d: %w", tournamentID, err)
	}
	return nil
}
