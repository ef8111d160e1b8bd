package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pongnight/bracket-server/models"
)

var (
	ErrPlayerGroupNotFound      = errors.New("player group not found")
	ErrPlayerGroupMemberInvalid = errors.New("player group references unknown player")
)

type PlayerGroupRepository interface {
	Create(ctx context.Context, group *models.PlayerGroup) error
	GetByID(ctx context.Context, id string) (*models.PlayerGroup, error)
	List(ctx context.Context) ([]*models.PlayerGroup, error)
	// Update перезаписывает имя и состав группы целиком, сохраняя порядок.
	Update(ctx context.Context, group *models.PlayerGroup) error
	Delete(ctx context.Context, id string) error
}

type postgresPlayerGroupRepository struct {
	db *sql.DB
}

func NewPostgresPlayerGroupRepository(db *sql.DB) PlayerGroupRepository {
	return &postgresPlayerGroupRepository{db: db}
}

func (r *postgresPlayerGroupRepository) Create(ctx context.Context, group *models.PlayerGroup) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO player_groups (id, name)
		VALUES ($1, $2)
		RETURNING created_at, updated_at`
	if err := tx.QueryRowContext(ctx, query, group.ID, group.Name).
		Scan(&group.CreatedAt, &group.UpdatedAt); err != nil {
		return err
	}

	if err := insertGroupMembers(ctx, tx, group.ID, group.PlayerIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresPlayerGroupRepository) GetByID(ctx context.Context, id string) (*models.PlayerGroup, error) {
	query := `SELECT id, name, created_at, updated_at FROM player_groups WHERE id = $1`

	group := &models.PlayerGroup{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&group.ID, &group.Name, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerGroupNotFound
		}
		return nil, err
	}

	group.PlayerIDs, err = r.memberIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (r *postgresPlayerGroupRepository) List(ctx context.Context) ([]*models.PlayerGroup, error) {
	query := `SELECT id, name, created_at, updated_at FROM player_groups ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*models.PlayerGroup, 0)
	for rows.Next() {
		group := &models.PlayerGroup{}
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, group := range groups {
		if group.PlayerIDs, err = r.memberIDs(ctx, group.ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (r *postgresPlayerGroupRepository) Update(ctx context.Context, group *models.PlayerGroup) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE player_groups SET name = $1, updated_at = now() WHERE id = $2`,
		group.Name, group.ID)
	if err != nil {
		return err
	}
	if err := checkAffectedRows(result, ErrPlayerGroupNotFound); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM player_group_members WHERE group_id = $1`, group.ID); err != nil {
		return err
	}
	if err := insertGroupMembers(ctx, tx, group.ID, group.PlayerIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresPlayerGroupRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM player_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerGroupNotFound)
}

func (r *postgresPlayerGroupRepository) memberIDs(ctx context.Context, groupID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player_id FROM player_group_members WHERE group_id = $1 ORDER BY position ASC`,
		groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertGroupMembers(ctx context.Context, tx *sql.Tx, groupID string, playerIDs []string) error {
	query := `INSERT INTO player_group_members (group_id, player_id, position) VALUES ($1, $2, $3)`
	for i, playerID := range playerIDs {
		if _, err := tx.ExecContext(ctx, query, groupID, playerID, i); err != nil {
			if isForeignKeyViolation(err, "player_group_members_player_id_fkey") {
				return ErrPlayerGroupMemberInvalid
			}
			return err
		}
	}
	return nil
}
