package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/pongnight/bracket-server/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	// UpdateStats перезаписывает счётчики целиком, не инкрементирует.
	UpdateStats(ctx context.Context, id string, wins, losses int) error
	ResetAllStats(ctx context.Context) error
	AddWinnings(ctx context.Context, id string, amount float64) error
	Delete(ctx context.Context, id string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, name, nickname, gender, wins, losses, winnings, avatar_key, created_at, updated_at`

func scanPlayer(row interface{ Scan(dest ...any) error }) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Nickname,
		&p.Gender,
		&p.Wins,
		&p.Losses,
		&p.Winnings,
		&p.AvatarKey,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (id, name, nickname, gender)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		player.ID,
		player.Name,
		player.Nickname,
		player.Gender,
	).Scan(&player.CreatedAt, &player.UpdatedAt)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	player, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Player, error) {
	if len(ids) == 0 {
		return []*models.Player{}, nil
	}

	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPlayers(rows)
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPlayers(rows)
}

func collectPlayers(rows *sql.Rows) ([]*models.Player, error) {
	players := make([]*models.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players
		SET name = $1, nickname = $2, gender = $3, avatar_key = $4, updated_at = now()
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		player.Name,
		player.Nickname,
		player.Gender,
		player.AvatarKey,
		player.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateStats(ctx context.Context, id string, wins, losses int) error {
	query := `UPDATE players SET wins = $1, losses = $2, updated_at = now() WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, wins, losses, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) ResetAllStats(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE players SET wins = 0, losses = 0, updated_at = now()`)
	return err
}

func (r *postgresPlayerRepository) AddWinnings(ctx context.Context, id string, amount float64) error {
	query := `UPDATE players SET winnings = winnings + $1, updated_at = now() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, amount, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
