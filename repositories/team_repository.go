package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pongnight/bracket-server/models"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	// CreateBatch вставляет команды одной транзакцией, сохраняя порядок.
	CreateBatch(ctx context.Context, teams []models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]models.Team, error)
	ListAll(ctx context.Context) ([]models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, tournament_id, player1_id, player2_id, name, solo, created_at`

func scanTeam(row interface{ Scan(dest ...any) error }) (models.Team, error) {
	var t models.Team
	err := row.Scan(
		&t.ID,
		&t.TournamentID,
		&t.Player1ID,
		&t.Player2ID,
		&t.Name,
		&t.Solo,
		&t.CreatedAt,
	)
	return t, err
}

func (r *postgresTeamRepository) CreateBatch(ctx context.Context, teams []models.Team) error {
	if len(teams) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertTeams(ctx, tx, teams); err != nil {
		return err
	}
	return tx.Commit()
}

// insertTeams вставляет команды внутри уже открытой транзакции; используется
// и CreateBatch, и атомарным созданием турнира.
func insertTeams(ctx context.Context, tx *sql.Tx, teams []models.Team) error {
	query := `
		INSERT INTO teams (id, tournament_id, player1_id, player2_id, name, solo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	for i := range teams {
		t := &teams[i]
		if err := tx.QueryRowContext(ctx, query,
			t.ID, t.TournamentID, t.Player1ID, t.Player2ID, t.Name, t.Solo,
		).Scan(&t.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	t, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tournament_id = $1 ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTeams(rows)
}

func (r *postgresTeamRepository) ListAll(ctx context.Context) ([]models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTeams(rows)
}

func collectTeams(rows *sql.Rows) ([]models.Team, error) {
	teams := make([]models.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}
