package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/pongnight/bracket-server/models"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamInvalid = errors.New("match references unknown team")
)

// MatchUpdateInput частичное обновление: меняются только не-nil поля.
type MatchUpdateInput struct {
	Score1     *int
	Score2     *int
	IsComplete *bool
	WinnerID   *string
}

type MatchRepository interface {
	CreateBatch(ctx context.Context, matches []models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]models.Match, error)
	// ListAllCompleted отдаёт завершённые не-bye матчи всех турниров;
	// используется пересчётом статистики игроков.
	ListAllCompleted(ctx context.Context) ([]models.Match, error)
	Update(ctx context.Context, id string, input MatchUpdateInput) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, team1_id, team2_id, score1, score2, round, is_complete, winner_id, created_at, updated_at`

func scanMatch(row interface{ Scan(dest ...any) error }) (models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.Team1ID,
		&m.Team2ID,
		&m.Score1,
		&m.Score2,
		&m.Round,
		&m.IsComplete,
		&m.WinnerID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, matches []models.Match) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertMatches(ctx, tx, matches); err != nil {
		return err
	}
	return tx.Commit()
}

// insertMatches вставляет матчи внутри уже открытой транзакции; используется
// и CreateBatch, и атомарным созданием турнира.
func insertMatches(ctx context.Context, tx *sql.Tx, matches []models.Match) error {
	query := `
		INSERT INTO matches (id, tournament_id, team1_id, team2_id, score1, score2, round, is_complete, winner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	for i := range matches {
		m := &matches[i]
		err := tx.QueryRowContext(ctx, query,
			m.ID, m.TournamentID, m.Team1ID, m.Team2ID,
			m.Score1, m.Score2, m.Round, m.IsComplete, m.WinnerID,
		).Scan(&m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			if isForeignKeyViolation(err, "matches_team1_id_fkey", "matches_team2_id_fkey", "matches_winner_id_fkey") {
				return ErrMatchTeamInvalid
			}
			return err
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY round ASC, seq ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListAllCompleted(ctx context.Context) ([]models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE is_complete = TRUE AND team2_id IS NOT NULL
		ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMatches(rows)
}

func collectMatches(rows *sql.Rows) ([]models.Match, error) {
	matches := make([]models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Update(ctx context.Context, id string, input MatchUpdateInput) error {
	var setClauses []string
	args := []interface{}{}
	placeholder := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, column+" = $"+strconv.Itoa(placeholder))
		args = append(args, value)
		placeholder++
	}

	if input.Score1 != nil {
		addClause("score1", *input.Score1)
	}
	if input.Score2 != nil {
		addClause("score2", *input.Score2)
	}
	if input.IsComplete != nil {
		addClause("is_complete", *input.IsComplete)
	}
	if input.WinnerID != nil {
		addClause("winner_id", *input.WinnerID)
	}
	if len(setClauses) == 0 {
		return nil
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := "UPDATE matches SET " + strings.Join(setClauses, ", ") +
		" WHERE id = $" + strconv.Itoa(placeholder)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err, "matches_winner_id_fkey") {
			return ErrMatchTeamInvalid
		}
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
