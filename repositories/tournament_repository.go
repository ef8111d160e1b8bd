package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/pongnight/bracket-server/models"
	"golang.org/x/sync/errgroup"
)

var ErrTournamentNotFound = errors.New("tournament not found")

// TournamentUpdateInput частичное обновление: меняются только не-nil поля.
type TournamentUpdateInput struct {
	Status       *models.TournamentStatus
	CurrentRound *int
	WinnerTeamID *string
}

type TournamentRepository interface {
	// Create сохраняет турнир вместе с командами и матчами из его коллекций
	// одной транзакцией: либо записывается всё, либо ничего.
	Create(ctx context.Context, tournament *models.Tournament) error
	// GetByID загружает турнир вместе с коллекциями команд и матчей.
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Update(ctx context.Context, id string, input TournamentUpdateInput) error
	Delete(ctx context.Context, id string) error
}

type postgresTournamentRepository struct {
	db        *sql.DB
	teamRepo  TeamRepository
	matchRepo MatchRepository
}

func NewPostgresTournamentRepository(db *sql.DB, teamRepo TeamRepository, matchRepo MatchRepository) TournamentRepository {
	return &postgresTournamentRepository{db: db, teamRepo: teamRepo, matchRepo: matchRepo}
}

const tournamentColumns = `id, name, status, current_round, buy_in, pot, winner_team_id, created_at, updated_at`

func scanTournament(row interface{ Scan(dest ...any) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Status,
		&t.CurrentRound,
		&t.BuyIn,
		&t.Pot,
		&t.WinnerTeamID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tournaments (id, name, status, current_round, buy_in, pot)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	if err := tx.QueryRowContext(ctx, query,
		tournament.ID,
		tournament.Name,
		tournament.Status,
		tournament.CurrentRound,
		tournament.BuyIn,
		tournament.Pot,
	).Scan(&tournament.CreatedAt, &tournament.UpdatedAt); err != nil {
		return err
	}

	if err := insertTeams(ctx, tx, tournament.Teams); err != nil {
		return err
	}
	if err := insertMatches(ctx, tx, tournament.Matches); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	tournament, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	// Команды и матчи загружаются параллельно.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, err := r.teamRepo.ListByTournament(gCtx, id)
		if err != nil {
			return err
		}
		tournament.Teams = teams
		return nil
	})
	g.Go(func() error {
		matches, err := r.matchRepo.ListByTournament(gCtx, id)
		if err != nil {
			return err
		}
		tournament.Matches = matches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return tournament, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, id string, input TournamentUpdateInput) error {
	var setClauses []string
	args := []interface{}{}
	placeholder := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, column+" = $"+strconv.Itoa(placeholder))
		args = append(args, value)
		placeholder++
	}

	if input.Status != nil {
		addClause("status", *input.Status)
	}
	if input.CurrentRound != nil {
		addClause("current_round", *input.CurrentRound)
	}
	if input.WinnerTeamID != nil {
		addClause("winner_team_id", *input.WinnerTeamID)
	}
	if len(setClauses) == 0 {
		return nil
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := "UPDATE tournaments SET " + strings.Join(setClauses, ", ") +
		" WHERE id = $" + strconv.Itoa(placeholder)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	// Команды и матчи удаляются каскадом: турнир владеет ими.
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
