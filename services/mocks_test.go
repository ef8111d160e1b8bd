package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/pongnight/bracket-server/models"
	"github.com/pongnight/bracket-server/repositories"
)

// In-memory реализации репозиториев для тестов сервисного слоя.

type fakePlayerRepo struct {
	mu      sync.Mutex
	players []*models.Player
}

func newFakePlayerRepo(players ...models.Player) *fakePlayerRepo {
	repo := &fakePlayerRepo{}
	for i := range players {
		p := players[i]
		repo.players = append(repo.players, &p)
	}
	return repo
}

func (r *fakePlayerRepo) find(id string) *models.Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *fakePlayerRepo) Create(_ context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *player
	r.players = append(r.players, &cp)
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.find(id); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) ListByIDs(_ context.Context, ids []string) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		if p := r.find(id); p != nil {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) List(_ context.Context) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Player, 0, len(r.players))
	for _, p := range r.players {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakePlayerRepo) Update(_ context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.find(player.ID)
	if p == nil {
		return repositories.ErrPlayerNotFound
	}
	*p = *player
	return nil
}

func (r *fakePlayerRepo) UpdateStats(_ context.Context, id string, wins, losses int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.find(id)
	if p == nil {
		return repositories.ErrPlayerNotFound
	}
	p.Wins = wins
	p.Losses = losses
	return nil
}

func (r *fakePlayerRepo) ResetAllStats(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		p.Wins = 0
		p.Losses = 0
	}
	return nil
}

func (r *fakePlayerRepo) AddWinnings(_ context.Context, id string, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.find(id)
	if p == nil {
		return repositories.ErrPlayerNotFound
	}
	p.Winnings += amount
	return nil
}

func (r *fakePlayerRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.players {
		if p.ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return nil
		}
	}
	return repositories.ErrPlayerNotFound
}

type fakeTeamRepo struct {
	mu        sync.Mutex
	teams     []models.Team
	createErr error // имитация сбоя вставки
}

func (r *fakeTeamRepo) CreateBatch(_ context.Context, teams []models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.teams = append(r.teams, teams...)
	return nil
}

func (r *fakeTeamRepo) removeByTournament(tournamentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.teams[:0]
	for _, t := range r.teams {
		if t.TournamentID == nil || *t.TournamentID != tournamentID {
			kept = append(kept, t)
		}
	}
	r.teams = kept
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id string) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) ListByTournament(_ context.Context, tournamentID string) ([]models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Team, 0)
	for _, t := range r.teams {
		if t.TournamentID != nil && *t.TournamentID == tournamentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) ListAll(_ context.Context) ([]models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Team, len(r.teams))
	copy(out, r.teams)
	return out, nil
}

type fakeMatchRepo struct {
	mu        sync.Mutex
	matches   []models.Match
	createErr error // имитация сбоя вставки
}

func (r *fakeMatchRepo) CreateBatch(_ context.Context, matches []models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.matches = append(r.matches, matches...)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID string) ([]models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Match, 0)
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListAllCompleted(_ context.Context) ([]models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Match, 0)
	for _, m := range r.matches {
		if m.IsComplete && m.Team2ID != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) Update(_ context.Context, id string, input repositories.MatchUpdateInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.matches {
		if r.matches[i].ID != id {
			continue
		}
		m := &r.matches[i]
		if input.Score1 != nil {
			m.Score1 = *input.Score1
		}
		if input.Score2 != nil {
			m.Score2 = *input.Score2
		}
		if input.IsComplete != nil {
			m.IsComplete = *input.IsComplete
		}
		if input.WinnerID != nil {
			winner := *input.WinnerID
			m.WinnerID = &winner
		}
		return nil
	}
	return repositories.ErrMatchNotFound
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments []models.Tournament
	teamRepo    *fakeTeamRepo
	matchRepo   *fakeMatchRepo
}

// Create повторяет транзакционную семантику хранилища: турнир, команды и
// матчи записываются все вместе либо не записываются вовсе.
func (r *fakeTournamentRepo) Create(ctx context.Context, tournament *models.Tournament) error {
	if err := r.teamRepo.CreateBatch(ctx, tournament.Teams); err != nil {
		return err
	}
	if err := r.matchRepo.CreateBatch(ctx, tournament.Matches); err != nil {
		r.teamRepo.removeByTournament(tournament.ID)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *tournament
	cp.Teams = nil
	cp.Matches = nil
	r.tournaments = append(r.tournaments, cp)
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	r.mu.Lock()
	var found *models.Tournament
	for i := range r.tournaments {
		if r.tournaments[i].ID == id {
			cp := r.tournaments[i]
			found = &cp
			break
		}
	}
	r.mu.Unlock()
	if found == nil {
		return nil, repositories.ErrTournamentNotFound
	}

	teams, _ := r.teamRepo.ListByTournament(ctx, id)
	matches, _ := r.matchRepo.ListByTournament(ctx, id)
	found.Teams = teams
	found.Matches = matches
	return found, nil
}

func (r *fakeTournamentRepo) List(_ context.Context) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for i := range r.tournaments {
		cp := r.tournaments[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, id string, input repositories.TournamentUpdateInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tournaments {
		if r.tournaments[i].ID != id {
			continue
		}
		t := &r.tournaments[i]
		if input.Status != nil {
			t.Status = *input.Status
		}
		if input.CurrentRound != nil {
			t.CurrentRound = *input.CurrentRound
		}
		if input.WinnerTeamID != nil {
			winner := *input.WinnerTeamID
			t.WinnerTeamID = &winner
		}
		return nil
	}
	return repositories.ErrTournamentNotFound
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tournaments {
		if r.tournaments[i].ID == id {
			r.tournaments = append(r.tournaments[:i], r.tournaments[i+1:]...)
			return nil
		}
	}
	return repositories.ErrTournamentNotFound
}

func testPlayers(n int) []models.Player {
	players := make([]models.Player, n)
	for i := range players {
		gender := models.GenderMale
		if i%2 == 1 {
			gender = models.GenderFemale
		}
		players[i] = models.Player{
			ID:     fmt.Sprintf("player-%d", i+1),
			Name:   fmt.Sprintf("Player %d", i+1),
			Gender: gender,
		}
	}
	return players
}

func playerIDs(players []models.Player) []string {
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}
