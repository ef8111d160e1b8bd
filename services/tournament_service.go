package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/pongnight/bracket-server/bracket"
	"github.com/pongnight/bracket-server/models"
	"github.com/pongnight/bracket-server/repositories"
)

// Распределение банка при завершении турнира.
const (
	championPotShare = 0.70
	runnerUpPotShare = 0.30
)

type CreateTournamentInput struct {
	Name      string              `json:"name"`
	PlayerIDs []string            `json:"player_ids"`
	Mode      bracket.PairingMode `json:"mode"`
	BuyIn     float64             `json:"buy_in"`
}

type UpdateMatchScoreInput struct {
	TournamentID string `json:"-"`
	MatchID      string `json:"-"`
	Score1       int    `json:"score1"`
	Score2       int    `json:"score2"`
	Complete     bool   `json:"complete"`
}

// RoundView раунд сетки с подписью для UI.
type RoundView struct {
	Round   int            `json:"round"`
	Label   string         `json:"label"`
	Matches []models.Match `json:"matches"`
}

// BracketView структура сетки турнира, сгруппированная по раундам.
type BracketView struct {
	TournamentID string                  `json:"tournament_id"`
	Status       models.TournamentStatus `json:"status"`
	CurrentRound int                     `json:"current_round"`
	IsComplete   bool                    `json:"is_complete"`
	Rounds       []RoundView             `json:"rounds"`
	Winner       *models.Team            `json:"winner,omitempty"`
	RunnerUp     *models.Team            `json:"runner_up,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)
	DeleteTournament(ctx context.Context, id string) error
	ActivateTournament(ctx context.Context, id string) (*models.Tournament, error)
	UpdateMatchScore(ctx context.Context, input UpdateMatchScoreInput) (*models.Tournament, error)
	FixTournamentBracket(ctx context.Context, id string) (*models.Tournament, error)
	GetBracket(ctx context.Context, id string) (*BracketView, error)
}

type tournamentService struct {
	playerRepo     repositories.PlayerRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	hub            *bracket.Hub
	logger         *slog.Logger

	// "Прочитал матчи — решил — записал следующий раунд" — классический
	// check-then-act; блокировка на турнир закрывает гонку двух
	// одновременных финальных сабмитов.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewTournamentService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	hub *bracket.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		playerRepo:     playerRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		hub:            hub,
		logger:         logger,
		locks:          make(map[string]*sync.Mutex),
	}
}

func (s *tournamentService) lockFor(tournamentID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if l, ok := s.locks[tournamentID]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[tournamentID] = l
	return l
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.BuyIn < 0 {
		return nil, ErrNegativeBuyIn
	}

	players, err := s.loadPlayersInOrder(ctx, input.PlayerIDs)
	if err != nil {
		return nil, err
	}

	teams, err := bracket.GenerateTeams(players, input.Mode)
	if err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		ID:           bracket.NewID(),
		Name:         input.Name,
		Status:       models.StatusSetup,
		CurrentRound: 1,
		BuyIn:        input.BuyIn,
		Pot:          input.BuyIn * float64(len(players)),
	}
	for i := range teams {
		teams[i].TournamentID = &tournament.ID
	}

	matches, err := bracket.GenerateBracket(tournament.ID, teams)
	if err != nil {
		return nil, err
	}

	tournament.Teams = teams
	tournament.Matches = matches

	// Валидация закончена. Турнир, команды и матчи пишутся одной
	// транзакцией: сбой хранилища не оставляет осиротевших строк.
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}

	s.logger.Info("tournament created",
		slog.String("tournament_id", tournament.ID),
		slog.Int("players", len(players)),
		slog.Int("teams", len(teams)),
		slog.Int("round1_matches", len(matches)),
		slog.Float64("pot", tournament.Pot))

	return tournament, nil
}

// loadPlayersInOrder загружает игроков, сохраняя порядок запрошенных id.
func (s *tournamentService) loadPlayersInOrder(ctx context.Context, ids []string) ([]models.Player, error) {
	if len(ids) < 2 {
		return nil, bracket.ErrInsufficientPlayers
	}

	loaded, err := s.playerRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Player, len(loaded))
	for _, p := range loaded {
		byID[p.ID] = p
	}

	players := make([]models.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
		}
		players = append(players, *p)
	}
	return players, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id string) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return translateRepoError(err)
	}
	s.logger.Info("tournament deleted", slog.String("tournament_id", id))
	return nil
}

func (s *tournamentService) ActivateTournament(ctx context.Context, id string) (*models.Tournament, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	tournament, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.StatusCompleted {
		return nil, ErrTournamentOver
	}
	if tournament.Status == models.StatusSetup {
		if err := s.setStatus(ctx, tournament, models.StatusActive); err != nil {
			return nil, err
		}
	}
	return tournament, nil
}

func (s *tournamentService) UpdateMatchScore(ctx context.Context, input UpdateMatchScoreInput) (*models.Tournament, error) {
	lock := s.lockFor(input.TournamentID)
	lock.Lock()
	defer lock.Unlock()

	if input.Score1 < 0 || input.Score2 < 0 {
		return nil, ErrNegativeScore
	}

	tournament, err := s.GetTournament(ctx, input.TournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.StatusCompleted {
		return nil, ErrTournamentOver
	}

	match := tournament.MatchByID(input.MatchID)
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if match.IsBye() {
		return nil, ErrByeMatchImmutable
	}
	if match.IsComplete {
		return nil, ErrMatchAlreadyComplete
	}
	// Завершённый матч обязан иметь строгого победителя; отказ до любых записей.
	if input.Complete && input.Score1 == input.Score2 {
		return nil, ErrTiedScore
	}

	// Первый же сабмит счёта переводит SETUP -> ACTIVE.
	if tournament.Status == models.StatusSetup {
		if err := s.setStatus(ctx, tournament, models.StatusActive); err != nil {
			return nil, err
		}
	}

	update := repositories.MatchUpdateInput{
		Score1: &input.Score1,
		Score2: &input.Score2,
	}
	if input.Complete {
		winnerID := match.Team1ID
		if input.Score2 > input.Score1 {
			winnerID = *match.Team2ID
		}
		isComplete := true
		update.IsComplete = &isComplete
		update.WinnerID = &winnerID
	}

	if err := s.matchRepo.Update(ctx, match.ID, update); err != nil {
		return nil, translateRepoError(err)
	}

	match.Score1 = input.Score1
	match.Score2 = input.Score2

	if !input.Complete {
		// Промежуточное сохранение: ни победителя, ни статистики,
		// ни проверки раунда.
		s.broadcast(bracket.EventMatchUpdated, tournament.ID, match)
		return tournament, nil
	}

	match.IsComplete = true
	match.WinnerID = update.WinnerID

	if err := s.recordMatchOutcome(ctx, tournament, match); err != nil {
		return nil, err
	}
	s.broadcast(bracket.EventMatchUpdated, tournament.ID, match)

	if err := s.checkAndCreateNextRound(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

// recordMatchOutcome инкрементирует win/loss четырёх затронутых игроков.
// Bye-матчи сюда не попадают: они не принимают пользовательский ввод.
func (s *tournamentService) recordMatchOutcome(ctx context.Context, tournament *models.Tournament, match *models.Match) error {
	winnerTeam := tournament.TeamByID(*match.WinnerID)
	var loserTeam *models.Team
	if *match.WinnerID == match.Team1ID {
		loserTeam = tournament.TeamByID(*match.Team2ID)
	} else {
		loserTeam = tournament.TeamByID(match.Team1ID)
	}
	if winnerTeam == nil || loserTeam == nil {
		return ErrTeamNotFound
	}

	if err := s.adjustStats(ctx, winnerTeam.PlayerIDs(), true); err != nil {
		return err
	}
	return s.adjustStats(ctx, loserTeam.PlayerIDs(), false)
}

func (s *tournamentService) adjustStats(ctx context.Context, playerIDs []string, won bool) error {
	players, err := s.playerRepo.ListByIDs(ctx, playerIDs)
	if err != nil {
		return err
	}
	for _, p := range players {
		wins, losses := p.Wins, p.Losses
		if won {
			wins++
		} else {
			losses++
		}
		if err := s.playerRepo.UpdateStats(ctx, p.ID, wins, losses); err != nil {
			return translateRepoError(err)
		}
	}
	return nil
}

// checkAndCreateNextRound вызывается после каждого завершающего сабмита.
// Если все матчи текущего раунда завершены: больше одного победителя —
// создаётся следующий раунд, ровно один — турнир завершается.
func (s *tournamentService) checkAndCreateNextRound(ctx context.Context, tournament *models.Tournament) error {
	var current []models.Match
	for _, m := range tournament.Matches {
		if m.Round == tournament.CurrentRound {
			current = append(current, m)
		}
	}
	if len(current) == 0 {
		return nil
	}
	for _, m := range current {
		if !m.IsComplete {
			return nil
		}
	}

	winners := make([]models.Team, 0, len(current))
	for _, m := range current {
		if m.WinnerID == nil {
			continue
		}
		if team := tournament.TeamByID(*m.WinnerID); team != nil {
			winners = append(winners, *team)
		}
	}

	if len(winners) == 1 {
		return s.completeTournament(ctx, tournament, winners[0])
	}
	if len(winners) < 2 {
		return nil
	}

	nextRound := tournament.CurrentRound + 1
	next := bracket.GenerateRoundMatches(tournament.ID, winners, nextRound, current)
	if err := s.matchRepo.CreateBatch(ctx, next); err != nil {
		return err
	}
	if err := s.tournamentRepo.Update(ctx, tournament.ID, repositories.TournamentUpdateInput{
		CurrentRound: &nextRound,
	}); err != nil {
		return translateRepoError(err)
	}
	tournament.CurrentRound = nextRound
	tournament.Matches = append(tournament.Matches, next...)

	s.logger.Info("round advanced",
		slog.String("tournament_id", tournament.ID),
		slog.Int("round", nextRound),
		slog.Int("matches", len(next)))
	s.broadcast(bracket.EventRoundAdvanced, tournament.ID, next)
	return nil
}

func (s *tournamentService) completeTournament(ctx context.Context, tournament *models.Tournament, winner models.Team) error {
	status := models.StatusCompleted
	winnerID := winner.ID
	if err := s.tournamentRepo.Update(ctx, tournament.ID, repositories.TournamentUpdateInput{
		Status:       &status,
		WinnerTeamID: &winnerID,
	}); err != nil {
		return translateRepoError(err)
	}
	tournament.Status = status
	tournament.WinnerTeamID = &winnerID

	// Выплаты: 70% банка чемпиону, 30% финалисту. Доля команды делится
	// поровну между её игроками; solo-команда получает долю целиком.
	if err := s.payoutTeam(ctx, winner, tournament.Pot*championPotShare); err != nil {
		return err
	}
	if runnerUpID := bracket.RunnerUpTeamID(tournament.Matches); runnerUpID != nil {
		if runnerUp := tournament.TeamByID(*runnerUpID); runnerUp != nil {
			if err := s.payoutTeam(ctx, *runnerUp, tournament.Pot*runnerUpPotShare); err != nil {
				return err
			}
		}
	}

	s.logger.Info("tournament completed",
		slog.String("tournament_id", tournament.ID),
		slog.String("winner_team_id", winnerID),
		slog.Float64("pot", tournament.Pot))
	s.broadcast(bracket.EventTournamentCompleted, tournament.ID, tournament)
	return nil
}

func (s *tournamentService) payoutTeam(ctx context.Context, team models.Team, amount float64) error {
	if amount <= 0 {
		return nil
	}
	ids := team.PlayerIDs()
	share := amount / float64(len(ids))
	for _, id := range ids {
		if err := s.playerRepo.AddWinnings(ctx, id, share); err != nil {
			return translateRepoError(err)
		}
	}
	return nil
}

// FixTournamentBracket восстанавливает сетку турнира, у которого есть
// команды, но нет матчей. Повторный вызов ничего не добавляет.
func (s *tournamentService) FixTournamentBracket(ctx context.Context, id string) (*models.Tournament, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	tournament, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(tournament.Matches) > 0 {
		return tournament, nil
	}

	matches, err := bracket.GenerateBracket(tournament.ID, tournament.Teams)
	if err != nil {
		return nil, err
	}
	if err := s.matchRepo.CreateBatch(ctx, matches); err != nil {
		return nil, err
	}
	firstRound := 1
	if err := s.tournamentRepo.Update(ctx, tournament.ID, repositories.TournamentUpdateInput{
		CurrentRound: &firstRound,
	}); err != nil {
		return nil, translateRepoError(err)
	}
	tournament.CurrentRound = firstRound
	tournament.Matches = matches

	s.logger.Warn("tournament bracket regenerated",
		slog.String("tournament_id", tournament.ID),
		slog.Int("matches", len(matches)))
	return tournament, nil
}

func (s *tournamentService) GetBracket(ctx context.Context, id string) (*BracketView, error) {
	tournament, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	structure := bracket.Structure(tournament.Matches)
	roundNumbers := make([]int, 0, len(structure))
	for round := range structure {
		roundNumbers = append(roundNumbers, round)
	}
	sort.Ints(roundNumbers)

	view := &BracketView{
		TournamentID: tournament.ID,
		Status:       tournament.Status,
		CurrentRound: tournament.CurrentRound,
		IsComplete:   bracket.IsComplete(tournament.Matches),
		Rounds:       make([]RoundView, 0, len(roundNumbers)),
	}
	for _, round := range roundNumbers {
		view.Rounds = append(view.Rounds, RoundView{
			Round:   round,
			Label:   bracket.RoundDisplayText(tournament.Matches, round),
			Matches: structure[round],
		})
	}
	if winnerID := bracket.WinnerTeamID(tournament.Matches); winnerID != nil {
		view.Winner = tournament.TeamByID(*winnerID)
	}
	if runnerUpID := bracket.RunnerUpTeamID(tournament.Matches); runnerUpID != nil {
		view.RunnerUp = tournament.TeamByID(*runnerUpID)
	}
	return view, nil
}

func (s *tournamentService) setStatus(ctx context.Context, tournament *models.Tournament, status models.TournamentStatus) error {
	if err := s.tournamentRepo.Update(ctx, tournament.ID, repositories.TournamentUpdateInput{
		Status: &status,
	}); err != nil {
		return translateRepoError(err)
	}
	tournament.Status = status
	s.logger.Info("tournament status changed",
		slog.String("tournament_id", tournament.ID),
		slog.String("status", string(status)))
	return nil
}

func (s *tournamentService) broadcast(eventType, tournamentID string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(bracket.Event{
		Type:         eventType,
		TournamentID: tournamentID,
		Payload:      payload,
	})
}

// translateRepoError переводит сентинелы хранилища в ошибки сервисного слоя.
func translateRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrPlayerGroupNotFound):
		return ErrGroupNotFound
	}
	return err
}
