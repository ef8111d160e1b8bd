package services

import (
	"context"
	"log/slog"

	"github.com/pongnight/bracket-server/repositories"
)

// StatsService пересчитывает статистику игроков пакетно; независим от
// жизненного цикла турнира и применим для ремонта и сброса.
type StatsService interface {
	// ResetPlayerStatistics обнуляет win/loss всех игроков.
	ResetPlayerStatistics(ctx context.Context) error
	// FixPlayerStatistics пересчитывает win/loss с нуля, проигрывая все
	// завершённые не-bye матчи всех турниров. Полная перезапись: повторный
	// запуск даёт те же итоги.
	FixPlayerStatistics(ctx context.Context) error
}

type statsService struct {
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	matchRepo  repositories.MatchRepository
	logger     *slog.Logger
}

func NewStatsService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		matchRepo:  matchRepo,
		logger:     logger,
	}
}

func (s *statsService) ResetPlayerStatistics(ctx context.Context) error {
	if err := s.playerRepo.ResetAllStats(ctx); err != nil {
		return err
	}
	s.logger.Warn("player statistics reset to zero")
	return nil
}

func (s *statsService) FixPlayerStatistics(ctx context.Context) error {
	matches, err := s.matchRepo.ListAllCompleted(ctx)
	if err != nil {
		return err
	}
	teams, err := s.teamRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	teamByID := make(map[string][]string, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t.PlayerIDs()
	}

	type tally struct{ wins, losses int }
	totals := make(map[string]*tally)
	bump := func(playerID string, won bool) {
		t, ok := totals[playerID]
		if !ok {
			t = &tally{}
			totals[playerID] = t
		}
		if won {
			t.wins++
		} else {
			t.losses++
		}
	}

	for _, m := range matches {
		if m.WinnerID == nil || m.Team2ID == nil {
			continue
		}
		loserTeamID := m.Team1ID
		if *m.WinnerID == m.Team1ID {
			loserTeamID = *m.Team2ID
		}
		for _, id := range teamByID[*m.WinnerID] {
			bump(id, true)
		}
		for _, id := range teamByID[loserTeamID] {
			bump(id, false)
		}
	}

	// Итог пишется каждому известному игроку ровно один раз; не игравшие
	// обнуляются — перезапись, а не слияние.
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range players {
		var wins, losses int
		if t, ok := totals[p.ID]; ok {
			wins, losses = t.wins, t.losses
		}
		if err := s.playerRepo.UpdateStats(ctx, p.ID, wins, losses); err != nil {
			return translateRepoError(err)
		}
	}

	s.logger.Info("player statistics recomputed",
		slog.Int("players", len(players)),
		slog.Int("replayed_matches", len(matches)))
	return nil
}
