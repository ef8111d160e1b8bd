package bracket

import (
	"github.com/pongnight/bracket-server/models"
)

// GenerateBracket строит первый раунд single elimination сетки.
// Команды тасуются равномерно; при нечётном числе одна команда получает bye
// (выбирается равновероятно) — такой матч создаётся сразу завершённым
// с winner = team1. Остальные спариваются последовательно.
func GenerateBracket(tournamentID string, teams []models.Team) ([]models.Match, error) {
	if len(teams) < 2 {
		return nil, ErrInsufficientTeams
	}

	pool := shuffled(teams)

	matches := make([]models.Match, 0, (len(pool)+1)/2)
	if len(pool)%2 != 0 {
		byeIdx := intN(len(pool))
		matches = append(matches, newByeMatch(tournamentID, 1, pool[byeIdx]))
		pool = append(pool[:byeIdx], pool[byeIdx+1:]...)
	}

	for i := 0; i+1 < len(pool); i += 2 {
		matches = append(matches, newMatch(tournamentID, 1, pool[i], pool[i+1]))
	}
	return matches, nil
}

func newMatch(tournamentID string, round int, t1, t2 models.Team) models.Match {
	t2ID := t2.ID
	return models.Match{
		ID:           NewID(),
		TournamentID: tournamentID,
		Team1ID:      t1.ID,
		Team2ID:      &t2ID,
		Round:        round,
	}
}

func newByeMatch(tournamentID string, round int, t models.Team) models.Match {
	winnerID := t.ID
	return models.Match{
		ID:           NewID(),
		TournamentID: tournamentID,
		Team1ID:      t.ID,
		Round:        round,
		IsComplete:   true,
		WinnerID:     &winnerID,
	}
}
