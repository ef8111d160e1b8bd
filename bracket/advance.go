package bracket

import (
	"github.com/pongnight/bracket-server/models"
)

// GenerateRoundMatches строит матчи очередного раунда из прошедших команд.
//
// При нечётном числе команд bye получает победитель матча прошлого раунда
// с наибольшей разницей счёта (доминирующая игра вознаграждается); равные
// разницы разрешаются порядком следования матчей, byes прошлого раунда не
// участвуют. Если подходящего матча нет, bye достаётся последней команде
// списка. Остальные команды тасуются и спариваются последовательно.
func GenerateRoundMatches(tournamentID string, advancing []models.Team, round int, prevMatches []models.Match) []models.Match {
	if len(advancing) < 2 {
		return nil
	}

	matches := make([]models.Match, 0, (len(advancing)+1)/2)
	pool := advancing

	if len(pool)%2 != 0 {
		byeIdx := pickByeIndex(pool, prevMatches)
		matches = append(matches, newByeMatch(tournamentID, round, pool[byeIdx]))

		trimmed := make([]models.Team, 0, len(pool)-1)
		trimmed = append(trimmed, pool[:byeIdx]...)
		trimmed = append(trimmed, pool[byeIdx+1:]...)
		pool = trimmed
	}

	pool = shuffled(pool)
	for i := 0; i+1 < len(pool); i += 2 {
		matches = append(matches, newMatch(tournamentID, round, pool[i], pool[i+1]))
	}
	return matches
}

// pickByeIndex возвращает индекс команды, получающей bye.
func pickByeIndex(advancing []models.Team, prevMatches []models.Match) int {
	indexByTeam := make(map[string]int, len(advancing))
	for i, t := range advancing {
		indexByTeam[t.ID] = i
	}

	bestIdx := -1
	bestDiff := -1
	for _, m := range prevMatches {
		if m.IsBye() || !m.IsComplete || m.WinnerID == nil {
			continue
		}
		idx, stillIn := indexByTeam[*m.WinnerID]
		if !stillIn {
			continue
		}
		// Строгое сравнение сохраняет порядок следования при равных разницах.
		if d := m.Differential(); d > bestDiff {
			bestDiff = d
			bestIdx = idx
		}
	}

	if bestIdx >= 0 {
		return bestIdx
	}
	return len(advancing) - 1
}
