package bracket

import (
	"fmt"

	"github.com/pongnight/bracket-server/models"
)

// Чистые запросы над списком матчей; персистентность не трогают.

// Structure группирует матчи по раундам, сохраняя порядок следования
// внутри раунда.
func Structure(matches []models.Match) map[int][]models.Match {
	rounds := make(map[int][]models.Match)
	for _, m := range matches {
		rounds[m.Round] = append(rounds[m.Round], m)
	}
	return rounds
}

// MaxRound возвращает номер старшего созданного раунда, 0 без матчей.
func MaxRound(matches []models.Match) int {
	max := 0
	for _, m := range matches {
		if m.Round > max {
			max = m.Round
		}
	}
	return max
}

// IsComplete: все матчи старшего раунда завершены. Турнир без матчей
// не завершён и не имеет победителя.
func IsComplete(matches []models.Match) bool {
	final := MaxRound(matches)
	if final == 0 {
		return false
	}
	for _, m := range matches {
		if m.Round == final && !m.IsComplete {
			return false
		}
	}
	return true
}

// WinnerTeamID выводится из завершённого финального матча: старший раунд
// должен содержать единственный завершённый матч.
func WinnerTeamID(matches []models.Match) *string {
	final := finalMatch(matches)
	if final == nil || !final.IsComplete {
		return nil
	}
	return final.WinnerID
}

// RunnerUpTeamID — проигравшая сторона финала; nil для bye-финала
// и незавершённого турнира.
func RunnerUpTeamID(matches []models.Match) *string {
	final := finalMatch(matches)
	if final == nil || !final.IsComplete || final.IsBye() || final.WinnerID == nil {
		return nil
	}
	if *final.WinnerID == final.Team1ID {
		return final.Team2ID
	}
	loser := final.Team1ID
	return &loser
}

// IsChampionshipRound истинен ровно тогда, когда раунд содержит
// единственный не-bye матч.
func IsChampionshipRound(matches []models.Match, round int) bool {
	count := 0
	for _, m := range matches {
		if m.Round == round && !m.IsBye() {
			count++
		}
	}
	return count == 1
}

// RoundDisplayText подпись раунда для UI.
func RoundDisplayText(matches []models.Match, round int) string {
	if IsChampionshipRound(matches, round) {
		return "Championship Round"
	}
	return fmt.Sprintf("Round %d", round)
}

func finalMatch(matches []models.Match) *models.Match {
	final := MaxRound(matches)
	if final == 0 {
		return nil
	}
	var found *models.Match
	for i := range matches {
		if matches[i].Round != final {
			continue
		}
		if found != nil {
			return nil // старший раунд ещё не сошёлся к одному матчу
		}
		found = &matches[i]
	}
	return found
}
