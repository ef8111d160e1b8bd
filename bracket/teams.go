package bracket

import (
	"errors"
	"fmt"

	"github.com/pongnight/bracket-server/models"
)

// PairingMode определяет политику разбиения игроков на команды.
type PairingMode string

const (
	PairingRandom   PairingMode = "random"
	PairingByGender PairingMode = "gender"
)

var (
	ErrInsufficientPlayers = errors.New("at least 2 players are required to form teams")
	ErrInsufficientTeams   = errors.New("at least 2 teams are required to generate a bracket")
	ErrUnbalancedRoster    = errors.New("gender pairing requires players of both genders")
	ErrUnknownPairingMode  = errors.New("unknown pairing mode")
)

// GenerateTeams разбивает игроков на пары по выбранной политике.
//
// PairingRandom: равномерная тасовка, последовательные пары. При нечётном
// числе последний игрок становится solo-командой, занимающей bye-слот сетки.
//
// PairingByGender: партиции по полу тасуются независимо и спариваются
// поэлементно до min(m, f); остаток большей партиции спаривается между собой.
// Одиночный финальный остаток становится solo-командой — игрок не выпадает
// из турнира молча.
func GenerateTeams(players []models.Player, mode PairingMode) ([]models.Team, error) {
	if len(players) < 2 {
		return nil, ErrInsufficientPlayers
	}

	switch mode {
	case PairingRandom:
		return pairRandom(players), nil
	case PairingByGender:
		return pairByGender(players)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPairingMode, mode)
	}
}

func pairRandom(players []models.Player) []models.Team {
	pool := shuffled(players)

	teams := make([]models.Team, 0, (len(pool)+1)/2)
	for i := 0; i+1 < len(pool); i += 2 {
		teams = append(teams, newPairTeam(pool[i], pool[i+1]))
	}
	if len(pool)%2 != 0 {
		teams = append(teams, newSoloTeam(pool[len(pool)-1]))
	}
	return teams
}

func pairByGender(players []models.Player) ([]models.Team, error) {
	var males, females []models.Player
	for _, p := range players {
		if p.Gender == models.GenderFemale {
			females = append(females, p)
		} else {
			males = append(males, p)
		}
	}
	if len(males) == 0 || len(females) == 0 {
		return nil, ErrUnbalancedRoster
	}

	males = shuffled(males)
	females = shuffled(females)

	n := len(males)
	if len(females) < n {
		n = len(females)
	}

	teams := make([]models.Team, 0, (len(players)+1)/2)
	for i := 0; i < n; i++ {
		teams = append(teams, newPairTeam(males[i], females[i]))
	}

	// Остаток большей партиции спаривается последовательно внутри себя.
	leftovers := append(males[n:], females[n:]...)
	for i := 0; i+1 < len(leftovers); i += 2 {
		teams = append(teams, newPairTeam(leftovers[i], leftovers[i+1]))
	}
	if len(leftovers)%2 != 0 {
		teams = append(teams, newSoloTeam(leftovers[len(leftovers)-1]))
	}
	return teams, nil
}

func newPairTeam(p1, p2 models.Player) models.Team {
	return models.Team{
		ID:        NewID(),
		Player1ID: p1.ID,
		Player2ID: p2.ID,
		Name:      p1.DisplayName() + " & " + p2.DisplayName(),
	}
}

func newSoloTeam(p models.Player) models.Team {
	return models.Team{
		ID:        NewID(),
		Player1ID: p.ID,
		Player2ID: p.ID,
		Name:      p.DisplayName(),
		Solo:      true,
	}
}
