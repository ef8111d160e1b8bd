package bracket

import (
	"fmt"
	"testing"

	"github.com/pongnight/bracket-server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// disableShuffle заставляет жеребьёвку идти в порядке добавления на время теста.
func disableShuffle(t *testing.T) {
	t.Helper()
	origShuffle := shuffleFn
	origIntN := intN
	shuffleFn = func(n int, swap func(i, j int)) {}
	intN = func(n int) int { return 0 }
	t.Cleanup(func() {
		shuffleFn = origShuffle
		intN = origIntN
	})
}

func makePlayers(n int, gender models.Gender) []models.Player {
	players := make([]models.Player, n)
	for i := range players {
		players[i] = models.Player{
			ID:     fmt.Sprintf("%s-%d", gender, i+1),
			Name:   fmt.Sprintf("Player %s %d", gender, i+1),
			Gender: gender,
		}
	}
	return players
}

// memberCounts считает, сколько командных слотов занимает каждый игрок;
// одиночная команда считается одним слотом.
func memberCounts(teams []models.Team) map[string]int {
	counts := make(map[string]int)
	for _, team := range teams {
		for _, id := range team.PlayerIDs() {
			counts[id]++
		}
	}
	return counts
}

func TestGenerateTeamsInsufficientPlayers(t *testing.T) {
	_, err := GenerateTeams(nil, PairingRandom)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)

	_, err = GenerateTeams(makePlayers(1, models.GenderMale), PairingRandom)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
}

func TestGenerateTeamsUnknownMode(t *testing.T) {
	_, err := GenerateTeams(makePlayers(4, models.GenderMale), PairingMode("swiss"))
	assert.ErrorIs(t, err, ErrUnknownPairingMode)
}

func TestGenerateTeamsRandomEvenCount(t *testing.T) {
	players := makePlayers(8, models.GenderMale)

	teams, err := GenerateTeams(players, PairingRandom)
	require.NoError(t, err)
	require.Len(t, teams, 4)

	counts := memberCounts(teams)
	for _, p := range players {
		assert.Equal(t, 1, counts[p.ID], "player %s must be on exactly one team", p.ID)
	}
	for _, team := range teams {
		assert.False(t, team.Solo)
		assert.NotEmpty(t, team.ID)
	}
}

func TestGenerateTeamsRandomOddCountCreatesSolo(t *testing.T) {
	players := makePlayers(7, models.GenderMale)

	teams, err := GenerateTeams(players, PairingRandom)
	require.NoError(t, err)
	require.Len(t, teams, 4)

	soloCount := 0
	for _, team := range teams {
		if team.Solo {
			soloCount++
			assert.Equal(t, team.Player1ID, team.Player2ID)
		}
	}
	assert.Equal(t, 1, soloCount)

	counts := memberCounts(teams)
	for _, p := range players {
		assert.Equal(t, 1, counts[p.ID])
	}
}

func TestGenerateTeamsUniqueIDs(t *testing.T) {
	teams, err := GenerateTeams(makePlayers(10, models.GenderMale), PairingRandom)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, team := range teams {
		assert.False(t, seen[team.ID], "duplicate team id %s", team.ID)
		seen[team.ID] = true
	}
}

func TestGenerateTeamsPairName(t *testing.T) {
	disableShuffle(t)

	nick := "Ace"
	players := []models.Player{
		{ID: "p1", Name: "Alice", Gender: models.GenderFemale},
		{ID: "p2", Name: "Bob", Nickname: &nick, Gender: models.GenderMale},
	}

	teams, err := GenerateTeams(players, PairingRandom)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Alice & Ace", teams[0].Name)
}

func TestGenerateTeamsByGenderUnbalanced(t *testing.T) {
	_, err := GenerateTeams(makePlayers(4, models.GenderMale), PairingByGender)
	assert.ErrorIs(t, err, ErrUnbalancedRoster)

	_, err = GenerateTeams(makePlayers(4, models.GenderFemale), PairingByGender)
	assert.ErrorIs(t, err, ErrUnbalancedRoster)
}

func TestGenerateTeamsByGenderBalanced(t *testing.T) {
	players := append(makePlayers(4, models.GenderMale), makePlayers(4, models.GenderFemale)...)

	teams, err := GenerateTeams(players, PairingByGender)
	require.NoError(t, err)
	require.Len(t, teams, 4)

	counts := memberCounts(teams)
	for _, p := range players {
		assert.Equal(t, 1, counts[p.ID])
	}

	genders := make(map[string]models.Gender, len(players))
	for _, p := range players {
		genders[p.ID] = p.Gender
	}
	for _, team := range teams {
		assert.NotEqual(t, genders[team.Player1ID], genders[team.Player2ID],
			"balanced roster must pair cross-gender")
	}
}

func TestGenerateTeamsByGenderLeftoversPairedWithinPartition(t *testing.T) {
	disableShuffle(t)

	players := append(makePlayers(5, models.GenderMale), makePlayers(1, models.GenderFemale)...)

	teams, err := GenerateTeams(players, PairingByGender)
	require.NoError(t, err)
	// 1 смешанная пара, 4 оставшихся мужчины -> 2 мужские пары.
	require.Len(t, teams, 3)

	counts := memberCounts(teams)
	for _, p := range players {
		assert.Equal(t, 1, counts[p.ID])
	}
	for _, team := range teams {
		assert.False(t, team.Solo)
	}
}

func TestGenerateTeamsByGenderSingleLeftoverBecomesSolo(t *testing.T) {
	disableShuffle(t)

	players := append(makePlayers(4, models.GenderMale), makePlayers(1, models.GenderFemale)...)

	teams, err := GenerateTeams(players, PairingByGender)
	require.NoError(t, err)
	// 1 смешанная пара, 3 оставшихся мужчины -> пара + одиночка.
	require.Len(t, teams, 3)

	soloCount := 0
	for _, team := range teams {
		if team.Solo {
			soloCount++
		}
	}
	assert.Equal(t, 1, soloCount)

	counts := memberCounts(teams)
	for _, p := range players {
		assert.Equal(t, 1, counts[p.ID], "no player may be silently dropped")
	}
}
