package models

import "time"

// Team неизменяема после создания внутри турнира.
// Solo выставляется явно: одиночная команда занимает слот сетки при
// нечётном числе игроков, оба Player-поля указывают на одного игрока.
type Team struct {
	ID           string  `json:"id" db:"id"`
	TournamentID *string `json:"tournament_id,omitempty" db:"tournament_id"`
	Player1ID    string  `json:"player1_id" db:"player1_id"`
	Player2ID    string  `json:"player2_id" db:"player2_id"`
	Name         string  `json:"name" db:"name"`
	Solo         bool    `json:"solo" db:"solo"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Player1 *Player `json:"player1,omitempty" db:"-"`
	Player2 *Player `json:"player2,omitempty" db:"-"`
}

// PlayerIDs возвращает участников без дублирования для solo-команды.
func (t *Team) PlayerIDs() []string {
	if t.Solo {
		return []string{t.Player1ID}
	}
	return []string{t.Player1ID, t.Player2ID}
}
