package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
// Переходы только вперёд: setup -> active -> completed.
type TournamentStatus string

const (
	StatusSetup     TournamentStatus = "setup"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
)

// Tournament владеет своими командами и матчами: их жизненный цикл
// привязан к турниру. Pot фиксируется при создании.
type Tournament struct {
	ID           string           `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Status       TournamentStatus `json:"status" db:"status"`
	CurrentRound int              `json:"current_round" db:"current_round"`
	BuyIn        float64          `json:"buy_in" db:"buy_in"`
	Pot          float64          `json:"pot" db:"pot"`
	WinnerTeamID *string          `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`

	Teams   []Team  `json:"teams,omitempty" db:"-"`
	Matches []Match `json:"matches,omitempty" db:"-"`
}

// TeamByID ищет команду в загруженной коллекции турнира.
func (t *Tournament) TeamByID(id string) *Team {
	for i := range t.Teams {
		if t.Teams[i].ID == id {
			return &t.Teams[i]
		}
	}
	return nil
}

// MatchByID ищет матч в загруженной коллекции турнира.
func (t *Tournament) MatchByID(id string) *Match {
	for i := range t.Matches {
		if t.Matches[i].ID == id {
			return &t.Matches[i]
		}
	}
	return nil
}
