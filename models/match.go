package models

import "time"

// Match: Team2ID == nil означает bye — матч создаётся сразу завершённым
// с WinnerID = Team1ID и никогда не принимает счёт от пользователя.
type Match struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	Team1ID      string    `json:"team1_id" db:"team1_id"`
	Team2ID      *string   `json:"team2_id,omitempty" db:"team2_id"`
	Score1       int       `json:"score1" db:"score1"`
	Score2       int       `json:"score2" db:"score2"`
	Round        int       `json:"round" db:"round"`
	IsComplete   bool      `json:"is_complete" db:"is_complete"`
	WinnerID     *string   `json:"winner_id,omitempty" db:"winner_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsBye сообщает, является ли матч автоматическим проходом.
func (m *Match) IsBye() bool {
	return m.Team2ID == nil
}

// Differential абсолютная разница счёта; сигнал для назначения bye
// в следующем раунде.
func (m *Match) Differential() int {
	d := m.Score1 - m.Score2
	if d < 0 {
		return -d
	}
	return d
}
