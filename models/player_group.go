package models

import "time"

// PlayerGroup именованный упорядоченный набор игроков; используется только
// как источник списка при создании турнира, в логику матчей не входит.
type PlayerGroup struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	PlayerIDs []string  `json:"player_ids" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
