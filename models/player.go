package models

import "time"

// Gender категория игрока, соответствует ENUM в БД.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Player персистентен независимо от турниров; команды и матчи держат
// невладеющие ссылки на него.
type Player struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Nickname  *string   `json:"nickname,omitempty" db:"nickname"`
	Gender    Gender    `json:"gender" db:"gender"`
	Wins      int       `json:"wins" db:"wins"`
	Losses    int       `json:"losses" db:"losses"`
	Winnings  float64   `json:"winnings" db:"winnings"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`
}

// DisplayName предпочитает никнейм, если он задан.
func (p *Player) DisplayName() string {
	if p.Nickname != nil && *p.Nickname != "" {
		return *p.Nickname
	}
	return p.Name
}
