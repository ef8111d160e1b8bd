package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
// Ошибки формирования команд и сетки (InsufficientPlayers, InsufficientTeams,
// UnbalancedRoster) объявлены в пакете bracket и пробрасываются как есть.
var (
	// Ошибки валидации и бизнес-правил
	ErrTiedScore              = errors.New("a completed match must have a strict winner")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrPlayerNameRequired     = errors.New("player name is required")
	ErrGroupNameRequired      = errors.New("group name is required")
	ErrNegativeBuyIn          = errors.New("buy-in must not be negative")
	ErrNegativeScore          = errors.New("scores must not be negative")
	ErrInvalidGender          = errors.New("invalid gender category")
	ErrByeMatchImmutable      = errors.New("a bye match does not accept score submissions")
	ErrMatchAlreadyComplete   = errors.New("match has already been finalized")
	ErrMatchNotInTournament   = errors.New("match does not belong to the tournament")
	ErrTournamentOver         = errors.New("tournament has already been completed")

	// Ошибки аутентификации
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Загрузка аватаров недоступна без настроенного объектного хранилища.
	ErrAvatarStorageDisabled = errors.New("avatar storage is not configured")

	// Ошибки, специфичные для сущностей
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrGroupNotFound      = errors.New("player group not found")
)
