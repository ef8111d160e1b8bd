package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pongnight/bracket-server/bracket"
	"github.com/pongnight/bracket-server/models"
	"github.com/pongnight/bracket-server/repositories"
	"github.com/pongnight/bracket-server/storage"
)

type CreatePlayerInput struct {
	Name     string        `json:"name"`
	Nickname *string       `json:"nickname,omitempty"`
	Gender   models.Gender `json:"gender"`
}

type UpdatePlayerInput struct {
	Name     *string        `json:"name,omitempty"`
	Nickname *string        `json:"nickname,omitempty"`
	Gender   *models.Gender `json:"gender,omitempty"`
}

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	UpdatePlayer(ctx context.Context, id string, input UpdatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id string) error
	UploadAvatar(ctx context.Context, id string, contentType string, r io.Reader) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader, logger *slog.Logger) PlayerService {
	return &playerService{playerRepo: playerRepo, uploader: uploader, logger: logger}
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrPlayerNameRequired
	}
	if input.Gender != models.GenderMale && input.Gender != models.GenderFemale {
		return nil, ErrInvalidGender
	}

	player := &models.Player{
		ID:       bracket.NewID(),
		Name:     strings.TrimSpace(input.Name),
		Nickname: input.Nickname,
		Gender:   input.Gender,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	s.populateAvatarURL(player)
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		s.populateAvatarURL(p)
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id string, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrPlayerNameRequired
		}
		player.Name = strings.TrimSpace(*input.Name)
	}
	if input.Nickname != nil {
		player.Nickname = input.Nickname
	}
	if input.Gender != nil {
		if *input.Gender != models.GenderMale && *input.Gender != models.GenderFemale {
			return nil, ErrInvalidGender
		}
		player.Gender = *input.Gender
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, translateRepoError(err)
	}
	s.populateAvatarURL(player)
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id string) error {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return translateRepoError(err)
	}

	if err := s.playerRepo.Delete(ctx, id); err != nil {
		return translateRepoError(err)
	}

	// Уборка аватара best-effort: игрок уже удалён, ошибка хранилища файлов
	// не должна проваливать операцию.
	if player.AvatarKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *player.AvatarKey); err != nil {
			s.logger.Warn("failed to delete player avatar",
				slog.String("player_id", id),
				slog.String("key", *player.AvatarKey),
				slog.Any("error", err))
		}
	}
	return nil
}

func (s *playerService) UploadAvatar(ctx context.Context, id string, contentType string, r io.Reader) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}

	if s.uploader == nil {
		return nil, ErrAvatarStorageDisabled
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	oldKey := player.AvatarKey
	key := fmt.Sprintf("avatars/players/%s%s", player.ID, ext)

	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return nil, err
	}

	player.AvatarKey = &result.Key
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, translateRepoError(err)
	}

	if oldKey != nil && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous avatar",
				slog.String("player_id", id),
				slog.String("key", *oldKey),
				slog.Any("error", err))
		}
	}

	s.populateAvatarURL(player)
	return player, nil
}

func (s *playerService) populateAvatarURL(player *models.Player) {
	if player == nil || player.AvatarKey == nil || *player.AvatarKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*player.AvatarKey); url != "" {
		player.AvatarURL = &url
	}
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("unsupported avatar content type: %q", contentType)
	}
}
