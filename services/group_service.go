package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pongnight/bracket-server/bracket"
	"github.com/pongnight/bracket-server/models"
	"github.com/pongnight/bracket-server/repositories"
)

type GroupInput struct {
	Name      string   `json:"name"`
	PlayerIDs []string `json:"player_ids"`
}

// GroupService именованные подборки игроков для быстрого старта турнира.
// В логике матчей группы не участвуют.
type GroupService interface {
	CreateGroup(ctx context.Context, input GroupInput) (*models.PlayerGroup, error)
	GetGroup(ctx context.Context, id string) (*models.PlayerGroup, error)
	ListGroups(ctx context.Context) ([]*models.PlayerGroup, error)
	UpdateGroup(ctx context.Context, id string, input GroupInput) (*models.PlayerGroup, error)
	DeleteGroup(ctx context.Context, id string) error
}

type groupService struct {
	groupRepo  repositories.PlayerGroupRepository
	playerRepo repositories.PlayerRepository
}

func NewGroupService(groupRepo repositories.PlayerGroupRepository, playerRepo repositories.PlayerRepository) GroupService {
	return &groupService{groupRepo: groupRepo, playerRepo: playerRepo}
}

func (s *groupService) CreateGroup(ctx context.Context, input GroupInput) (*models.PlayerGroup, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	group := &models.PlayerGroup{
		ID:        bracket.NewID(),
		Name:      strings.TrimSpace(input.Name),
		PlayerIDs: input.PlayerIDs,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, translateRepoError(err)
	}
	return group, nil
}

func (s *groupService) GetGroup(ctx context.Context, id string) (*models.PlayerGroup, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return group, nil
}

func (s *groupService) ListGroups(ctx context.Context) ([]*models.PlayerGroup, error) {
	return s.groupRepo.List(ctx)
}

func (s *groupService) UpdateGroup(ctx context.Context, id string, input GroupInput) (*models.PlayerGroup, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	group := &models.PlayerGroup{
		ID:        id,
		Name:      strings.TrimSpace(input.Name),
		PlayerIDs: input.PlayerIDs,
	}
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, translateRepoError(err)
	}
	return s.GetGroup(ctx, id)
}

func (s *groupService) DeleteGroup(ctx context.Context, id string) error {
	return translateRepoError(s.groupRepo.Delete(ctx, id))
}

func (s *groupService) validate(ctx context.Context, input GroupInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrGroupNameRequired
	}

	players, err := s.playerRepo.ListByIDs(ctx, input.PlayerIDs)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(players))
	for _, p := range players {
		known[p.ID] = true
	}
	for _, id := range input.PlayerIDs {
		if !known[id] {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
		}
	}
	return nil
}
