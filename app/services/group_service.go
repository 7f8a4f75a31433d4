package services

import (
	"context"
	"errors"
	"fmt"

	"postboard/app/models"
	"postboard/app/repositories"
)

// GroupService manages post categories
type GroupService struct {
	groupRepo repositories.GroupRepository
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo repositories.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// Create adds a group.
func (s *GroupService) Create(ctx context.Context, title, slug, description string) (*models.Group, error) {
	group := &models.Group{Title: title, Slug: slug, Description: description}
	if err := group.Validate(); err != nil {
		return nil, fmt.Errorf("invalid group: %w", err)
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return group, nil
}

// GetByID retrieves a group by ID
func (s *GroupService) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	return s.groupRepo.GetByID(ctx, id)
}

// GetBySlug retrieves a group by slug
func (s *GroupService) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.groupRepo.GetBySlug(ctx, slug)
}

// List returns every group
func (s *GroupService) List(ctx context.Context) ([]*models.Group, error) {
	return s.groupRepo.List(ctx)
}

// Delete removes the group with slug. Its posts become ungrouped.
func (s *GroupService) Delete(ctx context.Context, slug string) error {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.groupRepo.Delete(ctx, group.ID)
}
