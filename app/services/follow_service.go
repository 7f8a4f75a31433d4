package services

import (
	"context"
	"errors"

	"postboard/app/models"
	"postboard/app/repositories"

	"go.uber.org/zap"
)

// FollowService manages follow edges between users
type FollowService struct {
	followRepo repositories.FollowRepository
	logger     *zap.Logger
}

// NewFollowService creates a new FollowService
func NewFollowService(followRepo repositories.FollowRepository, logger *zap.Logger) *FollowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowService{followRepo: followRepo, logger: logger}
}

// Follow makes user follow author. Following yourself or someone you already
// follow does nothing.
func (s *FollowService) Follow(ctx context.Context, user, author *models.User) error {
	follow, err := models.NewFollow(user, author)
	if errors.Is(err, models.ErrSelfFollow) {
		return nil
	}
	if err != nil {
		return err
	}

	exists, err := s.followRepo.Exists(ctx, user.ID, author.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	// A concurrent request may insert the same edge between Exists and Create.
	if err := s.followRepo.Create(ctx, follow); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			s.logger.Debug("Follow edge already exists",
				zap.Uint("user_id", user.ID),
				zap.Uint("author_id", author.ID),
			)
			return nil
		}
		return err
	}
	return nil
}

// Unfollow removes the edge from user to author, if there is one.
func (s *FollowService) Unfollow(ctx context.Context, user, author *models.User) error {
	_, err := s.followRepo.Delete(ctx, user.ID, author.ID)
	return err
}

// IsFollowing reports whether user follows author. Anonymous users follow no one.
func (s *FollowService) IsFollowing(ctx context.Context, user, author *models.User) (bool, error) {
	if user == nil || user.ID == 0 {
		return false, nil
	}
	return s.followRepo.Exists(ctx, user.ID, author.ID)
}

// Counts returns how many users follow author and how many authors they follow.
func (s *FollowService) Counts(ctx context.Context, author *models.User) (followers, following int64, err error) {
	followers, err = s.followRepo.CountFollowers(ctx, author.ID)
	if err != nil {
		return 0, 0, err
	}
	following, err = s.followRepo.CountFollowing(ctx, author.ID)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
