package services

import (
	"context"
	"errors"
	"fmt"

	"postboard/app/models"
	"postboard/app/pagination"
	"postboard/app/repositories"
	"postboard/app/storage"

	"go.uber.org/zap"
)

// PostInput is a validated post submission.
type PostInput struct {
	Text       string
	GroupID    *uint
	Image      *storage.Upload
	ClearImage bool
}

// PostService handles business logic for posts
type PostService struct {
	postRepo repositories.PostRepository
	media    storage.MediaStore
	logger   *zap.Logger
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, media storage.MediaStore, logger *zap.Logger) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{
		postRepo: postRepo,
		media:    media,
		logger:   logger,
	}
}

// postSource adapts a filtered post listing to pagination.Source.
type postSource struct {
	repo   repositories.PostRepository
	filter repositories.PostFilter
}

func (s postSource) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, s.filter)
}

func (s postSource) Slice(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.repo.List(ctx, s.filter, limit, offset)
}

func (s *PostService) page(ctx context.Context, filter repositories.PostFilter, perPage int, rawPage string) (*pagination.Page[*models.Post], error) {
	page, err := pagination.Get[*models.Post](ctx, postSource{repo: s.postRepo, filter: filter}, perPage, rawPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return page, nil
}

// ListAll returns a page of every post, newest first.
func (s *PostService) ListAll(ctx context.Context, perPage int, rawPage string) (*pagination.Page[*models.Post], error) {
	return s.page(ctx, repositories.PostFilter{}, perPage, rawPage)
}

// ListByGroup returns a page of the posts filed under a group.
func (s *PostService) ListByGroup(ctx context.Context, groupID uint, perPage int, rawPage string) (*pagination.Page[*models.Post], error) {
	return s.page(ctx, repositories.PostFilter{GroupID: &groupID}, perPage, rawPage)
}

// ListByAuthor returns a page of one author's posts.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint, perPage int, rawPage string) (*pagination.Page[*models.Post], error) {
	return s.page(ctx, repositories.PostFilter{AuthorID: &authorID}, perPage, rawPage)
}

// Feed returns a page of posts by the authors followerID follows.
func (s *PostService) Feed(ctx context.Context, followerID uint, perPage int, rawPage string) (*pagination.Page[*models.Post], error) {
	return s.page(ctx, repositories.PostFilter{FollowerID: &followerID}, perPage, rawPage)
}

// CountByAuthor returns how many posts an author has written.
func (s *PostService) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.postRepo.Count(ctx, repositories.PostFilter{AuthorID: &authorID})
}

// Get resolves a post by its author's username and its id.
func (s *PostService) Get(ctx context.Context, username string, id uint) (*models.Post, error) {
	return s.postRepo.GetByAuthor(ctx, username, id)
}

// Create publishes a new post by author. Any author in the input is ignored.
func (s *PostService) Create(ctx context.Context, author *models.User, in PostInput) (*models.Post, error) {
	if author == nil || author.ID == 0 {
		return nil, ErrForbidden
	}

	post := &models.Post{Text: in.Text, GroupID: in.GroupID}
	if err := post.SetAuthor(author); err != nil {
		return nil, err
	}
	if in.Image != nil {
		key, err := s.media.Save(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = key
	}

	if err := post.BeforeCreate(nil); err != nil {
		return nil, err
	}
	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("invalid post: %w", err)
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Info("Post created",
		zap.Uint("post_id", post.ID),
		zap.String("author", author.Username),
	)
	return post, nil
}

// Update edits post in place on behalf of editor. The publication date and
// author never change; the image is kept unless replaced or cleared.
func (s *PostService) Update(ctx context.Context, editor *models.User, post *models.Post, in PostInput) error {
	if !post.IsAuthoredBy(editor) {
		return ErrForbidden
	}

	previous := post.Image
	post.Text = in.Text
	post.GroupID = in.GroupID
	post.Group = nil
	switch {
	case in.Image != nil:
		key, err := s.media.Save(ctx, in.Image)
		if err != nil {
			return err
		}
		post.Image = key
	case in.ClearImage:
		post.Image = ""
	}

	if err := post.Validate(); err != nil {
		return fmt.Errorf("invalid post: %w", err)
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return err
	}
	if previous != post.Image {
		s.dropImage(ctx, previous)
	}
	return nil
}

// Delete removes a post and its image. Comments on it stay, detached.
func (s *PostService) Delete(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.dropImage(ctx, post.Image)
	s.logger.Info("Post deleted", zap.Uint("post_id", id))
	return post, nil
}

// dropImage removes an image that no post refers to any more. Failures are
// logged; the post change has already been stored.
func (s *PostService) dropImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("Failed to delete image", zap.String("key", key), zap.Error(err))
	}
}
