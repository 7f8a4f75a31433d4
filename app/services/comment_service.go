package services

import (
	"context"
	"fmt"

	"postboard/app/models"
	"postboard/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

// Add stores a comment by author on post.
func (s *CommentService) Add(ctx context.Context, author *models.User, post *models.Post, text string) (*models.Comment, error) {
	if author == nil || author.ID == 0 {
		return nil, ErrForbidden
	}

	comment := &models.Comment{Text: text}
	if err := comment.SetPost(post); err != nil {
		return nil, err
	}
	if err := comment.SetAuthor(author); err != nil {
		return nil, err
	}
	if err := comment.Validate(); err != nil {
		return nil, fmt.Errorf("invalid comment: %w", err)
	}

	comment.Post = nil
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListForPost returns the comments on a post, most recent first.
func (s *CommentService) ListForPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}

// Delete removes a comment, for moderation.
func (s *CommentService) Delete(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return comment, nil
}
