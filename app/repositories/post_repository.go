package repositories

import (
	"context"

	"postboard/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPostRepository implements PostRepository using gorm
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// Create inserts a new post. Associations are never upserted.
func (r *GormPostRepository) Create(ctx context.Context, post *models.Post) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
}

// GetByID retrieves a post by ID with its author and group
func (r *GormPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &post, nil
}

// GetByAuthor resolves a post by its author's username and its ID
func (r *GormPostRepository) GetByAuthor(ctx context.Context, username string, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = posts.author_id").
		Where("posts.id = ? AND users.username = ?", id, username).
		Preload("Author").
		Preload("Group").
		First(&post).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &post, nil
}

// List retrieves a page of posts, newest first
func (r *GormPostRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.filtered(ctx, filter).
		Preload("Author").
		Preload("Group").
		Order("posts.pub_date DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, translateError(err)
	}
	return posts, nil
}

// Count returns how many posts match filter
func (r *GormPostRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var n int64
	if err := r.filtered(ctx, filter).Count(&n).Error; err != nil {
		return 0, translateError(err)
	}
	return n, nil
}

func (r *GormPostRepository) filtered(ctx context.Context, filter PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if filter.AuthorID != nil {
		q = q.Where("posts.author_id = ?", *filter.AuthorID)
	}
	if filter.GroupID != nil {
		q = q.Where("posts.group_id = ?", *filter.GroupID)
	}
	if filter.FollowerID != nil {
		followed := r.db.WithContext(ctx).
			Model(&models.Follow{}).
			Select("author_id").
			Where("user_id = ?", *filter.FollowerID)
		q = q.Where("posts.author_id IN (?)", followed)
	}
	return q
}

// Update writes the editable fields of post. pub_date and author never change.
func (r *GormPostRepository) Update(ctx context.Context, post *models.Post) error {
	result := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post. Its comments are kept with the post reference cleared.
func (r *GormPostRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
