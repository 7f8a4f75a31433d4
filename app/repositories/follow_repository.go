package repositories

import (
	"context"

	"postboard/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFollowRepository implements FollowRepository using gorm
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GormFollowRepository
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Create inserts the edge. The (user_id, author_id) unique index rejects duplicates.
func (r *GormFollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(follow).Error)
}

// Exists reports whether userID follows authorID
func (r *GormFollowRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	if err != nil {
		return false, translateError(err)
	}
	return n > 0, nil
}

// Delete removes the edge between userID and authorID, if any
func (r *GormFollowRepository) Delete(ctx context.Context, userID, authorID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

// CountFollowers returns how many users follow authorID
func (r *GormFollowRepository) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, translateError(err)
}

// CountFollowing returns how many authors userID follows
func (r *GormFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("user_id = ?", userID).Count(&n).Error
	return n, translateError(err)
}
