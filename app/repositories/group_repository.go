package repositories

import (
	"context"

	"postboard/app/models"

	"gorm.io/gorm"
)

// GormGroupRepository implements GroupRepository using gorm
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GormGroupRepository
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

// Create inserts a new group; a taken slug yields ErrDuplicate
func (r *GormGroupRepository) Create(ctx context.Context, group *models.Group) error {
	return translateError(r.db.WithContext(ctx).Create(group).Error)
}

// GetByID retrieves a group by ID
func (r *GormGroupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &group, nil
}

// GetBySlug retrieves a group by slug
func (r *GormGroupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, translateError(err)
	}
	return &group, nil
}

// List returns all groups ordered by title
func (r *GormGroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	var groups []*models.Group
	if err := r.db.WithContext(ctx).Order("title").Order("id").Find(&groups).Error; err != nil {
		return nil, translateError(err)
	}
	return groups, nil
}

// Delete removes a group. Posts filed under it stay, ungrouped.
func (r *GormGroupRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Group{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
