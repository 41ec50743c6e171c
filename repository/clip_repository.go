package repository

import (
	"context"
	"fmt"

	"djradar/db"
	"djradar/model"

	"gorm.io/gorm"
)

// ClipRepository defines the interface for clip rows.
type ClipRepository interface {
	// Create inserts the clip and fills in its generated ID and CreatedAt.
	Create(ctx context.Context, clip *model.Clip) error
	Delete(ctx context.Context, userID, clipID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.Clip, error)
	DeleteAllByUser(ctx context.Context, userID int64) error
}

// mysqlClipRepository implements ClipRepository on GORM/MySQL.
type mysqlClipRepository struct {
	db *gorm.DB
}

// NewMySQLClipRepository creates a new instance of mysqlClipRepository.
func NewMySQLClipRepository() ClipRepository {
	return &mysqlClipRepository{db: db.GormDB}
}

func (r *mysqlClipRepository) Create(ctx context.Context, clip *model.Clip) error {
	if err := r.db.WithContext(ctx).Create(clip).Error; err != nil {
		return fmt.Errorf("failed to create clip %q for user %d: %w", clip.Title, clip.UserID, err)
	}
	return nil
}

func (r *mysqlClipRepository) Delete(ctx context.Context, userID, clipID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, clipID).
		Delete(&model.Clip{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete clip %d for user %d: %w", clipID, userID, err)
	}
	return nil
}

func (r *mysqlClipRepository) ListByUser(ctx context.Context, userID int64) ([]model.Clip, error) {
	clips := make([]model.Clip, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&clips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list clips for user %d: %w", userID, err)
	}
	return clips, nil
}

func (r *mysqlClipRepository) DeleteAllByUser(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Clip{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete clips for user %d: %w", userID, err)
	}
	return nil
}
