package repository

import (
	"context"
	"fmt"

	"djradar/db"
	"djradar/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavedSetRepository defines the interface for saved set rows.
type SavedSetRepository interface {
	// Save is idempotent per (user_id, video_id); a concurrent duplicate
	// save lands on the unique index and is ignored.
	Save(ctx context.Context, set *model.SavedSet) error
	Delete(ctx context.Context, userID int64, videoID string) error
	ListByUser(ctx context.Context, userID int64) ([]model.SavedSet, error)
	DeleteAllByUser(ctx context.Context, userID int64) error
}

// mysqlSavedSetRepository implements SavedSetRepository on GORM/MySQL.
type mysqlSavedSetRepository struct {
	db *gorm.DB
}

// NewMySQLSavedSetRepository creates a new instance of mysqlSavedSetRepository.
func NewMySQLSavedSetRepository() SavedSetRepository {
	return &mysqlSavedSetRepository{db: db.GormDB}
}

func (r *mysqlSavedSetRepository) Save(ctx context.Context, set *model.SavedSet) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoNothing: true,
		}).
		Create(set).Error
	if err != nil {
		return fmt.Errorf("failed to save set %s for user %d: %w", set.VideoID, set.UserID, err)
	}
	return nil
}

func (r *mysqlSavedSetRepository) Delete(ctx context.Context, userID int64, videoID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Delete(&model.SavedSet{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete saved set %s for user %d: %w", videoID, userID, err)
	}
	return nil
}

func (r *mysqlSavedSetRepository) ListByUser(ctx context.Context, userID int64) ([]model.SavedSet, error) {
	sets := make([]model.SavedSet, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list saved sets for user %d: %w", userID, err)
	}
	return sets, nil
}

func (r *mysqlSavedSetRepository) DeleteAllByUser(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.SavedSet{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete saved sets for user %d: %w", userID, err)
	}
	return nil
}
