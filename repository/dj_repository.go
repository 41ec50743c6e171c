package repository

import (
	"context"
	"fmt"

	"djradar/db"
	"djradar/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DJRepository defines the interface for the shared djs table.
type DJRepository interface {
	// EnsureDJ returns the row for the canonical name, creating it if
	// missing. Concurrent callers converge on the same row via the
	// unique index on name.
	EnsureDJ(ctx context.Context, name string, imageURL *string) (*model.DJ, error)
	UpdateImageURL(ctx context.Context, djID int64, imageURL string) error
}

// mysqlDJRepository implements DJRepository on GORM/MySQL.
type mysqlDJRepository struct {
	db *gorm.DB
}

// NewMySQLDJRepository creates a new instance of mysqlDJRepository.
func NewMySQLDJRepository() DJRepository {
	return &mysqlDJRepository{db: db.GormDB}
}

func (r *mysqlDJRepository) EnsureDJ(ctx context.Context, name string, imageURL *string) (*model.DJ, error) {
	canonical := model.CanonicalName(name)
	if canonical == "" {
		return nil, fmt.Errorf("dj name is empty")
	}

	// A supplied image refreshes the shared row; without one the
	// existing image is left alone.
	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}
	if imageURL != nil {
		conflict.DoNothing = false
		conflict.DoUpdates = clause.AssignmentColumns([]string{"image_url"})
	}

	dj := model.DJ{Name: canonical, ImageURL: imageURL}
	err := r.db.WithContext(ctx).
		Clauses(conflict).
		Create(&dj).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert dj %s: %w", canonical, err)
	}

	// On the conflict branch the driver does not report the existing
	// row's id; fetch the authoritative row by name.
	var row model.DJ
	if err := r.db.WithContext(ctx).Where("name = ?", canonical).First(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch dj %s after upsert: %w", canonical, err)
	}
	return &row, nil
}

func (r *mysqlDJRepository) UpdateImageURL(ctx context.Context, djID int64, imageURL string) error {
	err := r.db.WithContext(ctx).
		Model(&model.DJ{}).
		Where("id = ?", djID).
		Update("image_url", imageURL).Error
	if err != nil {
		return fmt.Errorf("failed to update image for dj %d: %w", djID, err)
	}
	return nil
}
