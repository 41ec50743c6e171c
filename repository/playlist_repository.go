package repository

import (
	"context"
	"fmt"

	"djradar/db"
	"djradar/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaylistRepository defines the interface for playlist rows.
type PlaylistRepository interface {
	// UpsertByName implements create-or-fetch on the unique
	// (user_id, name) index, so concurrent creates of the same name
	// converge on a single row instead of failing on a duplicate key.
	UpsertByName(ctx context.Context, userID int64, name string) (*model.Playlist, error)
	Delete(ctx context.Context, userID, playlistID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.Playlist, error)
	DeleteAllByUser(ctx context.Context, userID int64) error
}

// mysqlPlaylistRepository implements PlaylistRepository on GORM/MySQL.
type mysqlPlaylistRepository struct {
	db *gorm.DB
}

// NewMySQLPlaylistRepository creates a new instance of mysqlPlaylistRepository.
func NewMySQLPlaylistRepository() PlaylistRepository {
	return &mysqlPlaylistRepository{db: db.GormDB}
}

func (r *mysqlPlaylistRepository) UpsertByName(ctx context.Context, userID int64, name string) (*model.Playlist, error) {
	pl := model.Playlist{UserID: userID, Name: name}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
			DoNothing: true,
		}).
		Create(&pl).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert playlist %q for user %d: %w", name, userID, err)
	}

	// DoNothing leaves ID zero when the row already existed; fetch it.
	if pl.ID == 0 {
		err = r.db.WithContext(ctx).
			Where("user_id = ? AND name = ?", userID, name).
			First(&pl).Error
		if err != nil {
			return nil, fmt.Errorf("failed to fetch playlist %q after upsert: %w", name, err)
		}
	}
	return &pl, nil
}

func (r *mysqlPlaylistRepository) Delete(ctx context.Context, userID, playlistID int64) error {
	// Clips are removed by the ON DELETE CASCADE foreign key.
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, playlistID).
		Delete(&model.Playlist{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete playlist %d for user %d: %w", playlistID, userID, err)
	}
	return nil
}

func (r *mysqlPlaylistRepository) ListByUser(ctx context.Context, userID int64) ([]model.Playlist, error) {
	playlists := make([]model.Playlist, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&playlists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists for user %d: %w", userID, err)
	}
	return playlists, nil
}

func (r *mysqlPlaylistRepository) DeleteAllByUser(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Playlist{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete playlists for user %d: %w", userID, err)
	}
	return nil
}
