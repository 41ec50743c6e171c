package repository

import (
	"context"
	"fmt"

	"djradar/db"
	"djradar/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository defines the interface for DJ tracking rows.
type SubscriptionRepository interface {
	// Subscribe is idempotent: the composite primary key (user_id, dj_id)
	// absorbs concurrent duplicate attempts at the database.
	Subscribe(ctx context.Context, userID, djID int64) error
	Unsubscribe(ctx context.Context, userID, djID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.Subscription, error)
	DeleteAllByUser(ctx context.Context, userID int64) error
}

// mysqlSubscriptionRepository implements SubscriptionRepository on GORM/MySQL.
type mysqlSubscriptionRepository struct {
	db *gorm.DB
}

// NewMySQLSubscriptionRepository creates a new instance of mysqlSubscriptionRepository.
func NewMySQLSubscriptionRepository() SubscriptionRepository {
	return &mysqlSubscriptionRepository{db: db.GormDB}
}

func (r *mysqlSubscriptionRepository) Subscribe(ctx context.Context, userID, djID int64) error {
	sub := model.Subscription{UserID: userID, DJID: djID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sub).Error
	if err != nil {
		return fmt.Errorf("failed to subscribe user %d to dj %d: %w", userID, djID, err)
	}
	return nil
}

func (r *mysqlSubscriptionRepository) Unsubscribe(ctx context.Context, userID, djID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND dj_id = ?", userID, djID).
		Delete(&model.Subscription{}).Error
	if err != nil {
		return fmt.Errorf("failed to unsubscribe user %d from dj %d: %w", userID, djID, err)
	}
	return nil
}

func (r *mysqlSubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]model.Subscription, error) {
	subs := make([]model.Subscription, 0)
	err := r.db.WithContext(ctx).
		Preload("DJ").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for user %d: %w", userID, err)
	}
	return subs, nil
}

func (r *mysqlSubscriptionRepository) DeleteAllByUser(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Subscription{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete subscriptions for user %d: %w", userID, err)
	}
	return nil
}
