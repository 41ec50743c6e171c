package model

import (
	"strings"
	"time"
)

// DJ is a row in the shared djs table. Name is the canonical
// (trimmed, lowercased) form and is the unique lookup key.
type DJ struct {
	ID       int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name     string  `json:"name" gorm:"size:255;not null;uniqueIndex"`
	ImageURL *string `json:"imageUrl" gorm:"size:767"`
}

func (DJ) TableName() string {
	return "djs"
}

// Subscription links a user to a DJ they track.
type Subscription struct {
	UserID    int64     `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	DJID      int64     `json:"djId" gorm:"primaryKey;autoIncrement:false;column:dj_id"`
	CreatedAt time.Time `json:"createdAt"`

	DJ DJ `json:"dj" gorm:"foreignKey:DJID;constraint:OnDelete:CASCADE"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// TrackedDJ is the in-memory view of a subscription joined with DJ
// display metadata.
type TrackedDJ struct {
	DJID          int64     `json:"djId"`
	Name          string    `json:"name"` // canonical form
	ImageURL      *string   `json:"imageUrl"`
	SubscribeDate time.Time `json:"subscribeDate"`
}

// CanonicalName normalizes a DJ display name to its trimmed, lowercase
// form used as the dedup/lookup key everywhere.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
