package model

import "time"

// Playlist groups clips for a user. Name is unique per user
// (case handling follows MySQL's default case-insensitive collation).
type Playlist struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"-" gorm:"not null;uniqueIndex:uq_user_name"`
	Name      string    `json:"name" gorm:"size:255;not null;uniqueIndex:uq_user_name"`
	CreatedAt time.Time `json:"createdAt"`

	// Ordered clip list, oldest first. Loaded by the bootstrap join,
	// not by GORM preloading.
	Clips []Clip `json:"clips" gorm:"-"`
}

func (Playlist) TableName() string {
	return "playlists"
}

// Clip is a timestamped excerpt of a video. PlaylistID == nil means the
// clip is unfiled (a "leak").
type Clip struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     int64     `json:"-" gorm:"not null;index"`
	PlaylistID *int64    `json:"playlistId" gorm:"index;constraint:OnDelete:CASCADE"`
	VideoID    string    `json:"videoId" gorm:"size:64;not null"`
	Title      string    `json:"title" gorm:"size:512;not null"`
	DJSetTitle *string   `json:"djSetTitle" gorm:"size:512;column:dj_set_title"`
	StartSec   int       `json:"start" gorm:"not null;column:start_sec"`
	EndSec     int       `json:"end" gorm:"not null;column:end_sec"`
	CreatedAt  time.Time `json:"createdAt"`

	Playlist *Playlist `json:"-" gorm:"foreignKey:PlaylistID;constraint:OnDelete:CASCADE"`
}

func (Clip) TableName() string {
	return "clips"
}
