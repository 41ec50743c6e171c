package model

import "time"

// DiscoveredSet is a live set surfaced by the discovery pipeline.
// Session-scoped only; never written to the remote store.
type DiscoveredSet struct {
	ID           string    `json:"id"` // external video id
	VideoID      string    `json:"videoId"`
	Title        string    `json:"title"`
	Thumbnail    *string   `json:"thumbnail"`
	PublishDate  time.Time `json:"publishDate"`
	ChannelTitle string    `json:"channelTitle"`
	DJName       string    `json:"djName"` // canonical form
}

// SavedSet is a set the user explicitly saved. Persisted remotely,
// unique per (user_id, video_id).
type SavedSet struct {
	ID          int64      `json:"-" gorm:"primaryKey;autoIncrement"`
	UserID      int64      `json:"-" gorm:"not null;uniqueIndex:uq_user_video"`
	VideoID     string     `json:"videoId" gorm:"size:64;not null;uniqueIndex:uq_user_video"`
	Title       string     `json:"title" gorm:"size:512"`
	Thumbnail   *string    `json:"thumbnail" gorm:"size:767"`
	DJName      *string    `json:"djName" gorm:"size:255;column:dj_name"`
	PublishDate *time.Time `json:"publishDate"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (SavedSet) TableName() string {
	return "saved_sets"
}
