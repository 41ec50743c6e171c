package model

// TrackRef is what the player points at: a clip or a whole set.
type TrackRef struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title"`
	VideoID   string  `json:"videoId"`
	StartSec  int     `json:"start,omitempty"`
	EndSec    int     `json:"end,omitempty"`
	Thumbnail *string `json:"thumbnail,omitempty"`
	DJName    string  `json:"djName,omitempty"`
}

// PlayerState is transient, process-local UI state. Never persisted.
type PlayerState struct {
	Current   *TrackRef `json:"current"`
	IsPlaying bool      `json:"isPlaying"`
}
