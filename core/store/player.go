package store

import "djradar/model"

// Player state is transient and process-local; nothing here touches the
// remote store.

// SetCurrent points the player at a track and starts playback.
func (l *Library) SetCurrent(track model.TrackRef) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.player = model.PlayerState{Current: &track, IsPlaying: true}
}

// Play resumes playback.
func (l *Library) Play() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.player.IsPlaying = true
}

// Pause pauses playback.
func (l *Library) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.player.IsPlaying = false
}

// ClearPlayer drops the current track.
func (l *Library) ClearPlayer() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.player = model.PlayerState{}
}

// Player returns the current player state.
func (l *Library) Player() model.PlayerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	state := l.player
	if state.Current != nil {
		track := *state.Current
		state.Current = &track
	}
	return state
}

// ClipAt returns the clip at index, or nil when out of range.
func ClipAt(clips []model.Clip, index int) *model.Clip {
	if index < 0 || index >= len(clips) {
		return nil
	}
	c := clips[index]
	return &c
}

// NextClipIndex advances within a clip list, clamping at the end.
func NextClipIndex(current, length int) int {
	if current < length-1 {
		return current + 1
	}
	return current
}

// PrevClipIndex steps back within a clip list, clamping at the start.
func PrevClipIndex(current int) int {
	if current > 0 {
		return current - 1
	}
	return current
}
