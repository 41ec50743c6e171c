// Package store holds the authoritative in-memory library state for one
// session and keeps it consistent with the relational store: every
// mutation writes remotely first and applies locally only after the
// remote write succeeded.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"djradar/apperr"
	"djradar/core/auth"
	"djradar/core/timecode"
	"djradar/model"
	"djradar/repository"
)

// Repos bundles the remote store collaborators the library writes to.
type Repos struct {
	DJs           repository.DJRepository
	Subscriptions repository.SubscriptionRepository
	SavedSets     repository.SavedSetRepository
	Playlists     repository.PlaylistRepository
	Clips         repository.ClipRepository
}

// Library is the single in-memory holder of one session's collections.
// Exactly one instance exists per active identity.
type Library struct {
	mu      sync.Mutex
	session auth.SessionProvider
	repos   Repos

	trackedDJs []model.TrackedDJ
	savedSets  []model.SavedSet
	playlists  []model.Playlist
	leaks      []model.Clip // unfiled clips (playlist_id = null)

	// Session-scoped discovery collections, rebuilt every session.
	discoveryLibrary []model.DiscoveredSet
	newSets          []model.DiscoveredSet

	player  model.PlayerState
	loading bool

	now func() time.Time
}

// NewLibrary creates an empty library bound to a session identity.
func NewLibrary(session auth.SessionProvider, repos Repos) *Library {
	return &Library{
		session: session,
		repos:   repos,
		loading: true,
		now:     time.Now,
	}
}

func (l *Library) userID() (int64, error) {
	id, ok := l.session.CurrentUserID()
	if !ok {
		return 0, apperr.ErrNotAuthenticated
	}
	return id, nil
}

// ---------- DJ tracking ----------

// Subscribe starts tracking a DJ. The name is normalized; subscribing to
// an already-tracked name is a no-op. The subscription row is upserted
// remotely before the local list changes, so a concurrent duplicate tap
// collapses on the database's conflict target rather than on the local
// existence check alone.
func (l *Library) Subscribe(ctx context.Context, name string, imageURL *string) error {
	canonical := model.CanonicalName(name)
	if canonical == "" {
		return apperr.InvalidArgumentf("dj name is required")
	}

	userID, err := l.userID()
	if err != nil {
		return err
	}

	l.mu.Lock()
	for _, dj := range l.trackedDJs {
		if dj.Name == canonical {
			l.mu.Unlock()
			return nil
		}
	}
	l.mu.Unlock()

	dj, err := l.repos.DJs.EnsureDJ(ctx, canonical, imageURL)
	if err != nil {
		return apperr.Remote("djs.upsert", err)
	}
	if err := l.repos.Subscriptions.Subscribe(ctx, userID, dj.ID); err != nil {
		return apperr.Remote("subscriptions.upsert", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range l.trackedDJs {
		if d.Name == canonical {
			return nil
		}
	}
	l.trackedDJs = append(l.trackedDJs, model.TrackedDJ{
		DJID:          dj.ID,
		Name:          canonical,
		ImageURL:      dj.ImageURL,
		SubscribeDate: l.now(),
	})
	return nil
}

// Unsubscribe stops tracking a DJ by (normalized) name.
func (l *Library) Unsubscribe(ctx context.Context, name string) error {
	canonical := model.CanonicalName(name)
	if canonical == "" {
		return nil
	}

	userID, err := l.userID()
	if err != nil {
		return err
	}

	l.mu.Lock()
	var match *model.TrackedDJ
	for i := range l.trackedDJs {
		if l.trackedDJs[i].Name == canonical {
			match = &l.trackedDJs[i]
			break
		}
	}
	l.mu.Unlock()

	if match == nil {
		return nil
	}

	if err := l.repos.Subscriptions.Unsubscribe(ctx, userID, match.DJID); err != nil {
		return apperr.Remote("subscriptions.delete", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.trackedDJs[:0]
	for _, dj := range l.trackedDJs {
		if dj.Name != canonical {
			kept = append(kept, dj)
		}
	}
	l.trackedDJs = kept
	return nil
}

// ---------- Saved sets ----------

// SaveSet saves a discovered set. Dedup is by video id both locally and
// on the remote (user_id, video_id) unique index. The new entry is
// prepended so the most recent save lists first.
func (l *Library) SaveSet(ctx context.Context, set model.DiscoveredSet) error {
	videoID := set.VideoID
	if videoID == "" {
		videoID = set.ID
	}
	if videoID == "" {
		return apperr.InvalidArgumentf("missing videoId")
	}

	userID, err := l.userID()
	if err != nil {
		return err
	}

	l.mu.Lock()
	for _, s := range l.savedSets {
		if s.VideoID == videoID {
			l.mu.Unlock()
			return nil
		}
	}
	l.mu.Unlock()

	row := model.SavedSet{
		UserID:    userID,
		VideoID:   videoID,
		Title:     set.Title,
		Thumbnail: set.Thumbnail,
		CreatedAt: l.now(),
	}
	if set.DJName != "" {
		name := set.DJName
		row.DJName = &name
	}
	if !set.PublishDate.IsZero() {
		pd := set.PublishDate
		row.PublishDate = &pd
	}

	if err := l.repos.SavedSets.Save(ctx, &row); err != nil {
		return apperr.Remote("saved_sets.insert", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.savedSets {
		if s.VideoID == videoID {
			return nil
		}
	}
	l.savedSets = append([]model.SavedSet{row}, l.savedSets...)
	return nil
}

// UnsaveSet removes a saved set by video id.
func (l *Library) UnsaveSet(ctx context.Context, videoID string) error {
	if videoID == "" {
		return apperr.InvalidArgumentf("missing videoId")
	}

	userID, err := l.userID()
	if err != nil {
		return err
	}

	if err := l.repos.SavedSets.Delete(ctx, userID, videoID); err != nil {
		return apperr.Remote("saved_sets.delete", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.savedSets[:0]
	for _, s := range l.savedSets {
		if s.VideoID != videoID {
			kept = append(kept, s)
		}
	}
	l.savedSets = kept
	return nil
}

// ---------- Playlists ----------

// UpsertPlaylistByName creates or fetches the playlist with that name.
// The remote unique (user_id, name) index makes concurrent creates of
// the same name converge on one row. The returned playlist is a
// detached copy.
func (l *Library) UpsertPlaylistByName(ctx context.Context, nameRaw string) (*model.Playlist, error) {
	name := strings.TrimSpace(nameRaw)
	if name == "" {
		return nil, apperr.InvalidArgumentf("playlist name is required")
	}

	userID, err := l.userID()
	if err != nil {
		return nil, err
	}

	pl, err := l.repos.Playlists.UpsertByName(ctx, userID, name)
	if err != nil {
		return nil, apperr.Remote("playlists.upsert", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.playlists {
		if p.ID == pl.ID {
			clips := make([]model.Clip, len(p.Clips))
			copy(clips, p.Clips)
			p.Clips = clips
			return &p, nil
		}
	}
	l.playlists = append(l.playlists, model.Playlist{
		ID:        pl.ID,
		UserID:    pl.UserID,
		Name:      pl.Name,
		CreatedAt: pl.CreatedAt,
		Clips:     []model.Clip{},
	})
	out := l.playlists[len(l.playlists)-1]
	out.Clips = []model.Clip{}
	return &out, nil
}

// RemovePlaylist deletes a playlist by name (case-insensitive). The
// remote delete cascades to its clips. A stale local-only entry with no
// remote id is simply dropped from memory.
func (l *Library) RemovePlaylist(ctx context.Context, nameRaw string) error {
	name := strings.TrimSpace(nameRaw)
	if name == "" {
		return nil
	}

	userID, err := l.userID()
	if err != nil {
		return err
	}

	lowered := strings.ToLower(name)

	l.mu.Lock()
	var matchID int64
	for _, p := range l.playlists {
		if strings.ToLower(p.Name) == lowered {
			matchID = p.ID
			break
		}
	}
	l.mu.Unlock()

	if matchID != 0 {
		if err := l.repos.Playlists.Delete(ctx, userID, matchID); err != nil {
			return apperr.Remote("playlists.delete", err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.playlists[:0]
	for _, p := range l.playlists {
		if strings.ToLower(p.Name) != lowered {
			kept = append(kept, p)
		}
	}
	l.playlists = kept
	return nil
}

// ---------- Clips ----------

// ClipInput is the user-facing clip payload. Start and End accept raw
// seconds ("204"), "mm:ss" or "hh:mm:ss".
type ClipInput struct {
	VideoID    string  `json:"videoId"`
	Title      string  `json:"title"`
	DJSetTitle *string `json:"djSetTitle"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
}

// AddClip inserts a clip. With a playlist name the playlist is upserted
// first and the clip is tied to it; with an empty name the clip is
// stored unfiled (playlist_id null). Validation failures happen before
// any remote write.
func (l *Library) AddClip(ctx context.Context, playlistName string, in ClipInput) (*model.Clip, error) {
	title := strings.TrimSpace(in.Title)
	if in.VideoID == "" {
		return nil, apperr.InvalidArgumentf("missing videoId")
	}
	if title == "" {
		return nil, apperr.InvalidArgumentf("missing clip title")
	}
	startSec, ok := timecode.ParseSeconds(in.Start)
	if !ok {
		return nil, apperr.InvalidArgumentf("invalid start time %q", in.Start)
	}
	endSec, ok := timecode.ParseSeconds(in.End)
	if !ok {
		return nil, apperr.InvalidArgumentf("invalid end time %q", in.End)
	}

	userID, err := l.userID()
	if err != nil {
		return nil, err
	}

	clip := model.Clip{
		UserID:     userID,
		VideoID:    in.VideoID,
		Title:      title,
		DJSetTitle: in.DJSetTitle,
		StartSec:   startSec,
		EndSec:     endSec,
		CreatedAt:  l.now(),
	}

	if strings.TrimSpace(playlistName) != "" {
		pl, err := l.UpsertPlaylistByName(ctx, playlistName)
		if err != nil {
			return nil, err
		}
		pid := pl.ID
		clip.PlaylistID = &pid
	}

	if err := l.repos.Clips.Create(ctx, &clip); err != nil {
		return nil, apperr.Remote("clips.insert", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if clip.PlaylistID == nil {
		for _, c := range l.leaks {
			if c.ID == clip.ID {
				return &clip, nil
			}
		}
		l.leaks = append(l.leaks, clip)
		return &clip, nil
	}

	for i := range l.playlists {
		if l.playlists[i].ID != *clip.PlaylistID {
			continue
		}
		for _, c := range l.playlists[i].Clips {
			if c.ID == clip.ID {
				return &clip, nil
			}
		}
		l.playlists[i].Clips = append(l.playlists[i].Clips, clip)
		break
	}
	return &clip, nil
}

// RemoveClip deletes a clip by id and removes it from the named playlist
// (or from the unfiled list when playlistName is empty).
func (l *Library) RemoveClip(ctx context.Context, playlistName string, clipID int64) error {
	if clipID == 0 {
		return apperr.InvalidArgumentf("missing clip id")
	}

	userID, err := l.userID()
	if err != nil {
		return err
	}

	if err := l.repos.Clips.Delete(ctx, userID, clipID); err != nil {
		return apperr.Remote("clips.delete", err)
	}

	lowered := strings.ToLower(strings.TrimSpace(playlistName))

	l.mu.Lock()
	defer l.mu.Unlock()
	if lowered == "" {
		kept := l.leaks[:0]
		for _, c := range l.leaks {
			if c.ID != clipID {
				kept = append(kept, c)
			}
		}
		l.leaks = kept
		return nil
	}

	for i := range l.playlists {
		if strings.ToLower(l.playlists[i].Name) != lowered {
			continue
		}
		kept := l.playlists[i].Clips[:0]
		for _, c := range l.playlists[i].Clips {
			if c.ID != clipID {
				kept = append(kept, c)
			}
		}
		l.playlists[i].Clips = kept
	}
	return nil
}

// ---------- Clear all ----------

// ClearAll deletes everything the user owns remotely, child tables
// first, then resets the local collections and player state. If any
// remote step fails, local state is left untouched and the error is
// returned; nothing is reset on partial failure.
func (l *Library) ClearAll(ctx context.Context) error {
	userID, err := l.userID()
	if err != nil {
		return err
	}

	if err := l.repos.Clips.DeleteAllByUser(ctx, userID); err != nil {
		return apperr.Remote("clips.delete_all", err)
	}
	if err := l.repos.Playlists.DeleteAllByUser(ctx, userID); err != nil {
		return apperr.Remote("playlists.delete_all", err)
	}
	if err := l.repos.SavedSets.DeleteAllByUser(ctx, userID); err != nil {
		return apperr.Remote("saved_sets.delete_all", err)
	}
	if err := l.repos.Subscriptions.DeleteAllByUser(ctx, userID); err != nil {
		return apperr.Remote("subscriptions.delete_all", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.trackedDJs = nil
	l.savedSets = nil
	l.playlists = nil
	l.leaks = nil
	l.discoveryLibrary = nil
	l.newSets = nil
	l.player = model.PlayerState{}
	return nil
}

// ---------- Discovery sink ----------

// AddToDiscoveryLibrary adds a discovered set to the all-time library.
// Returns false when the id is already present.
func (l *Library) AddToDiscoveryLibrary(set model.DiscoveredSet) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.discoveryLibrary {
		if s.ID == set.ID {
			return false
		}
	}
	l.discoveryLibrary = append(l.discoveryLibrary, set)
	return true
}

// AddToNewSets adds a discovered set to the new-sets list, dedup by id.
func (l *Library) AddToNewSets(set model.DiscoveredSet) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.newSets {
		if s.ID == set.ID {
			return false
		}
	}
	l.newSets = append(l.newSets, set)
	return true
}

// ---------- Snapshot / bootstrap support ----------

type snapshot struct {
	trackedDJs []model.TrackedDJ
	savedSets  []model.SavedSet
	playlists  []model.Playlist
	leaks      []model.Clip
}

// replaceAll swaps in a freshly loaded remote snapshot.
func (l *Library) replaceAll(s snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trackedDJs = s.trackedDJs
	l.savedSets = s.savedSets
	l.playlists = s.playlists
	l.leaks = s.leaks
}

// resetRemoteBacked clears the remote-backed collections, used when the
// session ends. Discovery collections go too; they are rebuilt next
// session.
func (l *Library) resetRemoteBacked() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trackedDJs = nil
	l.savedSets = nil
	l.playlists = nil
	l.leaks = nil
	l.discoveryLibrary = nil
	l.newSets = nil
}

func (l *Library) setLoading(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = v
}

// Loading reports whether the initial bootstrap is still in flight.
func (l *Library) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// ---------- Accessors (copies, never internal slices) ----------

// TrackedDJs returns the tracked DJ list.
func (l *Library) TrackedDJs() []model.TrackedDJ {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.TrackedDJ, len(l.trackedDJs))
	copy(out, l.trackedDJs)
	return out
}

// SavedSets returns the saved sets, most recently saved first.
func (l *Library) SavedSets() []model.SavedSet {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.SavedSet, len(l.savedSets))
	copy(out, l.savedSets)
	return out
}

// Playlists returns the playlists with their clip lists.
func (l *Library) Playlists() []model.Playlist {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Playlist, len(l.playlists))
	for i, p := range l.playlists {
		clips := make([]model.Clip, len(p.Clips))
		copy(clips, p.Clips)
		p.Clips = clips
		out[i] = p
	}
	return out
}

// PlaylistByName returns a playlist by case-insensitive name.
func (l *Library) PlaylistByName(name string) (*model.Playlist, bool) {
	lowered := strings.ToLower(strings.TrimSpace(name))
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.playlists {
		if strings.ToLower(p.Name) == lowered {
			clips := make([]model.Clip, len(p.Clips))
			copy(clips, p.Clips)
			p.Clips = clips
			return &p, true
		}
	}
	return nil, false
}

// Leaks returns the unfiled clips.
func (l *Library) Leaks() []model.Clip {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Clip, len(l.leaks))
	copy(out, l.leaks)
	return out
}

// DiscoveryLibrary returns all sets surfaced this session, newest first.
func (l *Library) DiscoveryLibrary() []model.DiscoveredSet {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedByNewest(l.discoveryLibrary)
}

// NewSets returns the new-sets list, newest first.
func (l *Library) NewSets() []model.DiscoveredSet {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedByNewest(l.newSets)
}

func sortedByNewest(sets []model.DiscoveredSet) []model.DiscoveredSet {
	out := make([]model.DiscoveredSet, len(sets))
	copy(out, sets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishDate.After(out[j].PublishDate)
	})
	return out
}
