package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"djradar/model"
)

// fakeRemote is an in-memory stand-in for the relational store. Failures
// and hooks are keyed by operation name so tests can fault or intercept a
// single call site.
type fakeRemote struct {
	mu sync.Mutex

	djs            map[string]model.DJ
	nextDJID       int64
	subs           map[int64]map[int64]time.Time // userID -> djID -> created
	saved          []model.SavedSet
	nextSavedID    int64
	playlists      []model.Playlist
	nextPlaylistID int64
	clips          []model.Clip
	nextClipID     int64

	failures map[string]error
	hooks    map[string]func()
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		djs:      make(map[string]model.DJ),
		subs:     make(map[int64]map[int64]time.Time),
		failures: make(map[string]error),
		hooks:    make(map[string]func()),
	}
}

func (f *fakeRemote) repos() Repos {
	return Repos{
		DJs:           &fakeDJRepo{f},
		Subscriptions: &fakeSubRepo{f},
		SavedSets:     &fakeSavedSetRepo{f},
		Playlists:     &fakePlaylistRepo{f},
		Clips:         &fakeClipRepo{f},
	}
}

func (f *fakeRemote) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

func (f *fakeRemote) hookOn(op string, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[op] = fn
}

// enter runs the op's hook and returns its injected failure, if any.
// Callers must not hold f.mu.
func (f *fakeRemote) enter(op string) error {
	f.mu.Lock()
	hook := f.hooks[op]
	err := f.failures[op]
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

type fakeDJRepo struct{ r *fakeRemote }

func (p *fakeDJRepo) EnsureDJ(_ context.Context, name string, imageURL *string) (*model.DJ, error) {
	if err := p.r.enter("djs.ensure"); err != nil {
		return nil, err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	if dj, ok := p.r.djs[name]; ok {
		// A supplied image refreshes the shared row.
		if imageURL != nil {
			dj.ImageURL = imageURL
			p.r.djs[name] = dj
		}
		out := dj
		return &out, nil
	}
	p.r.nextDJID++
	dj := model.DJ{ID: p.r.nextDJID, Name: name, ImageURL: imageURL}
	p.r.djs[name] = dj
	out := dj
	return &out, nil
}

func (p *fakeDJRepo) UpdateImageURL(_ context.Context, djID int64, imageURL string) error {
	if err := p.r.enter("djs.updateImage"); err != nil {
		return err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	for name, dj := range p.r.djs {
		if dj.ID == djID {
			u := imageURL
			dj.ImageURL = &u
			p.r.djs[name] = dj
		}
	}
	return nil
}

type fakeSubRepo struct{ r *fakeRemote }

func (p *fakeSubRepo) Subscribe(_ context.Context, userID, djID int64) error {
	if err := p.r.enter("subs.subscribe"); err != nil {
		return err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	if p.r.subs[userID] == nil {
		p.r.subs[userID] = make(map[int64]time.Time)
	}
	if _, ok := p.r.subs[userID][djID]; !ok {
		p.r.subs[userID][djID] = time.Now()
	}
	return nil
}

func (p *fakeSubRepo) Unsubscribe(_ context.Context, userID, djID int64) error {
	if err := p.r.enter("subs.unsubscribe"); err != nil {
		return err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	delete(p.r.subs[userID], djID)
	return nil
}

func (p *fakeSubRepo) ListByUser(_ context.Context, userID int64) ([]model.Subscription, error) {
	if err := p.r.enter("subs.list"); err != nil {
		return nil, err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	var out []model.Subscription
	for djID, created := range p.r.subs[userID] {
		sub := model.Subscription{UserID: userID, DJID: djID, CreatedAt: created}
		for _, dj := range p.r.djs {
			if dj.ID == djID {
				sub.DJ = dj
			}
		}
		out = append(out, sub)
	}
	return out, nil
}

func (p *fakeSubRepo) DeleteAllByUser(_ context.Context, userID int64) error {
	if err := p.r.enter("subs.deleteAll"); err != nil {
		return err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	delete(p.r.subs, userID)
	return nil
}

type fakeSavedSetRepo struct{ r *fakeRemote }

func (p *fakeSavedSetRepo) Save(_ context.Context, set *model.SavedSet) error {
	if err := p.r.enter("saved.save"); err != nil {
		return err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	for _, s := range p.r.saved {
		if s.UserID == set.UserID && s.VideoID == set.VideoID {
			return nil
		}
	}
	p.r.nextSavedID++
	set.ID = p.r.nextSavedID
	p.r.saved = append(p.r.saved, *set)
	return nil
}

func (p *fakeSavedSetRepo) Delete(_ context.Context, userID int64, videoID string) error {
	if err := p.r.enter("saved.delete"); err != nil {
		return err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	kept := p.r.saved[:0]
	for _, s := range p.r.saved {
		if !(s.UserID == userID && s.VideoID == videoID) {
			kept = append(kept, s)
		}
	}
	p.r.saved = kept
	return nil
}

func (p *fakeSavedSetRepo) ListByUser(_ context.Context, userID int64) ([]model.SavedSet, error) {
	if err := p.r.enter("saved.list"); err != nil {
		return nil, err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	var out []model.SavedSet
	for i := len(p.r.saved) - 1; i >= 0; i-- { // newest first
		if p.r.saved[i].UserID == userID {
			out = append(out, p.r.saved[i])
		}
	}
	return out, nil
}

func (p *fakeSavedSetRepo) DeleteAllByUser(_ context.Context, userID int64) error {
	if err := p.r.enter("saved.deleteAll"); err != nil {
		return err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	kept := p.r.saved[:0]
	for _, s := range p.r.saved {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	p.r.saved = kept
	return nil
}

type fakePlaylistRepo struct{ r *fakeRemote }

func (p *fakePlaylistRepo) UpsertByName(_ context.Context, userID int64, name string) (*model.Playlist, error) {
	if err := p.r.enter("playlists.upsert"); err != nil {
		return nil, err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	for _, pl := range p.r.playlists {
		if pl.UserID == userID && strings.EqualFold(pl.Name, name) {
			out := pl
			return &out, nil
		}
	}
	p.r.nextPlaylistID++
	pl := model.Playlist{ID: p.r.nextPlaylistID, UserID: userID, Name: name, CreatedAt: time.Now()}
	p.r.playlists = append(p.r.playlists, pl)
	out := pl
	return &out, nil
}

func (p *fakePlaylistRepo) Delete(_ context.Context, userID, playlistID int64) error {
	if err := p.r.enter("playlists.delete"); err != nil {
		return err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	kept := p.r.playlists[:0]
	for _, pl := range p.r.playlists {
		if !(pl.UserID == userID && pl.ID == playlistID) {
			kept = append(kept, pl)
		}
	}
	p.r.playlists = kept

	// Cascade, like the real foreign key does.
	keptClips := p.r.clips[:0]
	for _, c := range p.r.clips {
		if c.PlaylistID != nil && *c.PlaylistID == playlistID {
			continue
		}
		keptClips = append(keptClips, c)
	}
	p.r.clips = keptClips
	return nil
}

func (p *fakePlaylistRepo) ListByUser(_ context.Context, userID int64) ([]model.Playlist, error) {
	if err := p.r.enter("playlists.list"); err != nil {
		return nil, err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	var out []model.Playlist
	for _, pl := range p.r.playlists {
		if pl.UserID == userID {
			out = append(out, pl)
		}
	}
	return out, nil
}

func (p *fakePlaylistRepo) DeleteAllByUser(_ context.Context, userID int64) error {
	if err := p.r.enter("playlists.deleteAll"); err != nil {
		return err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	kept := p.r.playlists[:0]
	for _, pl := range p.r.playlists {
		if pl.UserID != userID {
			kept = append(kept, pl)
		}
	}
	p.r.playlists = kept
	return nil
}

type fakeClipRepo struct{ r *fakeRemote }

func (p *fakeClipRepo) Create(_ context.Context, clip *model.Clip) error {
	if err := p.r.enter("clips.create"); err != nil {
		return err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	p.r.nextClipID++
	clip.ID = p.r.nextClipID
	if clip.CreatedAt.IsZero() {
		clip.CreatedAt = time.Now()
	}
	p.r.clips = append(p.r.clips, *clip)
	return nil
}

func (p *fakeClipRepo) Delete(_ context.Context, userID, clipID int64) error {
	if err := p.r.enter("clips.delete"); err != nil {
		return err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	kept := p.r.clips[:0]
	for _, c := range p.r.clips {
		if !(c.UserID == userID && c.ID == clipID) {
			kept = append(kept, c)
		}
	}
	p.r.clips = kept
	return nil
}

func (p *fakeClipRepo) ListByUser(_ context.Context, userID int64) ([]model.Clip, error) {
	if err := p.r.enter("clips.list"); err != nil {
		return nil, err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	var out []model.Clip
	for _, c := range p.r.clips {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p *fakeClipRepo) DeleteAllByUser(_ context.Context, userID int64) error {
	if err := p.r.enter("clips.deleteAll"); err != nil {
		return err
	}
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	kept := p.r.clips[:0]
	for _, c := range p.r.clips {
		if c.UserID != userID {
			kept = append(kept, c)
		}
	}
	p.r.clips = kept
	return nil
}

func (f *fakeRemote) clipCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clips)
}

func (f *fakeRemote) subCount(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[userID])
}
