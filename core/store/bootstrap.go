package store

import (
	"context"
	"sync"

	"djradar/apperr"
	"djradar/logger"
	"djradar/model"
)

// Bootstrap replaces the library's in-memory state with the remote
// authoritative state. It runs on startup and on every auth-state
// change; overlapping runs are resolved by a generation counter so a
// stale run can never clobber a newer one's result.
type Bootstrap struct {
	lib *Library

	mu             sync.Mutex
	generation     uint64
	refreshedGen   uint64
	onFirstSuccess func() // triggers the one automatic refresh
}

// NewBootstrap creates a bootstrap for lib. onFirstSuccess, if non-nil,
// runs in its own goroutine after the first successful load of each
// generation; it is the hook for the automatic post-bootstrap refresh.
func NewBootstrap(lib *Library, onFirstSuccess func()) *Bootstrap {
	return &Bootstrap{lib: lib, onFirstSuccess: onFirstSuccess}
}

func (b *Bootstrap) nextGeneration() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
	return b.generation
}

func (b *Bootstrap) isCurrent(gen uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation == gen
}

// Run loads the remote state. Without an authenticated identity it
// resets the remote-backed collections. Any read failure aborts the
// whole replace and keeps the previous in-memory state. Loading is
// always marked complete, success or not.
func (b *Bootstrap) Run(ctx context.Context) error {
	gen := b.nextGeneration()
	defer b.lib.setLoading(false)

	userID, ok := b.lib.session.CurrentUserID()
	if !ok {
		b.lib.resetRemoteBacked()
		return nil
	}

	snap, err := b.load(ctx, userID)
	if err != nil {
		logger.Error("bootstrap failed", logger.Int64("user", userID), logger.ErrorField(err))
		return err
	}

	// A newer run started while we were reading; its result wins.
	if !b.isCurrent(gen) {
		logger.Debug("discarding stale bootstrap result", logger.Int64("user", userID))
		return nil
	}

	b.lib.replaceAll(snap)
	logger.Info("bootstrap complete",
		logger.Int64("user", userID),
		logger.Int("trackedDJs", len(snap.trackedDJs)),
		logger.Int("savedSets", len(snap.savedSets)),
		logger.Int("playlists", len(snap.playlists)),
		logger.Int("leaks", len(snap.leaks)))

	b.triggerRefresh(gen)
	return nil
}

// load issues the four reads in parallel and fails if any one fails.
func (b *Bootstrap) load(ctx context.Context, userID int64) (snapshot, error) {
	var (
		wg        sync.WaitGroup
		subs      []model.Subscription
		saved     []model.SavedSet
		playlists []model.Playlist
		clips     []model.Clip
		errs      [4]error
	)

	repos := b.lib.repos

	wg.Add(4)
	go func() {
		defer wg.Done()
		subs, errs[0] = repos.Subscriptions.ListByUser(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		saved, errs[1] = repos.SavedSets.ListByUser(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		playlists, errs[2] = repos.Playlists.ListByUser(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		clips, errs[3] = repos.Clips.ListByUser(ctx, userID)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return snapshot{}, apperr.Remote("bootstrap.read", err)
		}
	}

	return buildSnapshot(subs, saved, playlists, clips), nil
}

// buildSnapshot joins the raw rows into the in-memory shapes: clips are
// grouped onto their playlist by playlist_id, unfiled clips become leaks.
func buildSnapshot(subs []model.Subscription, saved []model.SavedSet, playlists []model.Playlist, clips []model.Clip) snapshot {
	tracked := make([]model.TrackedDJ, 0, len(subs))
	for _, sub := range subs {
		name := model.CanonicalName(sub.DJ.Name)
		if name == "" {
			continue
		}
		tracked = append(tracked, model.TrackedDJ{
			DJID:          sub.DJID,
			Name:          name,
			ImageURL:      sub.DJ.ImageURL,
			SubscribeDate: sub.CreatedAt,
		})
	}

	byPlaylist := make(map[int64][]model.Clip)
	var leaks []model.Clip
	for _, c := range clips {
		if c.PlaylistID == nil {
			leaks = append(leaks, c)
			continue
		}
		byPlaylist[*c.PlaylistID] = append(byPlaylist[*c.PlaylistID], c)
	}

	built := make([]model.Playlist, 0, len(playlists))
	for _, p := range playlists {
		p.Clips = byPlaylist[p.ID]
		if p.Clips == nil {
			p.Clips = []model.Clip{}
		}
		built = append(built, p)
	}

	return snapshot{
		trackedDJs: tracked,
		savedSets:  saved,
		playlists:  built,
		leaks:      leaks,
	}
}

// triggerRefresh fires the automatic refresh at most once per
// generation, so re-renders or repeated state reads never re-trigger it.
func (b *Bootstrap) triggerRefresh(gen uint64) {
	if b.onFirstSuccess == nil {
		return
	}

	b.mu.Lock()
	already := b.refreshedGen >= gen
	if !already {
		b.refreshedGen = gen
	}
	b.mu.Unlock()

	if !already {
		go b.onFirstSuccess()
	}
}
