package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"djradar/apperr"
	"djradar/core/auth"
	"djradar/model"
)

func seedRemote(remote *fakeRemote) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	remote.djs["amelie lens"] = model.DJ{ID: 1, Name: "amelie lens"}
	remote.subs[1] = map[int64]time.Time{1: now}

	remote.saved = []model.SavedSet{
		{ID: 1, UserID: 1, VideoID: "v1", Title: "Set One", CreatedAt: now},
	}
	remote.nextSavedID = 1

	remote.playlists = []model.Playlist{
		{ID: 1, UserID: 1, Name: "Peak Time", CreatedAt: now},
	}
	remote.nextPlaylistID = 1

	pid := int64(1)
	remote.clips = []model.Clip{
		{ID: 1, UserID: 1, PlaylistID: &pid, VideoID: "v1", Title: "filed", StartSec: 10, EndSec: 20},
		{ID: 2, UserID: 1, PlaylistID: nil, VideoID: "v1", Title: "leak", StartSec: 30, EndSec: 40},
	}
	remote.nextClipID = 2
}

func TestBootstrapLoadsRemoteState(t *testing.T) {
	remote := newFakeRemote()
	seedRemote(remote)

	lib := NewLibrary(auth.StaticSession(1), remote.repos())
	b := NewBootstrap(lib, nil)

	if !lib.Loading() {
		t.Fatal("library should report loading before the first bootstrap")
	}
	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if lib.Loading() {
		t.Error("loading must be false after bootstrap")
	}

	if djs := lib.TrackedDJs(); len(djs) != 1 || djs[0].Name != "amelie lens" {
		t.Errorf("tracked = %+v", djs)
	}
	if sets := lib.SavedSets(); len(sets) != 1 || sets[0].VideoID != "v1" {
		t.Errorf("saved = %+v", sets)
	}

	pl, ok := lib.PlaylistByName("Peak Time")
	if !ok {
		t.Fatal("playlist missing after bootstrap")
	}
	if len(pl.Clips) != 1 || pl.Clips[0].Title != "filed" {
		t.Errorf("playlist clips = %+v, want the filed clip joined in", pl.Clips)
	}
	if leaks := lib.Leaks(); len(leaks) != 1 || leaks[0].Title != "leak" {
		t.Errorf("leaks = %+v, want the unfiled clip", leaks)
	}
}

func TestBootstrapUnauthenticatedResets(t *testing.T) {
	remote := newFakeRemote()
	lib := NewLibrary(auth.NoSession, remote.repos())
	lib.trackedDJs = []model.TrackedDJ{{DJID: 1, Name: "stale"}}
	lib.discoveryLibrary = []model.DiscoveredSet{{ID: "v1"}}

	if err := NewBootstrap(lib, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(lib.TrackedDJs()) != 0 || len(lib.DiscoveryLibrary()) != 0 {
		t.Error("signed-out bootstrap must clear remote-backed and discovery state")
	}
	if lib.Loading() {
		t.Error("loading must be false even without a session")
	}
}

func TestBootstrapReadFailureKeepsPriorState(t *testing.T) {
	remote := newFakeRemote()
	seedRemote(remote)
	remote.failOn("clips.list", errors.New("timeout"))

	lib := NewLibrary(auth.StaticSession(1), remote.repos())
	lib.trackedDJs = []model.TrackedDJ{{DJID: 9, Name: "previous"}}

	err := NewBootstrap(lib, nil).Run(context.Background())
	var remoteErr *apperr.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("err = %v, want RemoteError", err)
	}

	// All-or-nothing: one failed read aborts the whole replace.
	if djs := lib.TrackedDJs(); len(djs) != 1 || djs[0].Name != "previous" {
		t.Errorf("tracked = %+v, want the pre-failure state", djs)
	}
	if lib.Loading() {
		t.Error("loading must be false after a failed bootstrap")
	}
}

func TestBootstrapStaleRunDiscarded(t *testing.T) {
	remote := newFakeRemote()
	seedRemote(remote)

	lib := NewLibrary(auth.StaticSession(1), remote.repos())
	b := NewBootstrap(lib, nil)

	// A newer run starts while this one is mid-read.
	remote.hookOn("subs.list", func() {
		b.nextGeneration()
	})

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(lib.TrackedDJs()) != 0 {
		t.Error("stale bootstrap result must not be applied")
	}
}

func TestBootstrapAutoRefreshOncePerGeneration(t *testing.T) {
	remote := newFakeRemote()
	seedRemote(remote)

	var refreshes int32
	fired := make(chan struct{}, 4)

	lib := NewLibrary(auth.StaticSession(1), remote.repos())
	b := NewBootstrap(lib, func() {
		atomic.AddInt32(&refreshes, 1)
		fired <- struct{}{}
	})

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("auto refresh never fired")
	}

	// Re-triggering the same generation is a no-op.
	b.triggerRefresh(1)
	b.triggerRefresh(1)

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&refreshes); n != 1 {
		t.Errorf("refreshes = %d, want exactly 1 for the generation", n)
	}

	// A new generation refreshes again.
	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("second generation refresh never fired")
	}
}

type emptyDiscoverer struct{}

func (emptyDiscoverer) Discover(context.Context, string) ([]model.DiscoveredSet, error) {
	return []model.DiscoveredSet{}, nil
}

func TestRegistryActivate(t *testing.T) {
	remote := newFakeRemote()
	seedRemote(remote)
	reg := NewRegistry(remote.repos(), emptyDiscoverer{}, time.Second, 30)

	first, err := reg.Activate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	second, err := reg.Activate(context.Background(), 1)
	if err != nil {
		t.Fatalf("second Activate: %v", err)
	}
	if first != second {
		t.Error("same identity must resolve to the same store")
	}

	other, err := reg.Activate(context.Background(), 2)
	if err != nil {
		t.Fatalf("Activate other user: %v", err)
	}
	if other == first {
		t.Error("different identities must get separate stores")
	}

	reg.Deactivate(1)
	third, err := reg.Activate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Activate after deactivate: %v", err)
	}
	if third == first {
		t.Error("deactivate must discard the old store")
	}
}

func TestRegistryFailedBootstrapNotCached(t *testing.T) {
	remote := newFakeRemote()
	seedRemote(remote)
	remote.failOn("subs.list", errors.New("down"))

	reg := NewRegistry(remote.repos(), emptyDiscoverer{}, time.Second, 30)

	if _, err := reg.Activate(context.Background(), 1); err == nil {
		t.Fatal("want error while the remote store is down")
	}

	remote.failOn("subs.list", nil)

	h, err := reg.Activate(context.Background(), 1)
	if err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
	if len(h.Library.TrackedDJs()) != 1 {
		t.Error("recovered activate should have bootstrapped the state")
	}
}
