package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"djradar/apperr"
	"djradar/core/youtube"
)

// fakeAPI serves the two endpoints the pipeline hits, with two search
// pages whose second page repeats one id from the first.
type fakeAPI struct {
	mu            sync.Mutex
	searchCalls   int
	detailCalls   int
	lastDetailIDs string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.searchCalls++
		f.mu.Unlock()

		page := map[string]interface{}{}
		if r.URL.Query().Get("pageToken") == "" {
			page["nextPageToken"] = "page2"
			page["items"] = []map[string]interface{}{
				searchItem("v1", "Amelie Lens Live Set @ Tomorrowland"),
				searchItem("v2", "Amelie Lens Boiler Room Berlin"),
			}
		} else {
			page["items"] = []map[string]interface{}{
				searchItem("v2", "Amelie Lens Boiler Room Berlin"),
				searchItem("v3", "Amelie Lens Interview"),
			}
		}
		json.NewEncoder(w).Encode(page)
	})

	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.detailCalls++
		f.lastDetailIDs = r.URL.Query().Get("id")
		f.mu.Unlock()

		var items []map[string]interface{}
		for i, id := range []string{"v1", "v2", "v3"} {
			title := []string{
				"Amelie Lens Live Set @ Tomorrowland",
				"Amelie Lens Boiler Room Berlin",
				"Amelie Lens Interview",
			}[i]
			items = append(items, map[string]interface{}{
				"id":             id,
				"contentDetails": map[string]string{"duration": "PT1H10M0S"},
				"snippet": map[string]interface{}{
					"title":        title,
					"channelTitle": "Amelie Lens",
					"publishedAt":  "2026-08-01T12:00:00Z",
				},
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
	})

	return mux
}

func searchItem(id, title string) map[string]interface{} {
	return map[string]interface{}{
		"id": map[string]string{"videoId": id},
		"snippet": map[string]interface{}{
			"title":        title,
			"channelTitle": "Amelie Lens",
			"publishedAt":  "2026-08-01T12:00:00Z",
		},
	}
}

func newTestPipeline(t *testing.T, api http.Handler, cache DetailCache) *Pipeline {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	client := youtube.NewClient("test-key", srv.URL)
	return NewPipeline(client, NewClassifier(50, nil), cache, 2, 25)
}

func TestDiscover(t *testing.T) {
	api := &fakeAPI{}
	p := newTestPipeline(t, api.handler(), nil)

	sets, err := p.Discover(context.Background(), "Amelie Lens")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	// v3 is an interview; v2 appeared on both pages but must count once.
	if len(sets) != 2 {
		t.Fatalf("got %d sets, want 2", len(sets))
	}
	if sets[0].VideoID != "v1" || sets[1].VideoID != "v2" {
		t.Errorf("set order = %q, %q; want v1, v2", sets[0].VideoID, sets[1].VideoID)
	}
	if api.searchCalls != 2 {
		t.Errorf("search calls = %d, want 2 pages", api.searchCalls)
	}
	if api.detailCalls != 1 {
		t.Errorf("detail calls = %d, want one batch", api.detailCalls)
	}
	if api.lastDetailIDs != "v1,v2,v3" {
		t.Errorf("detail batch ids = %q, want deduplicated v1,v2,v3", api.lastDetailIDs)
	}
}

func TestDiscoverEmptyName(t *testing.T) {
	p := newTestPipeline(t, http.NotFoundHandler(), nil)

	if _, err := p.Discover(context.Background(), "   "); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestDiscoverWithoutAPIKey(t *testing.T) {
	client := youtube.NewClient("", "http://127.0.0.1:1")
	p := NewPipeline(client, NewClassifier(50, nil), nil, 2, 25)

	sets, err := p.Discover(context.Background(), "Amelie Lens")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if sets == nil || len(sets) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", sets)
	}
}

func TestDiscoverUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	p := NewPipeline(youtube.NewClient("test-key", srv.URL), NewClassifier(50, nil), nil, 2, 25)

	sets, err := p.Discover(context.Background(), "Amelie Lens")
	if err != nil {
		t.Fatalf("upstream failure must not propagate, got %v", err)
	}
	if sets == nil || len(sets) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", sets)
	}
}

func TestDiscoverCancelled(t *testing.T) {
	api := &fakeAPI{}
	p := newTestPipeline(t, api.handler(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sets, err := p.Discover(ctx, "Amelie Lens")
	if err != nil {
		t.Fatalf("cancellation must not propagate, got %v", err)
	}
	if len(sets) != 0 {
		t.Errorf("want empty result after cancellation, got %d sets", len(sets))
	}
}

// memoryCache is a map-backed DetailCache for pipeline tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]youtube.VideoDetail
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]youtube.VideoDetail)}
}

func (m *memoryCache) GetDetails(_ context.Context, ids []string) ([]youtube.VideoDetail, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var hits []youtube.VideoDetail
	var missing []string
	for _, id := range ids {
		if d, ok := m.entries[id]; ok {
			hits = append(hits, d)
		} else {
			missing = append(missing, id)
		}
	}
	return hits, missing
}

func (m *memoryCache) PutDetails(_ context.Context, details []youtube.VideoDetail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	for _, d := range details {
		m.entries[d.ID] = d
	}
}

func TestDiscoverUsesCache(t *testing.T) {
	api := &fakeAPI{}
	cache := newMemoryCache()
	p := newTestPipeline(t, api.handler(), cache)

	if _, err := p.Discover(context.Background(), "Amelie Lens"); err != nil {
		t.Fatalf("first Discover: %v", err)
	}
	if api.detailCalls != 1 {
		t.Fatalf("detail calls after cold run = %d, want 1", api.detailCalls)
	}

	if _, err := p.Discover(context.Background(), "Amelie Lens"); err != nil {
		t.Fatalf("second Discover: %v", err)
	}
	if api.detailCalls != 1 {
		t.Errorf("detail calls after warm run = %d, want still 1", api.detailCalls)
	}

	var droppedID string
	cache.mu.Lock()
	delete(cache.entries, "v2")
	droppedID = "v2"
	cache.mu.Unlock()

	if _, err := p.Discover(context.Background(), "Amelie Lens"); err != nil {
		t.Fatalf("third Discover: %v", err)
	}
	if api.detailCalls != 2 {
		t.Errorf("detail calls after partial miss = %d, want 2", api.detailCalls)
	}
	if api.lastDetailIDs != droppedID {
		t.Errorf("partial miss fetched %q, want only %q", api.lastDetailIDs, droppedID)
	}
}
