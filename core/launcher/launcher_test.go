package launcher

import (
	"errors"
	"strings"
	"testing"

	"djradar/apperr"
)

func TestURLBuilders(t *testing.T) {
	tc := []struct {
		name    string
		build   func(string, int) string
		videoID string
		start   int
		want    string
	}{
		{name: "app url", build: AppURL, videoID: "abc123", start: 204, want: "youtube://watch?v=abc123&t=204"},
		{name: "vnd url", build: VndURL, videoID: "abc123", start: 204, want: "vnd.youtube://abc123?t=204"},
		{name: "web url", build: WebURL, videoID: "abc123", start: 204, want: "https://www.youtube.com/watch?v=abc123&t=204"},
		{name: "negative start clamps", build: WebURL, videoID: "abc123", start: -5, want: "https://www.youtube.com/watch?v=abc123&t=0"},
		{name: "id gets escaped", build: WebURL, videoID: "a&b", start: 0, want: "https://www.youtube.com/watch?v=a%26b&t=0"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build(tt.videoID, tt.start); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// scriptedOpener fails for every URL prefix listed in failing.
type scriptedOpener struct {
	failing []string
	opened  []string
}

func (o *scriptedOpener) Open(target string) error {
	for _, prefix := range o.failing {
		if strings.HasPrefix(target, prefix) {
			return errors.New("no handler for " + prefix)
		}
	}
	o.opened = append(o.opened, target)
	return nil
}

func TestOpenAt(t *testing.T) {
	t.Run("native scheme wins", func(t *testing.T) {
		opener := &scriptedOpener{}
		if err := New(opener).OpenAt("abc123", 204); err != nil {
			t.Fatalf("OpenAt: %v", err)
		}
		if len(opener.opened) != 1 || !strings.HasPrefix(opener.opened[0], "youtube://") {
			t.Errorf("opened = %v, want single youtube:// handoff", opener.opened)
		}
	})

	t.Run("falls back to vnd scheme", func(t *testing.T) {
		opener := &scriptedOpener{failing: []string{"youtube://"}}
		if err := New(opener).OpenAt("abc123", 204); err != nil {
			t.Fatalf("OpenAt: %v", err)
		}
		if len(opener.opened) != 1 || !strings.HasPrefix(opener.opened[0], "vnd.youtube://") {
			t.Errorf("opened = %v, want vnd.youtube:// fallback", opener.opened)
		}
	})

	t.Run("falls back to web", func(t *testing.T) {
		opener := &scriptedOpener{failing: []string{"youtube://", "vnd.youtube://"}}
		if err := New(opener).OpenAt("abc123", 204); err != nil {
			t.Fatalf("OpenAt: %v", err)
		}
		if len(opener.opened) != 1 || !strings.HasPrefix(opener.opened[0], "https://") {
			t.Errorf("opened = %v, want web fallback", opener.opened)
		}
	})

	t.Run("all targets fail", func(t *testing.T) {
		opener := &scriptedOpener{failing: []string{"youtube://", "vnd.youtube://", "https://"}}
		if err := New(opener).OpenAt("abc123", 204); err == nil {
			t.Fatal("want error when every target fails")
		}
	})

	t.Run("missing video id", func(t *testing.T) {
		opener := &scriptedOpener{}
		err := New(opener).OpenAt("", 0)
		if !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Fatalf("err = %v, want ErrInvalidArgument", err)
		}
		if len(opener.opened) != 0 {
			t.Error("no handoff should be attempted without a video id")
		}
	})
}
