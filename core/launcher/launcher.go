// Package launcher hands a video and start offset to whatever can play
// it: the native app via its URL schemes, falling back to the web URL.
package launcher

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"djradar/apperr"
	"djradar/logger"
)

// AppURL is the primary native-app deep link.
func AppURL(videoID string, startSeconds int) string {
	return fmt.Sprintf("youtube://watch?v=%s&t=%d", url.QueryEscape(videoID), clampStart(startSeconds))
}

// VndURL is the alternate scheme some platforms handle more reliably.
func VndURL(videoID string, startSeconds int) string {
	return fmt.Sprintf("vnd.youtube://%s?t=%d", url.QueryEscape(videoID), clampStart(startSeconds))
}

// WebURL is the browser fallback.
func WebURL(videoID string, startSeconds int) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%d", url.QueryEscape(videoID), clampStart(startSeconds))
}

func clampStart(startSeconds int) int {
	if startSeconds < 0 {
		return 0
	}
	return startSeconds
}

// Opener attempts to hand a URL to the OS.
type Opener interface {
	Open(url string) error
}

// Launcher resolves a deep-link target and attempts the handoff. It
// reports success once a handoff was attempted, not once playback starts.
type Launcher struct {
	opener Opener
}

// New creates a launcher. A nil opener uses the OS default handler.
func New(opener Opener) *Launcher {
	if opener == nil {
		opener = osOpener{}
	}
	return &Launcher{opener: opener}
}

// OpenAt opens the video at the given start offset, trying the native
// schemes before the web URL. Only when every target fails does it
// return the last error.
func (l *Launcher) OpenAt(videoID string, startSeconds int) error {
	if videoID == "" {
		return apperr.InvalidArgumentf("missing videoId")
	}

	targets := []string{
		AppURL(videoID, startSeconds),
		VndURL(videoID, startSeconds),
		WebURL(videoID, startSeconds),
	}

	var lastErr error
	for _, target := range targets {
		if err := l.opener.Open(target); err != nil {
			lastErr = err
			logger.Debug("deep link target failed",
				logger.String("url", target), logger.ErrorField(err))
			continue
		}
		return nil
	}
	return fmt.Errorf("no handler could open video %s: %w", videoID, lastErr)
}

// osOpener shells out to the platform URL handler.
type osOpener struct{}

func (osOpener) Open(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open url: %w", err)
	}
	return nil
}
