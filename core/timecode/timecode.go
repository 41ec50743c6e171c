// Package timecode converts between human time representations
// ("mm:ss", "hh:mm:ss", raw digit seconds) and integer seconds.
package timecode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseSeconds converts "123", "mm:ss" or "hh:mm:ss" to integer seconds.
// The second return value reports whether the input was parsable; it is
// false for empty strings, non-numeric segments and any other malformed
// input. It never panics.
func ParseSeconds(value string) (int, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, false
	}

	// Pure digits are already seconds. Atoi alone is too lenient here;
	// it would admit a "+" or "-" sign.
	if allDigits(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if !allDigits(p) {
			return 0, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, false
		}
		nums[i] = n
	}

	if len(nums) == 2 {
		return nums[0]*60 + nums[1], true
	}
	return nums[0]*3600 + nums[1]*60 + nums[2], true
}

// FormatSeconds renders seconds as "m:ss". There is deliberately no hour
// component, even for values >= 3600; minutes keep counting instead.
// Negative input clamps to "0:00".
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ParseISODurationMinutes converts an ISO-8601 style video duration
// ("PT1H2M30S") to rounded minutes. Malformed or empty input yields 0.
func ParseISODurationMinutes(duration string) int {
	m := isoDurationRe.FindStringSubmatch(strings.TrimSpace(duration))
	if m == nil {
		return 0
	}

	hours, _ := strconv.Atoi(zeroIfEmpty(m[1]))
	minutes, _ := strconv.Atoi(zeroIfEmpty(m[2]))
	seconds, _ := strconv.Atoi(zeroIfEmpty(m[3]))

	total := float64(hours*60) + float64(minutes) + float64(seconds)/60.0
	return int(total + 0.5)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
