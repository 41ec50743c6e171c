// Package discovery finds DJ live sets on the video platform: a search
// pipeline, a keyword/duration classifier, and the refresh engine that
// feeds the library's discovery collections.
package discovery

import (
	"strings"

	"djradar/core/timecode"
	"djradar/core/youtube"
	"djradar/logger"
	"djradar/model"
)

// Classifier decides which video detail records are DJ live sets.
type Classifier struct {
	MinDurationMinutes int
	Lists              *KeywordList
}

// NewClassifier builds a classifier with the given duration threshold in
// minutes. A nil list falls back to the compiled-in defaults.
func NewClassifier(minDurationMinutes int, lists *KeywordList) *Classifier {
	if lists == nil {
		lists = NewKeywordList()
	}
	return &Classifier{
		MinDurationMinutes: minDurationMinutes,
		Lists:              lists,
	}
}

// Classify filters details down to likely live sets for djName. Rejected
// items are logged with the rejection reason; the returned slice is
// deterministic for the same input.
func (c *Classifier) Classify(details []youtube.VideoDetail, djName string) []model.DiscoveredSet {
	sets := make([]model.DiscoveredSet, 0, len(details))
	for _, d := range details {
		minutes := timecode.ParseISODurationMinutes(d.Duration)
		if minutes < c.MinDurationMinutes {
			continue
		}
		if !c.isLikelySet(d.Title, d.ChannelTitle, djName) {
			continue
		}
		sets = append(sets, model.DiscoveredSet{
			ID:           d.ID,
			VideoID:      d.ID,
			Title:        d.Title,
			Thumbnail:    d.Thumbnail,
			PublishDate:  d.PublishedAt,
			ChannelTitle: d.ChannelTitle,
			DJName:       model.CanonicalName(djName),
		})
	}
	return sets
}

// isLikelySet applies the three independent checks: the DJ name must
// appear in the title or channel, the title must carry a set keyword,
// and no blacklisted term may appear.
func (c *Classifier) isLikelySet(title, channelTitle, djName string) bool {
	hasName := hasDJName(title, channelTitle, djName)
	hasKeyword := hasSetKeyword(title, c.Lists.Keywords())
	blacklisted := hasBlacklistedTerm(title, c.Lists.Blacklist())

	switch {
	case !hasName:
		logger.Debug("skipped video: no DJ name", logger.String("title", title))
	case !hasKeyword:
		logger.Debug("skipped video: no set keyword", logger.String("title", title))
	case blacklisted:
		logger.Debug("skipped video: blacklisted term", logger.String("title", title))
	}

	return hasName && hasKeyword && !blacklisted
}

func hasDJName(title, channelTitle, djName string) bool {
	name := model.CanonicalName(djName)
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(title), name) ||
		strings.Contains(strings.ToLower(channelTitle), name)
}

func hasSetKeyword(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func hasBlacklistedTerm(title string, blacklist []string) bool {
	lower := strings.ToLower(title)
	for _, b := range blacklist {
		if strings.Contains(lower, b) {
			return true
		}
	}
	return false
}
