package discovery

import (
	"encoding/json"
	"os"
	"sync"

	"djradar/logger"

	"github.com/fsnotify/fsnotify"
)

// Default keyword lists. These evolved by hand against real search
// results; they are tunables, not a frozen contract, which is why a
// KEYWORDS_FILE override exists.
var defaultSetKeywords = []string{
	"@",
	"live",
	"set",
	"dj",
	"boiler room",
	"cercle",
	"essential mix",
	"festival",
	"mix",
	"b2b",
	"tomorrowland",
	"edc",
	"coachella",
	"ultra",
	"live stream",
	"concert",
	"performance",
	"closing set",
	"opening set",
	"club",
	"live at",
	"main stage",
	"afterparty",
	"burning man",
	"fabric",
	"mixmag",
	"stream",
	"live mix",
}

var defaultBlacklist = []string{
	"interview",
	"reaction",
	"review",
	"recap",
	"trailer",
	"announcement",
	"podcast",
	"q&a",
	"tutorial",
	"shorts",
	"behind the scenes",
	"preview",
}

// KeywordList holds the positive and negative term lists used by the
// classifier. Safe for concurrent read while a watcher reloads it.
type KeywordList struct {
	mu        sync.RWMutex
	keywords  []string
	blacklist []string
}

// NewKeywordList returns a list seeded with the compiled-in defaults.
func NewKeywordList() *KeywordList {
	return &KeywordList{
		keywords:  defaultSetKeywords,
		blacklist: defaultBlacklist,
	}
}

// Keywords returns the current positive keyword list.
func (k *KeywordList) Keywords() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.keywords
}

// Blacklist returns the current negative term list.
func (k *KeywordList) Blacklist() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.blacklist
}

type keywordsFile struct {
	SetKeywords []string `json:"setKeywords"`
	Blacklist   []string `json:"blacklist"`
}

// LoadFile replaces the lists from a JSON file. Empty arrays keep the
// current values so a partial file only overrides one list.
func (k *KeywordList) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var parsed keywordsFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if len(parsed.SetKeywords) > 0 {
		k.keywords = parsed.SetKeywords
	}
	if len(parsed.Blacklist) > 0 {
		k.blacklist = parsed.Blacklist
	}
	return nil
}

// Watch reloads the list whenever the file changes, until the watcher is
// closed. Returns the watcher so the caller can Close it on shutdown.
func (k *KeywordList) Watch(path string) (*fsnotify.Watcher, error) {
	if err := k.LoadFile(path); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					if err := k.LoadFile(path); err != nil {
						logger.Warn("failed to reload keywords file",
							logger.String("path", path), logger.ErrorField(err))
						continue
					}
					logger.Info("reloaded keywords file", logger.String("path", path))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("keywords file watcher error", logger.ErrorField(err))
			}
		}
	}()

	return watcher, nil
}
