package race

import (
	"net/url"
	"sync"
	"time"
)

// winnerEntry stores the last winning strategy for a domain with a TTL.
type winnerEntry struct {
	strategyName string
	expiresAt    time.Time
}

// WinnerMemory remembers which strategy last won for each domain, so
// reports can show how the current race compares to history. Entries expire
// after the configured TTL and are pruned periodically. In-process only.
type WinnerMemory struct {
	store sync.Map // domain (string) -> *winnerEntry
	ttl   time.Duration
	done  chan struct{}
}

// NewWinnerMemory creates a WinnerMemory with the given TTL and starts a
// background goroutine that prunes expired entries every hour.
func NewWinnerMemory(ttl time.Duration) *WinnerMemory {
	wm := &WinnerMemory{
		ttl:  ttl,
		done: make(chan struct{}),
	}
	go wm.cleanupLoop()
	return wm
}

// Get returns the remembered winner for a target's domain, or "" if none.
func (wm *WinnerMemory) Get(target string) string {
	val, ok := wm.store.Load(extractDomain(target))
	if !ok {
		return ""
	}
	entry := val.(*winnerEntry)
	if time.Now().After(entry.expiresAt) {
		wm.store.Delete(extractDomain(target))
		return ""
	}
	return entry.strategyName
}

// Set records the winning strategy for a target's domain.
func (wm *WinnerMemory) Set(target, strategyName string) {
	wm.store.Store(extractDomain(target), &winnerEntry{
		strategyName: strategyName,
		expiresAt:    time.Now().Add(wm.ttl),
	})
}

// Stop terminates the background cleanup goroutine.
func (wm *WinnerMemory) Stop() {
	close(wm.done)
}

func (wm *WinnerMemory) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-wm.done:
			return
		case <-ticker.C:
			now := time.Now()
			wm.store.Range(func(key, value any) bool {
				entry := value.(*winnerEntry)
				if now.After(entry.expiresAt) {
					wm.store.Delete(key)
				}
				return true
			})
		}
	}
}

// extractDomain parses the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
