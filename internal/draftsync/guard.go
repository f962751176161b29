package draftsync

import (
	"strings"
	"sync"
	"time"
)

// DefaultSessionTTL matches the lifetime of a signed-in session token.
const DefaultSessionTTL = 24 * time.Hour

// SessionGuard remembers which sessions already had a sync attempt.
type SessionGuard struct {
	TTL time.Duration
	Now func() time.Time

	mu        sync.Mutex
	seen      map[string]time.Time
	lastPrune time.Time
}

func NewSessionGuard(ttl time.Duration) *SessionGuard {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionGuard{TTL: ttl, Now: time.Now, seen: make(map[string]time.Time)}
}

// SessionKey identifies one loaded session on one device.
func SessionKey(sessionID, deviceID string) string {
	return strings.TrimSpace(sessionID) + "|" + strings.TrimSpace(deviceID)
}

// First marks key as attempted and reports whether it was not marked before.
func (g *SessionGuard) First(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	g.pruneLocked(now)
	if at, ok := g.seen[key]; ok && now.Sub(at) < g.TTL {
		return false
	}
	g.seen[key] = now
	return true
}

// Mark records an attempt for key unconditionally.
func (g *SessionGuard) Mark(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen[key] = g.now()
}

// Len returns the number of remembered sessions.
func (g *SessionGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

func (g *SessionGuard) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func (g *SessionGuard) pruneLocked(now time.Time) {
	if g.seen == nil {
		g.seen = make(map[string]time.Time)
	}
	if now.Sub(g.lastPrune) < g.TTL/4 {
		return
	}
	g.lastPrune = now
	for key, at := range g.seen {
		if now.Sub(at) >= g.TTL {
			delete(g.seen, key)
		}
	}
}
