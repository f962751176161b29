// Package sharing turns documents into time-limited public links.
package sharing

import (
	"errors"
	"strings"
	"time"

	"resume-builder/internal/resumes"
)

// DefaultTTL is how long a newly enabled share link stays readable.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrNotShared is returned for documents without an enabled share. It is
	// presented to viewers exactly like a missing document.
	ErrNotShared = errors.New("sharing: document not shared")
	// ErrExpired is returned once a share's expiry has passed.
	ErrExpired = errors.New("sharing: share link expired")
)

// Enable returns doc with sharing switched on until now+ttl. Enabling again
// restarts the window.
func Enable(doc resumes.Document, now time.Time, ttl time.Duration) resumes.Document {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	out := doc.Clone()
	out.ShareConfig = &resumes.ShareConfig{
		Enabled:   true,
		ExpiresAt: now.Add(ttl).UnixMilli(),
	}
	return out
}

// Check reports whether doc may be viewed publicly at now. A share whose
// expiry equals now is already expired.
func Check(doc resumes.Document, now time.Time) error {
	sc := doc.ShareConfig
	if sc == nil || !sc.Enabled {
		return ErrNotShared
	}
	if sc.ExpiresAt <= now.UnixMilli() {
		return ErrExpired
	}
	return nil
}

// BuildShareURL returns the public link for id. It depends on the id only.
func BuildShareURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/view/" + id
}
