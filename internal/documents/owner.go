package documents

import "strings"

// Owner identifies whose documents an operation targets. A non-empty UserID
// routes to the remote store; otherwise the device's local drafts are used.
type Owner struct {
	DeviceID string
	UserID   string
}

// Authenticated reports whether the owner is a signed-in user.
func (o Owner) Authenticated() bool {
	return strings.TrimSpace(o.UserID) != ""
}

// route names the backing store so keyed locks never collide across stores.
func (o Owner) route() string {
	if o.Authenticated() {
		return "remote:" + o.UserID
	}
	return "local:" + o.DeviceID
}
