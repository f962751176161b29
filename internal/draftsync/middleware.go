package draftsync

import (
	"github.com/gin-gonic/gin"

	"resume-builder/internal/kv"
	"resume-builder/internal/shared/server/middleware"
)

// EnsureSynced runs Sync the first time an authenticated session is seen on
// a device. Requests proceed whatever the outcome.
func EnsureSynced(svc *Service, guard *SessionGuard, store kv.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		deviceID := middleware.DeviceIDFromContext(c)
		if userID == "" || deviceID == "" {
			c.Next()
			return
		}
		session := middleware.SessionIDFromContext(c)
		if session == "" {
			session = userID
		}
		if guard.First(SessionKey(session, deviceID)) {
			report := svc.Sync(c.Request.Context(), kv.Device(store, deviceID), userID)
			c.Set(middleware.SyncResultKey, report.Summary())
		}
		c.Next()
	}
}
