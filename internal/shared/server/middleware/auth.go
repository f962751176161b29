package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/respond"
)

// DeviceHeader carries the per-browser identity whose local drafts the
// request operates on.
const DeviceHeader = "X-Guest-Id"

const (
	userIDKey      = "userId"
	deviceIDKey    = "deviceId"
	sessionIDKey   = "sessionId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
	isGuestKey     = "isGuest"
)

// Auth validates bearer JWTs and the device header and stores identity in
// context. A request must carry at least one of them.
func Auth(env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/auth/google/") {
			c.Next()
			return
		}

		deviceID := strings.TrimSpace(c.GetHeader(DeviceHeader))
		if deviceID != "" {
			c.Set(deviceIDKey, deviceID)
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if token == "" {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			claims, err := auth.VerifyJWT(token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			c.Set(userIDKey, claims.Subject)
			if claims.ID != "" {
				c.Set(sessionIDKey, claims.ID)
			}
			if claims.Email != "" {
				c.Set(userEmailKey, claims.Email)
			}
			if claims.Name != "" {
				c.Set(userNameKey, claims.Name)
			}
			if claims.Picture != "" {
				c.Set(userPictureKey, claims.Picture)
			}
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		if deviceID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}
		c.Set(isGuestKey, true)
		c.Next()
	}
}

// RequireUser rejects requests without an authenticated user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserIDFromContext(c) == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "sign-in required", nil)
			return
		}
		c.Next()
	}
}

// RequireDevice rejects requests without a device id.
func RequireDevice() gin.HandlerFunc {
	return func(c *gin.Context) {
		if DeviceIDFromContext(c) == "" {
			respond.Error(c, http.StatusBadRequest, "missing_device", DeviceHeader+" header is required", nil)
			return
		}
		c.Next()
	}
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// UserIDFromContext fetches the authenticated user ID. Guests have none.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// IsGuestFromContext reports whether the request was admitted on a device id
// alone. Requests the auth middleware never saw are not guests.
func IsGuestFromContext(c *gin.Context) bool {
	if c == nil {
		return false
	}
	guest, ok := c.Get(isGuestKey)
	if !ok {
		return false
	}
	b, _ := guest.(bool)
	return b
}

// DeviceIDFromContext fetches the device id from the X-Guest-Id header.
func DeviceIDFromContext(c *gin.Context) string {
	return stringFromContext(c, deviceIDKey)
}

// SessionIDFromContext fetches the token id of the signed-in session.
func SessionIDFromContext(c *gin.Context) string {
	return stringFromContext(c, sessionIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

// UserPictureFromContext fetches the user picture set by the auth middleware.
func UserPictureFromContext(c *gin.Context) string {
	return stringFromContext(c, userPictureKey)
}
