package server

import (
	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

type meResponse struct {
	UserID   string `json:"userId,omitempty"`
	DeviceID string `json:"deviceId,omitempty"`
	Guest    bool   `json:"guest"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

// meHandler reports who the request is acting as. Guests get their device id
// so the UI can tell which drafts it is looking at.
func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	respond.OK(c, meResponse{
		UserID:   userID,
		DeviceID: middleware.DeviceIDFromContext(c),
		Guest:    userID == "",
		Email:    middleware.UserEmailFromContext(c),
		Name:     middleware.UserNameFromContext(c),
		Picture:  middleware.UserPictureFromContext(c),
	})
}
