package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"resume-builder/internal/shared/auth"
)

type identity struct {
	UserID    string `json:"userId"`
	DeviceID  string `json:"deviceId"`
	SessionID string `json:"sessionId"`
	Guest     bool   `json:"guest"`
}

func identityRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	router.GET("/api/v1/resumes", func(c *gin.Context) {
		c.JSON(http.StatusOK, identity{
			UserID:    UserIDFromContext(c),
			DeviceID:  DeviceIDFromContext(c),
			SessionID: SessionIDFromContext(c),
			Guest:     IsGuestFromContext(c),
		})
	})
	return router
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	router.OPTIONS("/api/v1/resumes", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/resumes", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	resp := httptest.NewRecorder()
	identityRouter().ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthGuestHasDeviceButNoUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	req.Header.Set(DeviceHeader, "device-1")
	resp := httptest.NewRecorder()
	identityRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, `"deviceId":"device-1"`) || !strings.Contains(body, `"userId":""`) || !strings.Contains(body, `"guest":true`) {
		t.Fatalf("unexpected identity: %s", body)
	}
}

func TestAuthBearerSetsUserAndSession(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := auth.SignJWT(auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "google:123", ID: "session-1"},
	})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(DeviceHeader, "device-1")
	resp := httptest.NewRecorder()
	identityRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, `"userId":"google:123"`) || !strings.Contains(body, `"sessionId":"session-1"`) || !strings.Contains(body, `"deviceId":"device-1"`) {
		t.Fatalf("unexpected identity: %s", body)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	req.Header.Set(DeviceHeader, "device-1")
	resp := httptest.NewRecorder()
	identityRouter().ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestRequireUserRejectsGuests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"), RequireUser())
	router.GET("/private", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(DeviceHeader, "device-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestIsGuestFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name string
		set  any
		want bool
	}{
		{name: "unset", set: nil, want: false},
		{name: "guest", set: true, want: true},
		{name: "signed in", set: false, want: false},
		{name: "wrong type", set: "true", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			if tc.set != nil {
				c.Set(isGuestKey, tc.set)
			}
			if got := IsGuestFromContext(c); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
	if IsGuestFromContext(nil) {
		t.Fatalf("nil context must not be a guest")
	}
}
