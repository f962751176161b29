package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

const webOrigin = "http://localhost:5173"

func corsRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(origins))
	router.POST("/api/v1/resumes/:id/share", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/api/v1/resumes/:id/export", func(c *gin.Context) {
		c.Header("Content-Disposition", `attachment; filename="CV.resume.json"`)
		c.Status(http.StatusOK)
	})
	return router
}

func preflight(origin, method, headers string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/resumes/123/share", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", method)
	if headers != "" {
		req.Header.Set("Access-Control-Request-Headers", headers)
	}
	return req
}

func TestCORSPreflightAllowsDeviceHeader(t *testing.T) {
	resp := httptest.NewRecorder()
	corsRouter(webOrigin).ServeHTTP(resp, preflight(webOrigin, http.MethodPost, "authorization, x-guest-id"))

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != webOrigin {
		t.Fatalf("expected Allow-Origin %s, got %q", webOrigin, got)
	}
	allowHeaders := strings.ToLower(resp.Header().Get("Access-Control-Allow-Headers"))
	for _, want := range []string{"authorization", "content-type", strings.ToLower(DeviceHeader), "x-request-id"} {
		if !strings.Contains(allowHeaders, want) {
			t.Fatalf("expected %q in Allow-Headers %q", want, allowHeaders)
		}
	}
	if got := resp.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPatch) {
		t.Fatalf("expected PATCH in Allow-Methods, got %q", got)
	}
	if got := resp.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("expected Max-Age 600, got %q", got)
	}
	if got := resp.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("expected no Allow-Credentials, got %q", got)
	}
}

func TestCORSRejectsPreflightFromUnknownOrigin(t *testing.T) {
	resp := httptest.NewRecorder()
	corsRouter(webOrigin).ServeHTTP(resp, preflight("https://evil.example", http.MethodDelete, ""))

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no Allow-Origin, got %q", got)
	}
}

func TestCORSExposesExportHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/123/export", nil)
	req.Header.Set("Origin", webOrigin)
	resp := httptest.NewRecorder()
	corsRouter(webOrigin).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	expose := resp.Header().Get("Access-Control-Expose-Headers")
	for _, want := range []string{"Content-Disposition", "Retry-After", "X-Request-Id"} {
		if !strings.Contains(expose, want) {
			t.Fatalf("expected %q in Expose-Headers %q", want, expose)
		}
	}
	if got := resp.Header().Get("Access-Control-Allow-Methods"); got != "" {
		t.Fatalf("preflight headers leaked onto a simple request: %q", got)
	}
}

func TestCORSIgnoresUnknownOriginOnSimpleRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/123/share", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp := httptest.NewRecorder()
	corsRouter(webOrigin).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected handler to run, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no Allow-Origin, got %q", got)
	}
	if got := resp.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary Origin, got %q", got)
	}
}

func TestCORSWildcardAndTrailingSlash(t *testing.T) {
	cases := []struct {
		name    string
		origins []string
		origin  string
	}{
		{name: "wildcard", origins: []string{"*"}, origin: "https://share.example"},
		{name: "configured with slash", origins: []string{webOrigin + "/"}, origin: webOrigin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			corsRouter(tc.origins...).ServeHTTP(resp, preflight(tc.origin, http.MethodPost, ""))
			if resp.Code != http.StatusNoContent {
				t.Fatalf("expected 204, got %d", resp.Code)
			}
			if got := resp.Header().Get("Access-Control-Allow-Origin"); got != tc.origin {
				t.Fatalf("expected Allow-Origin %s, got %q", tc.origin, got)
			}
		})
	}
}
