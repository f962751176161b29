package sharing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/documents"
	"resume-builder/internal/kv"
	"resume-builder/internal/resumes"
)

type shareFixture struct {
	svc    *Service
	docs   *documents.Service
	remote *resumes.RemoteStore
	now    *time.Time
}

func newShareFixture(t *testing.T) shareFixture {
	t.Helper()
	now := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	remote := resumes.NewRemoteStore(resumes.NewMemoryRepo())
	remote.Now = clock
	docs := documents.NewService(kv.NewMemory(), remote)
	docs.Now = clock
	svc := NewService(remote, docs, "https://cv.example")
	svc.Now = clock
	return shareFixture{svc: svc, docs: docs, remote: remote, now: &now}
}

func TestEnableSharingPersistsAndViews(t *testing.T) {
	ctx := context.Background()
	f := newShareFixture(t)
	owner := documents.Owner{UserID: "user-1"}
	doc, err := f.docs.Save(ctx, owner, resumes.Document{Title: "CV"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	share, err := f.svc.EnableSharing(ctx, owner, doc.ID)
	if err != nil {
		t.Fatalf("EnableSharing: %v", err)
	}
	if share.URL != "https://cv.example/view/"+doc.ID {
		t.Fatalf("unexpected url %q", share.URL)
	}
	stored, _ := f.remote.Get(ctx, "user-1", doc.ID)
	if stored.ShareConfig == nil || !stored.ShareConfig.Enabled {
		t.Fatalf("share config not persisted")
	}

	viewed, err := f.svc.View(ctx, doc.ID)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if viewed.Title != "CV" {
		t.Fatalf("unexpected document %+v", viewed)
	}

	*f.now = f.now.Add(DefaultTTL)
	if _, err := f.svc.View(ctx, doc.ID); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired at the boundary, got %v", err)
	}
	stored, _ = f.remote.Get(ctx, "user-1", doc.ID)
	if stored.ShareConfig == nil || !stored.ShareConfig.Enabled {
		t.Fatalf("expired share must not be revoked")
	}
}

func TestEnableSharingRequiresSignIn(t *testing.T) {
	f := newShareFixture(t)
	_, err := f.svc.EnableSharing(context.Background(), documents.Owner{DeviceID: "device-1"}, "r1")
	if !errors.Is(err, documents.ErrSignInRequired) {
		t.Fatalf("expected ErrSignInRequired, got %v", err)
	}
}

func TestEnableSharingForeignDocument(t *testing.T) {
	ctx := context.Background()
	f := newShareFixture(t)
	doc, _ := f.docs.Save(ctx, documents.Owner{UserID: "user-1"}, resumes.Document{Title: "CV"})
	_, err := f.svc.EnableSharing(ctx, documents.Owner{UserID: "user-2"}, doc.ID)
	if !errors.Is(err, resumes.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestViewRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	f := newShareFixture(t)
	owner := documents.Owner{UserID: "user-1"}
	shared, _ := f.docs.Save(ctx, owner, resumes.Document{Title: "Shared"})
	if _, err := f.svc.EnableSharing(ctx, owner, shared.ID); err != nil {
		t.Fatalf("EnableSharing: %v", err)
	}
	private, _ := f.docs.Save(ctx, owner, resumes.Document{Title: "Private"})

	router := gin.New()
	NewHandler(f.svc).RegisterPublicRoutes(router)

	get := func(id string) *httptest.ResponseRecorder {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/view/"+id, nil))
		return resp
	}

	if resp := get(shared.ID); resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Shared") {
		t.Fatalf("expected 200 with document, got %d: %s", resp.Code, resp.Body.String())
	}
	if resp := get(private.ID); resp.Code != http.StatusNotFound {
		t.Fatalf("unshared document: expected 404, got %d", resp.Code)
	}
	if resp := get("missing"); resp.Code != http.StatusNotFound {
		t.Fatalf("missing document: expected 404, got %d", resp.Code)
	}

	*f.now = f.now.Add(DefaultTTL + time.Minute)
	resp := get(shared.ID)
	if resp.Code != http.StatusGone {
		t.Fatalf("expired share: expected 410, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"code":"expired"`) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}
