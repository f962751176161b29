package sharing

import (
	"context"
	"errors"
	"time"

	"resume-builder/internal/documents"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// PublicReader loads a document without owner scoping.
type PublicReader interface {
	GetPublic(ctx context.Context, id string) (resumes.Document, error)
}

// Mutator applies a change to an owned document under its lock.
type Mutator interface {
	Mutate(ctx context.Context, owner documents.Owner, id string, fn documents.MutateFunc) (resumes.Document, error)
}

// Share is the result of enabling sharing on a document.
type Share struct {
	Resume    resumes.Document `json:"resume"`
	URL       string           `json:"url"`
	ExpiresAt int64            `json:"expiresAt"`
}

type Service struct {
	Public  PublicReader
	Docs    Mutator
	BaseURL string
	TTL     time.Duration
	Now     func() time.Time
}

func NewService(public PublicReader, docs Mutator, baseURL string) *Service {
	return &Service{Public: public, Docs: docs, BaseURL: baseURL, TTL: DefaultTTL, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// EnableSharing switches sharing on for an owned document and persists it.
// Only signed-in owners can share; drafts live on the device and cannot be
// read publicly.
func (s *Service) EnableSharing(ctx context.Context, owner documents.Owner, id string) (Share, error) {
	if !owner.Authenticated() {
		return Share{}, documents.ErrSignInRequired
	}
	now := s.now()
	doc, err := s.Docs.Mutate(ctx, owner, id, func(doc resumes.Document) (resumes.Document, error) {
		return Enable(doc, now, s.TTL), nil
	})
	if err != nil {
		return Share{}, err
	}
	telemetry.Info("sharing.enabled", map[string]any{
		"document_id": doc.ID,
		"owner_id":    owner.UserID,
		"expires_at":  doc.ShareConfig.ExpiresAt,
	})
	return Share{Resume: doc, URL: BuildShareURL(s.BaseURL, doc.ID), ExpiresAt: doc.ShareConfig.ExpiresAt}, nil
}

// View returns a publicly shared document. Expiry is evaluated on every
// read; nothing is revoked or rewritten.
func (s *Service) View(ctx context.Context, id string) (resumes.Document, error) {
	doc, err := s.Public.GetPublic(ctx, id)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			metrics.IncShareView("not_found")
		} else {
			metrics.IncShareView("error")
		}
		return resumes.Document{}, err
	}
	if err := Check(doc, s.now()); err != nil {
		if errors.Is(err, ErrExpired) {
			metrics.IncShareView("expired")
		} else {
			metrics.IncShareView("not_found")
		}
		return resumes.Document{}, err
	}
	metrics.IncShareView("ok")
	return doc, nil
}
