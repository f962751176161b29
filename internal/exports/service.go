// Package exports writes downloadable snapshots of resumes to object storage.
package exports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"resume-builder/internal/documents"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
)

const (
	contentType   = "application/json"
	fileExtension = ".resume.json"
	routePrefix   = "/api/v1/exports/"
)

// Getter loads an owned document.
type Getter interface {
	Get(ctx context.Context, owner documents.Owner, id string) (resumes.Document, error)
}

// Export describes a stored snapshot and where to download it.
type Export struct {
	Key       string `json:"key"`
	FileName  string `json:"fileName"`
	SizeBytes int64  `json:"sizeBytes"`
	URL       string `json:"url"`
}

type snapshot struct {
	Format     string           `json:"format"`
	ExportedAt time.Time        `json:"exportedAt"`
	Resume     resumes.Document `json:"resume"`
}

type Service struct {
	Store   object.ObjectStore
	Docs    Getter
	BaseURL string
	Now     func() time.Time
}

func NewService(store object.ObjectStore, docs Getter, baseURL string) *Service {
	return &Service{Store: store, Docs: docs, BaseURL: baseURL, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// DownloadURL returns the link serving key.
func DownloadURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + routePrefix + strings.TrimLeft(key, "/")
}

// Export writes a snapshot of doc into ownerID's namespace.
func (s *Service) Export(ctx context.Context, ownerID string, doc resumes.Document) (Export, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Export{}, documents.ErrSignInRequired
	}
	data, err := json.MarshalIndent(snapshot{
		Format:     "resume-builder/v1",
		ExportedAt: s.now(),
		Resume:     doc,
	}, "", "  ")
	if err != nil {
		return Export{}, fmt.Errorf("encode export: %w", err)
	}

	fileName := util.SlugFileName(doc.Title, "resume") + fileExtension
	obj, err := s.Store.Put(ctx, ownerID, fileName, contentType, bytes.NewReader(data))
	if err != nil {
		return Export{}, fmt.Errorf("store export: %w", err)
	}
	telemetry.Info("exports.created", map[string]any{
		"document_id": doc.ID,
		"owner_id":    ownerID,
		"size_bytes":  obj.SizeBytes,
	})
	return Export{
		Key:       obj.Key,
		FileName:  fileName,
		SizeBytes: obj.SizeBytes,
		URL:       DownloadURL(s.BaseURL, obj.Key),
	}, nil
}

// ExportOwned loads an owned document and exports it.
func (s *Service) ExportOwned(ctx context.Context, owner documents.Owner, id string) (Export, error) {
	if !owner.Authenticated() {
		return Export{}, documents.ErrSignInRequired
	}
	doc, err := s.Docs.Get(ctx, owner, id)
	if err != nil {
		return Export{}, err
	}
	return s.Export(ctx, owner.UserID, doc)
}
