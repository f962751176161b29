package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// CopySuffix is appended to the title of duplicated documents.
const CopySuffix = " (Copy)"

// RemoteStore is the owner-scoped document API over a Repo. It normalizes
// every document crossing the boundary and stamps LastModified on writes.
type RemoteStore struct {
	Repo Repo
	Now  func() time.Time
}

// NewRemoteStore constructs a RemoteStore with the wall clock.
func NewRemoteStore(repo Repo) *RemoteStore {
	return &RemoteStore{Repo: repo, Now: time.Now}
}

func (s *RemoteStore) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// List returns the owner's documents, newest LastModified first. A row that
// cannot be decoded fails the whole listing with a StoreError.
func (s *RemoteStore) List(ctx context.Context, ownerID string) ([]Document, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrInvalidInput
	}
	recs, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeErr("list", err)
	}
	out := make([]Document, 0, len(recs))
	for _, rec := range recs {
		doc, err := decodeRecord(rec)
		if err != nil {
			telemetry.Error("resumes.decode_failed", map[string]any{
				"document_id": rec.ID,
				"owner_id":    ownerID,
				"error":       err.Error(),
			})
			return nil, storeErr("decode", fmt.Errorf("document %s: %w", rec.ID, err))
		}
		out = append(out, doc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastModified > out[j].LastModified
	})
	return out, nil
}

// Get returns one document owned by ownerID. A document owned by someone
// else is reported as ErrNotFound.
func (s *RemoteStore) Get(ctx context.Context, ownerID, id string) (Document, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(id) == "" {
		return Document{}, ErrNotFound
	}
	rec, err := s.Repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, storeErr("get", err)
	}
	doc, err := decodeRecord(rec)
	if err != nil {
		return Document{}, storeErr("decode", err)
	}
	return doc, nil
}

// GetPublic reads a document without owner scoping. It backs the public
// share view only.
func (s *RemoteStore) GetPublic(ctx context.Context, id string) (Document, error) {
	if strings.TrimSpace(id) == "" {
		return Document{}, ErrNotFound
	}
	rec, err := s.Repo.GetPublic(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, storeErr("get_public", err)
	}
	doc, err := decodeRecord(rec)
	if err != nil {
		return Document{}, storeErr("decode", err)
	}
	return doc, nil
}

// Save upserts doc for ownerID. Sentinel ids are replaced with a new UUID and
// LastModified is set to now. The stored document is returned.
func (s *RemoteStore) Save(ctx context.Context, ownerID string, doc Document) (Document, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Document{}, ErrInvalidInput
	}
	out := Normalize(doc)
	if IsSentinelID(out.ID) {
		out.ID = uuid.NewString()
	}
	now := s.now()
	out.LastModified = now.UnixMilli()

	data, err := json.Marshal(out)
	if err != nil {
		return Document{}, storeErr("encode", err)
	}
	err = s.Repo.Upsert(ctx, Record{
		ID:        out.ID,
		OwnerID:   ownerID,
		Title:     out.Title,
		Data:      data,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, storeErr("save", err)
	}
	metrics.IncResumeSaved("remote")
	return out, nil
}

// Delete removes the owner's document. Deleting a missing or foreign document
// is a no-op.
func (s *RemoteStore) Delete(ctx context.Context, ownerID, id string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrInvalidInput
	}
	affected, err := s.Repo.Delete(ctx, ownerID, id)
	if err != nil {
		return storeErr("delete", err)
	}
	if affected == 0 {
		telemetry.Info("resumes.delete_noop", map[string]any{
			"document_id": id,
			"owner_id":    ownerID,
		})
	}
	return nil
}

// Duplicate copies an owned document into a new row.
func (s *RemoteStore) Duplicate(ctx context.Context, ownerID, id string) (Document, error) {
	src, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return Document{}, err
	}
	return s.Save(ctx, ownerID, CopyOf(src))
}

// CopyOf returns a copy of doc prepared to be saved as a new document. The
// copy is not shared even when the source is.
func CopyOf(doc Document) Document {
	out := doc.Clone()
	out.ID = ""
	out.Title = doc.Title + CopySuffix
	out.ShareConfig = nil
	return out
}

func decodeRecord(rec Record) (Document, error) {
	doc, err := DecodeDocument(rec.Data)
	if err != nil {
		return Document{}, err
	}
	// The row key is authoritative over the blob.
	doc.ID = rec.ID
	return doc, nil
}
