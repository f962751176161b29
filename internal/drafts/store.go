// Package drafts persists resume drafts in a device's local key/value storage,
// one JSON array of documents per owner scope.
package drafts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/kv"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// AnonymousScope is the scope holding drafts of a signed-out user.
const AnonymousScope = "anonymous"

const (
	listKeyPrefix   = "resumes_"
	legacyKeyPrefix = "resume_"
)

// ListKey returns the storage key holding the document array for scope.
func ListKey(scope string) string { return listKeyPrefix + scope }

// LegacyKey returns the pre-array storage key that held a single document.
func LegacyKey(scope string) string { return legacyKeyPrefix + scope }

// Store reads and writes drafts through a kv.Store.
type Store struct {
	KV  kv.Store
	Now func() time.Time
}

// New constructs a Store over the given device storage.
func New(store kv.Store) *Store {
	return &Store{KV: store, Now: time.Now}
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// LoadAll returns every document in scope. Legacy layouts are migrated and
// written back on first read. Unparseable data is treated as empty; only
// storage faults are returned.
func (s *Store) LoadAll(ctx context.Context, scope string) ([]resumes.Document, error) {
	raw, ok, err := s.KV.Get(ctx, ListKey(scope))
	if err != nil {
		return nil, fmt.Errorf("load drafts: %w", err)
	}
	if ok {
		return s.loadCurrent(ctx, scope, raw)
	}
	return s.migrateLegacy(ctx, scope)
}

func (s *Store) loadCurrent(ctx context.Context, scope, raw string) ([]resumes.Document, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) > 0 && data[0] == '{' {
		doc, err := resumes.DecodeDocument(data)
		if err != nil {
			logCorrupt(scope, ListKey(scope), err)
			return []resumes.Document{}, nil
		}
		docs := []resumes.Document{assignID(doc)}
		if err := s.write(ctx, scope, docs); err != nil {
			return nil, err
		}
		return docs, nil
	}

	docs, err := resumes.DecodeDocuments(data)
	if err != nil {
		logCorrupt(scope, ListKey(scope), err)
		return []resumes.Document{}, nil
	}
	for i := range docs {
		docs[i] = assignID(docs[i])
	}
	if changed(data, docs) {
		if err := s.write(ctx, scope, docs); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (s *Store) migrateLegacy(ctx context.Context, scope string) ([]resumes.Document, error) {
	raw, ok, err := s.KV.Get(ctx, LegacyKey(scope))
	if err != nil {
		return nil, fmt.Errorf("load legacy draft: %w", err)
	}
	if !ok {
		return []resumes.Document{}, nil
	}
	doc, err := resumes.DecodeDocument([]byte(raw))
	if err != nil {
		logCorrupt(scope, LegacyKey(scope), err)
		return []resumes.Document{}, nil
	}
	docs := []resumes.Document{assignID(doc)}
	if err := s.write(ctx, scope, docs); err != nil {
		return nil, err
	}
	if err := s.KV.Delete(ctx, LegacyKey(scope)); err != nil {
		return nil, fmt.Errorf("remove legacy draft: %w", err)
	}
	telemetry.Info("drafts.legacy_migrated", map[string]any{
		"scope":       scope,
		"document_id": docs[0].ID,
	})
	return docs, nil
}

// Save inserts or replaces doc in scope and returns the stored document.
// Sentinel ids are replaced with a new UUID; LastModified is set to now.
func (s *Store) Save(ctx context.Context, scope string, doc resumes.Document) (resumes.Document, error) {
	docs, err := s.LoadAll(ctx, scope)
	if err != nil {
		return resumes.Document{}, err
	}
	out := resumes.Normalize(doc)
	if resumes.IsSentinelID(out.ID) {
		out.ID = uuid.NewString()
	}
	out.LastModified = s.now().UnixMilli()

	replaced := false
	for i := range docs {
		if docs[i].ID == out.ID {
			docs[i] = out
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append(docs, out)
	}
	if err := s.write(ctx, scope, docs); err != nil {
		return resumes.Document{}, err
	}
	metrics.IncResumeSaved("local")
	return out, nil
}

// Get returns the document with id in scope. A missing document is reported
// with ok=false and no error.
func (s *Store) Get(ctx context.Context, scope, id string) (resumes.Document, bool, error) {
	docs, err := s.LoadAll(ctx, scope)
	if err != nil {
		return resumes.Document{}, false, err
	}
	for _, doc := range docs {
		if doc.ID == id {
			return doc, true, nil
		}
	}
	return resumes.Document{}, false, nil
}

// Delete removes the document with id from scope. Missing ids are a no-op.
func (s *Store) Delete(ctx context.Context, scope, id string) error {
	docs, err := s.LoadAll(ctx, scope)
	if err != nil {
		return err
	}
	kept := make([]resumes.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.ID != id {
			kept = append(kept, doc)
		}
	}
	if len(kept) == len(docs) {
		return nil
	}
	return s.write(ctx, scope, kept)
}

// Duplicate saves a copy of the document with id as a new draft.
func (s *Store) Duplicate(ctx context.Context, scope, id string) (resumes.Document, error) {
	src, ok, err := s.Get(ctx, scope, id)
	if err != nil {
		return resumes.Document{}, err
	}
	if !ok {
		return resumes.Document{}, resumes.ErrNotFound
	}
	return s.Save(ctx, scope, resumes.CopyOf(src))
}

func (s *Store) write(ctx context.Context, scope string, docs []resumes.Document) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode drafts: %w", err)
	}
	if err := s.KV.Set(ctx, ListKey(scope), string(data)); err != nil {
		return fmt.Errorf("write drafts: %w", err)
	}
	return nil
}

func assignID(doc resumes.Document) resumes.Document {
	if resumes.IsSentinelID(doc.ID) {
		doc.ID = uuid.NewString()
	}
	return doc
}

// changed reports whether the decoded documents differ from what is stored.
func changed(stored []byte, docs []resumes.Document) bool {
	encoded, err := json.Marshal(docs)
	if err != nil {
		return true
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, stored); err != nil {
		return true
	}
	return !bytes.Equal(compact.Bytes(), encoded)
}

func logCorrupt(scope, key string, err error) {
	telemetry.Warn("drafts.corrupt", map[string]any{
		"scope": scope,
		"key":   key,
		"error": err.Error(),
	})
}
