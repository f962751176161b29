package drafts

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-builder/internal/kv"
	"resume-builder/internal/resumes"
)

func newTestStore(t *testing.T) (*Store, *kv.Memory, *time.Time) {
	t.Helper()
	mem := kv.NewMemory()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	s := New(mem)
	s.Now = func() time.Time { return now }
	return s, mem, &now
}

func TestLoadAllEmptyScope(t *testing.T) {
	s, _, _ := newTestStore(t)
	docs, err := s.LoadAll(context.Background(), AnonymousScope)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty list, got %d", len(docs))
	}
}

func TestLoadAllMigratesLegacyBareDocument(t *testing.T) {
	s, mem, _ := newTestStore(t)
	ctx := context.Background()
	legacy := `{"title":"Old","skills":["Go","SQL"],"experience":[{"company":"Acme"}]}`
	if err := mem.Set(ctx, LegacyKey(AnonymousScope), legacy); err != nil {
		t.Fatalf("seed: %v", err)
	}

	docs, err := s.LoadAll(ctx, AnonymousScope)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	doc := docs[0]
	if resumes.IsSentinelID(doc.ID) {
		t.Fatalf("expected generated id, got %q", doc.ID)
	}
	if len(doc.Skills) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(doc.Skills))
	}
	for _, skill := range doc.Skills {
		if skill.ID == "" {
			t.Fatalf("expected skill id to be backfilled")
		}
		if skill.Level != resumes.SkillIntermediate {
			t.Fatalf("expected Intermediate level, got %q", skill.Level)
		}
	}
	if doc.Skills[0].Name != "Go" || doc.Skills[1].Name != "SQL" {
		t.Fatalf("unexpected skill names: %+v", doc.Skills)
	}
	if doc.Experience[0].ID == "" {
		t.Fatalf("expected experience id to be backfilled")
	}

	if _, ok, _ := mem.Get(ctx, LegacyKey(AnonymousScope)); ok {
		t.Fatalf("expected legacy key removed")
	}
	if _, ok, _ := mem.Get(ctx, ListKey(AnonymousScope)); !ok {
		t.Fatalf("expected migrated list to be written")
	}

	again, err := s.LoadAll(ctx, AnonymousScope)
	if err != nil {
		t.Fatalf("second LoadAll: %v", err)
	}
	if again[0].ID != doc.ID || again[0].Skills[0].ID != doc.Skills[0].ID {
		t.Fatalf("expected migration to be persisted, ids changed between reads")
	}
}

func TestLoadAllWrapsBareObjectUnderListKey(t *testing.T) {
	s, mem, _ := newTestStore(t)
	ctx := context.Background()
	if err := mem.Set(ctx, ListKey(AnonymousScope), `{"id":"default","title":"Bare"}`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	docs, err := s.LoadAll(ctx, AnonymousScope)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "Bare" {
		t.Fatalf("unexpected docs: %+v", docs)
	}
	if docs[0].ID == resumes.SentinelID {
		t.Fatalf("expected sentinel id replaced")
	}
}

func TestLoadAllBackfillsArrayAndRepairsStorage(t *testing.T) {
	s, mem, _ := newTestStore(t)
	ctx := context.Background()
	if err := mem.Set(ctx, ListKey(AnonymousScope), `[{"id":"doc-1","projects":[{"name":"CLI"}]}]`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	first, err := s.LoadAll(ctx, AnonymousScope)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	projectID := first[0].Projects[0].ID
	if projectID == "" {
		t.Fatalf("expected project id backfilled")
	}
	second, err := s.LoadAll(ctx, AnonymousScope)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if second[0].Projects[0].ID != projectID {
		t.Fatalf("expected read-repair to persist project id")
	}
}

func TestLoadAllCorruptDataDegradesToEmpty(t *testing.T) {
	s, mem, _ := newTestStore(t)
	ctx := context.Background()
	if err := mem.Set(ctx, ListKey(AnonymousScope), `[{"id":`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	docs, err := s.LoadAll(ctx, AnonymousScope)
	if err != nil {
		t.Fatalf("expected no error for corrupt data, got %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty list, got %d", len(docs))
	}

	saved, err := s.Save(ctx, AnonymousScope, resumes.Document{Title: "Fresh"})
	if err != nil {
		t.Fatalf("Save after corruption: %v", err)
	}
	docs, _ = s.LoadAll(ctx, AnonymousScope)
	if len(docs) != 1 || docs[0].ID != saved.ID {
		t.Fatalf("expected fresh start to replace corrupt data")
	}
}

func TestSaveAssignsIDForSentinelAndKeepsItStable(t *testing.T) {
	s, _, now := newTestStore(t)
	ctx := context.Background()

	doc := resumes.NewDefault(*now)
	first, err := s.Save(ctx, AnonymousScope, doc)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if resumes.IsSentinelID(first.ID) {
		t.Fatalf("expected sentinel id replaced, got %q", first.ID)
	}
	if first.LastModified != now.UnixMilli() {
		t.Fatalf("expected lastModified set to now")
	}

	*now = now.Add(time.Minute)
	first.Title = "Renamed"
	second, err := s.Save(ctx, AnonymousScope, first)
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected stable id %q, got %q", first.ID, second.ID)
	}
	if second.LastModified <= first.LastModified {
		t.Fatalf("expected lastModified to advance")
	}

	docs, _ := s.LoadAll(ctx, AnonymousScope)
	if len(docs) != 1 {
		t.Fatalf("expected replace not append, got %d docs", len(docs))
	}
	got, ok, err := s.Get(ctx, AnonymousScope, first.ID)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Title != "Renamed" {
		t.Fatalf("unexpected title %q", got.Title)
	}
}

func TestGetMissingIsNotAnError(t *testing.T) {
	s, _, _ := newTestStore(t)
	_, ok, err := s.Get(context.Background(), AnonymousScope, "nope")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if ok {
		t.Fatalf("expected not found")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	a, _ := s.Save(ctx, AnonymousScope, resumes.Document{Title: "A"})
	b, _ := s.Save(ctx, AnonymousScope, resumes.Document{Title: "B"})

	if err := s.Delete(ctx, AnonymousScope, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, AnonymousScope, a.ID); err != nil {
		t.Fatalf("repeat Delete: %v", err)
	}
	docs, _ := s.LoadAll(ctx, AnonymousScope)
	if len(docs) != 1 || docs[0].ID != b.ID {
		t.Fatalf("expected only B to remain, got %+v", docs)
	}
}

func TestScopesAreIsolated(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Save(ctx, AnonymousScope, resumes.Document{Title: "anon"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	docs, _ := s.LoadAll(ctx, "user-1")
	if len(docs) != 0 {
		t.Fatalf("expected user scope to be empty")
	}
}

func TestDuplicateCreatesCopy(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	src, _ := s.Save(ctx, AnonymousScope, resumes.Document{Title: "CV"})

	dup, err := s.Duplicate(ctx, AnonymousScope, src.ID)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.ID == src.ID {
		t.Fatalf("expected new id")
	}
	if dup.Title != "CV"+resumes.CopySuffix {
		t.Fatalf("unexpected title %q", dup.Title)
	}
	if _, err := s.Duplicate(ctx, AnonymousScope, "missing"); !errors.Is(err, resumes.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type failingKV struct{ kv.Store }

func (failingKV) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("disk unavailable")
}

func TestLoadAllReturnsBackendFaults(t *testing.T) {
	s := New(failingKV{})
	if _, err := s.LoadAll(context.Background(), AnonymousScope); err == nil {
		t.Fatalf("expected backend error to surface")
	}
}
