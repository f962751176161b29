package draftsync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"resume-builder/internal/documents"
	"resume-builder/internal/drafts"
	"resume-builder/internal/kv"
	"resume-builder/internal/resumes"
)

type flakySaver struct {
	remote *resumes.RemoteStore
	failID string
	calls  int
}

func (f *flakySaver) Save(ctx context.Context, ownerID string, doc resumes.Document) (resumes.Document, error) {
	f.calls++
	if doc.ID == f.failID {
		return resumes.Document{}, errors.New("remote unavailable")
	}
	return f.remote.Save(ctx, ownerID, doc)
}

// gatedRepo parks Upsert calls once armed until release is closed.
type gatedRepo struct {
	*resumes.MemoryRepo
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (r *gatedRepo) Upsert(ctx context.Context, rec resumes.Record) error {
	if r.armed.Load() {
		r.entered <- struct{}{}
		<-r.release
	}
	return r.MemoryRepo.Upsert(ctx, rec)
}

var seededAt = time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

func seedDrafts(t *testing.T, device kv.Store, docs ...resumes.Document) []resumes.Document {
	t.Helper()
	store := drafts.New(device)
	store.Now = func() time.Time { return seededAt }
	out := make([]resumes.Document, 0, len(docs))
	for _, doc := range docs {
		saved, err := store.Save(context.Background(), drafts.AnonymousScope, doc)
		if err != nil {
			t.Fatalf("seed draft: %v", err)
		}
		out = append(out, saved)
	}
	return out
}

func TestSyncWithoutDraftsIsNoop(t *testing.T) {
	repo := resumes.NewMemoryRepo()
	svc := NewService(resumes.NewRemoteStore(repo))

	report := svc.Sync(context.Background(), kv.NewMemory(), "user-1")
	if report.Attempted != 0 || report.Synced != 0 || len(report.Failed) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if repo.Count() != 0 {
		t.Fatalf("expected no remote writes")
	}
}

func TestSyncPushesDraftWithContent(t *testing.T) {
	ctx := context.Background()
	device := kv.NewMemory()
	remote := resumes.NewRemoteStore(resumes.NewMemoryRepo())
	remote.Now = func() time.Time { return seededAt.Add(time.Hour) }
	seeded := seedDrafts(t, device, resumes.Document{
		Title:  "Draft",
		Skills: []resumes.Skill{{Name: "Go", Level: resumes.SkillAdvanced}},
	})

	report := NewService(remote).Sync(ctx, device, "user-1")
	if report.Attempted != 1 || report.Synced != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	got, err := remote.Get(ctx, "user-1", seeded[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != seeded[0].ID || got.Title != "Draft" {
		t.Fatalf("unexpected remote document: %+v", got)
	}
	if got.LastModified <= seeded[0].LastModified {
		t.Fatalf("expected remote lastModified after %d, got %d", seeded[0].LastModified, got.LastModified)
	}
	if len(got.Skills) != 1 || got.Skills[0].Name != "Go" || got.Skills[0].Level != resumes.SkillAdvanced {
		t.Fatalf("unexpected skills: %+v", got.Skills)
	}

	local, _ := drafts.New(device).LoadAll(ctx, drafts.AnonymousScope)
	if len(local) != 1 {
		t.Fatalf("local drafts must be kept, got %d", len(local))
	}
}

func TestSyncTwiceDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	device := kv.NewMemory()
	repo := resumes.NewMemoryRepo()
	svc := NewService(resumes.NewRemoteStore(repo))
	seedDrafts(t, device, resumes.Document{Title: "A"}, resumes.Document{Title: "B"})

	first := svc.Sync(ctx, device, "user-1")
	second := svc.Sync(ctx, device, "user-1")
	if first.Synced != 2 || second.Synced != 2 {
		t.Fatalf("unexpected reports: %+v %+v", first, second)
	}
	if repo.Count() != 2 {
		t.Fatalf("expected 2 remote rows after two runs, got %d", repo.Count())
	}
}

func TestSyncContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	device := kv.NewMemory()
	remote := resumes.NewRemoteStore(resumes.NewMemoryRepo())
	seeded := seedDrafts(t, device,
		resumes.Document{Title: "one"},
		resumes.Document{Title: "two"},
		resumes.Document{Title: "three"},
	)
	saver := &flakySaver{remote: remote, failID: seeded[1].ID}
	svc := &Service{Remote: saver, Now: func() time.Time { return time.Unix(0, 0) }}

	report := svc.Sync(ctx, device, "user-1")
	if saver.calls != 3 {
		t.Fatalf("expected every draft attempted, got %d calls", saver.calls)
	}
	if report.Attempted != 3 || report.Synced != 2 || len(report.Failed) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Failed[0].ID != seeded[1].ID || report.Failed[0].Title != "two" {
		t.Fatalf("unexpected failure entry: %+v", report.Failed[0])
	}

	local, _ := drafts.New(device).LoadAll(ctx, drafts.AnonymousScope)
	if len(local) != 3 {
		t.Fatalf("local drafts must survive partial failure, got %d", len(local))
	}

	saver.failID = ""
	retry := svc.Sync(ctx, device, "user-1")
	if retry.Synced != 3 || len(retry.Failed) != 0 {
		t.Fatalf("expected retry to converge, got %+v", retry)
	}
	docs, _ := remote.List(ctx, "user-1")
	if len(docs) != 3 {
		t.Fatalf("expected 3 remote documents, got %d", len(docs))
	}
}

func TestSyncCannotOverwriteAnotherOwnersDocument(t *testing.T) {
	ctx := context.Background()
	device := kv.NewMemory()
	remote := resumes.NewRemoteStore(resumes.NewMemoryRepo())
	owned, err := remote.Save(ctx, "user-2", resumes.Document{Title: "theirs"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	seedDrafts(t, device, resumes.Document{ID: owned.ID, Title: "mine"})

	report := NewService(remote).Sync(ctx, device, "user-1")
	if report.Synced != 0 || len(report.Failed) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	got, _ := remote.Get(ctx, "user-2", owned.ID)
	if got.Title != "theirs" {
		t.Fatalf("foreign document overwritten")
	}
}

func TestSyncSaveHoldsDocumentLockAgainstDelete(t *testing.T) {
	ctx := context.Background()
	device := kv.NewMemory()
	repo := &gatedRepo{
		MemoryRepo: resumes.NewMemoryRepo(),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	docs := documents.NewService(kv.NewMemory(), resumes.NewRemoteStore(repo))
	svc := NewService(documents.UserSaver{Svc: docs})
	seeded := seedDrafts(t, device, resumes.Document{Title: "Draft"})

	if report := svc.Sync(ctx, device, "user-1"); report.Synced != 1 {
		t.Fatalf("unexpected first report: %+v", report)
	}

	repo.armed.Store(true)
	synced := make(chan Report, 1)
	go func() { synced <- svc.Sync(ctx, device, "user-1") }()
	<-repo.entered
	repo.armed.Store(false)

	owner := documents.Owner{UserID: "user-1"}
	deleted := make(chan error, 1)
	go func() { deleted <- docs.Delete(ctx, owner, seeded[0].ID) }()

	select {
	case err := <-deleted:
		t.Fatalf("delete returned (err=%v) while a sync save was in flight", err)
	case <-time.After(50 * time.Millisecond):
	}
	close(repo.release)

	if report := <-synced; report.Synced != 1 {
		t.Fatalf("unexpected second report: %+v", report)
	}
	if err := <-deleted; err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := docs.Get(ctx, owner, seeded[0].ID); !errors.Is(err, resumes.ErrNotFound) {
		t.Fatalf("sync save resurrected deleted document: %v", err)
	}
}
