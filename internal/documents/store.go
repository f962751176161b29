package documents

import (
	"context"

	"resume-builder/internal/drafts"
	"resume-builder/internal/resumes"
)

// Store is the CRUD surface shared by local drafts and the remote store.
// Get, Duplicate report a missing document as resumes.ErrNotFound.
type Store interface {
	List(ctx context.Context) ([]resumes.Document, error)
	Get(ctx context.Context, id string) (resumes.Document, error)
	Save(ctx context.Context, doc resumes.Document) (resumes.Document, error)
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id string) (resumes.Document, error)
}

// localStore keeps documents in a device's drafts under the anonymous scope.
type localStore struct {
	drafts *drafts.Store
}

func (s localStore) List(ctx context.Context) ([]resumes.Document, error) {
	return s.drafts.LoadAll(ctx, drafts.AnonymousScope)
}

func (s localStore) Get(ctx context.Context, id string) (resumes.Document, error) {
	doc, ok, err := s.drafts.Get(ctx, drafts.AnonymousScope, id)
	if err != nil {
		return resumes.Document{}, err
	}
	if !ok {
		return resumes.Document{}, resumes.ErrNotFound
	}
	return doc, nil
}

func (s localStore) Save(ctx context.Context, doc resumes.Document) (resumes.Document, error) {
	return s.drafts.Save(ctx, drafts.AnonymousScope, doc)
}

func (s localStore) Delete(ctx context.Context, id string) error {
	return s.drafts.Delete(ctx, drafts.AnonymousScope, id)
}

func (s localStore) Duplicate(ctx context.Context, id string) (resumes.Document, error) {
	return s.drafts.Duplicate(ctx, drafts.AnonymousScope, id)
}

// remoteStore scopes the remote store to one owner.
type remoteStore struct {
	remote  *resumes.RemoteStore
	ownerID string
}

func (s remoteStore) List(ctx context.Context) ([]resumes.Document, error) {
	return s.remote.List(ctx, s.ownerID)
}

func (s remoteStore) Get(ctx context.Context, id string) (resumes.Document, error) {
	return s.remote.Get(ctx, s.ownerID, id)
}

func (s remoteStore) Save(ctx context.Context, doc resumes.Document) (resumes.Document, error) {
	return s.remote.Save(ctx, s.ownerID, doc)
}

func (s remoteStore) Delete(ctx context.Context, id string) error {
	return s.remote.Delete(ctx, s.ownerID, id)
}

func (s remoteStore) Duplicate(ctx context.Context, id string) (resumes.Document, error) {
	return s.remote.Duplicate(ctx, s.ownerID, id)
}
