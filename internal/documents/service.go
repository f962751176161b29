package documents

import (
	"context"
	"strings"
	"time"

	"resume-builder/internal/drafts"
	"resume-builder/internal/kv"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/keylock"
)

// MutateFunc transforms a loaded document. It must not keep references to
// its argument.
type MutateFunc func(resumes.Document) (resumes.Document, error)

// Service routes document operations to the store owning them and
// serializes writes per document.
type Service struct {
	Devices kv.Store
	Remote  *resumes.RemoteStore
	Locks   *keylock.Locker
	Now     func() time.Time
}

func NewService(devices kv.Store, remote *resumes.RemoteStore) *Service {
	return &Service{Devices: devices, Remote: remote, Locks: keylock.New(), Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// For returns the store for owner: remote when a user is signed in, the
// device's drafts otherwise.
func (s *Service) For(owner Owner) (Store, error) {
	if owner.Authenticated() {
		return remoteStore{remote: s.Remote, ownerID: owner.UserID}, nil
	}
	if strings.TrimSpace(owner.DeviceID) == "" {
		return nil, ErrNoOwner
	}
	return localStore{drafts: drafts.New(kv.Device(s.Devices, owner.DeviceID))}, nil
}

// lock serializes writes to one remote document. Local drafts share a single
// stored list per device, so the whole device is locked instead.
func (s *Service) lock(owner Owner, id string) func() {
	if !owner.Authenticated() {
		return s.Locks.Lock(owner.route())
	}
	return s.Locks.Lock(owner.route() + "|" + id)
}

// readLock guards local reads, which may write migrated or repaired drafts
// back to the device. Remote reads never write and take no lock.
func (s *Service) readLock(owner Owner) func() {
	if owner.Authenticated() {
		return func() {}
	}
	return s.lock(owner, "")
}

func (s *Service) List(ctx context.Context, owner Owner) ([]resumes.Document, error) {
	store, err := s.For(owner)
	if err != nil {
		return nil, err
	}
	defer s.readLock(owner)()
	return store.List(ctx)
}

func (s *Service) Get(ctx context.Context, owner Owner, id string) (resumes.Document, error) {
	store, err := s.For(owner)
	if err != nil {
		return resumes.Document{}, err
	}
	defer s.readLock(owner)()
	return store.Get(ctx, id)
}

// Create seeds a default document and saves it.
func (s *Service) Create(ctx context.Context, owner Owner, title string) (resumes.Document, error) {
	doc := resumes.NewDefault(s.now())
	if t := strings.TrimSpace(title); t != "" {
		doc.Title = t
	}
	return s.Save(ctx, owner, doc)
}

// Save persists doc and returns the stored copy with its canonical id.
func (s *Service) Save(ctx context.Context, owner Owner, doc resumes.Document) (resumes.Document, error) {
	store, err := s.For(owner)
	if err != nil {
		return resumes.Document{}, err
	}
	if !resumes.IsSentinelID(doc.ID) || !owner.Authenticated() {
		defer s.lock(owner, doc.ID)()
	}
	return store.Save(ctx, doc)
}

// Mutate loads the document, applies fn and saves the result under the
// document's lock.
func (s *Service) Mutate(ctx context.Context, owner Owner, id string, fn MutateFunc) (resumes.Document, error) {
	store, err := s.For(owner)
	if err != nil {
		return resumes.Document{}, err
	}
	defer s.lock(owner, id)()

	doc, err := store.Get(ctx, id)
	if err != nil {
		return resumes.Document{}, err
	}
	next, err := fn(doc)
	if err != nil {
		return resumes.Document{}, err
	}
	next.ID = doc.ID
	return store.Save(ctx, next)
}

func (s *Service) Delete(ctx context.Context, owner Owner, id string) error {
	store, err := s.For(owner)
	if err != nil {
		return err
	}
	defer s.lock(owner, id)()
	return store.Delete(ctx, id)
}

func (s *Service) Duplicate(ctx context.Context, owner Owner, id string) (resumes.Document, error) {
	store, err := s.For(owner)
	if err != nil {
		return resumes.Document{}, err
	}
	defer s.lock(owner, id)()
	return store.Duplicate(ctx, id)
}

// UserSaver saves documents on behalf of a signed-in user through the
// service, so its writes share the per-document locks of Delete and Mutate.
type UserSaver struct {
	Svc *Service
}

func (u UserSaver) Save(ctx context.Context, ownerID string, doc resumes.Document) (resumes.Document, error) {
	return u.Svc.Save(ctx, Owner{UserID: ownerID}, doc)
}
