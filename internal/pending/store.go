// Package pending carries one user action across the sign-in redirect.
package pending

import (
	"context"
	"encoding/json"
	"fmt"

	"resume-builder/internal/kv"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/telemetry"
)

// Key is the device storage key holding the pending action.
const Key = "pending_action"

type Kind string

const (
	KindDownload Kind = "download"
	KindShare    Kind = "share"
)

func (k Kind) Valid() bool {
	return k == KindDownload || k == KindShare
}

// Action is an operation requested before sign-in, with the document it
// applies to.
type Action struct {
	Kind   Kind             `json:"action"`
	Resume resumes.Document `json:"resumeData"`
}

// Store keeps at most one Action per device.
type Store struct {
	KV kv.Store
}

func NewStore(device kv.Store) *Store {
	return &Store{KV: device}
}

// Set records an action, replacing any previous one.
func (s *Store) Set(ctx context.Context, kind Kind, doc resumes.Document) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown action %q", resumes.ErrInvalidInput, kind)
	}
	data, err := json.Marshal(Action{Kind: kind, Resume: doc})
	if err != nil {
		return fmt.Errorf("encode pending action: %w", err)
	}
	return s.KV.Set(ctx, Key, string(data))
}

// Consume returns the stored action and clears it in one step. It returns
// nil when nothing is pending. Unreadable values are discarded.
func (s *Store) Consume(ctx context.Context) (*Action, error) {
	raw, ok, err := s.KV.GetDel(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("consume pending action: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var stored struct {
		Kind   Kind            `json:"action"`
		Resume json.RawMessage `json:"resumeData"`
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || !stored.Kind.Valid() || len(stored.Resume) == 0 {
		telemetry.Warn("pending.discarded", map[string]any{"reason": "unreadable"})
		return nil, nil
	}
	doc, err := resumes.DecodeDocument(stored.Resume)
	if err != nil {
		telemetry.Warn("pending.discarded", map[string]any{"reason": "unreadable_resume", "error": err.Error()})
		return nil, nil
	}
	return &Action{Kind: stored.Kind, Resume: doc}, nil
}
