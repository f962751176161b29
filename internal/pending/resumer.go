package pending

import (
	"context"

	"resume-builder/internal/documents"
	"resume-builder/internal/exports"
	"resume-builder/internal/kv"
	"resume-builder/internal/resumes"
	"resume-builder/internal/sharing"
	"resume-builder/internal/shared/telemetry"
)

type Saver interface {
	Save(ctx context.Context, owner documents.Owner, doc resumes.Document) (resumes.Document, error)
}

type Sharer interface {
	EnableSharing(ctx context.Context, owner documents.Owner, id string) (sharing.Share, error)
}

type Exporter interface {
	Export(ctx context.Context, ownerID string, doc resumes.Document) (exports.Export, error)
}

// Result is the outcome of a resumed action.
type Result struct {
	Action Kind             `json:"action"`
	Resume resumes.Document `json:"resume"`
	Share  *sharing.Share   `json:"share,omitempty"`
	Export *exports.Export  `json:"export,omitempty"`
}

// Resumer completes a pending action once the user is signed in.
type Resumer struct {
	Docs    Saver
	Sharing Sharer
	Exports Exporter
}

// Resume consumes the device's pending action, saves its document to the
// signed-in owner and then performs the action on the saved copy. It returns
// nil when nothing is pending.
func (r *Resumer) Resume(ctx context.Context, device kv.Store, owner documents.Owner) (*Result, error) {
	if !owner.Authenticated() {
		return nil, documents.ErrSignInRequired
	}
	action, err := NewStore(device).Consume(ctx)
	if err != nil || action == nil {
		return nil, err
	}

	saved, err := r.Docs.Save(ctx, documents.Owner{UserID: owner.UserID}, action.Resume)
	if err != nil {
		telemetry.Error("pending.save_failed", map[string]any{
			"owner_id": owner.UserID,
			"action":   string(action.Kind),
			"error":    err.Error(),
		})
		return nil, err
	}

	out := &Result{Action: action.Kind, Resume: saved}
	switch action.Kind {
	case KindShare:
		share, err := r.Sharing.EnableSharing(ctx, owner, saved.ID)
		if err != nil {
			return nil, err
		}
		out.Resume = share.Resume
		out.Share = &share
	case KindDownload:
		exp, err := r.Exports.Export(ctx, owner.UserID, saved)
		if err != nil {
			return nil, err
		}
		out.Export = &exp
	}
	telemetry.Info("pending.resumed", map[string]any{
		"owner_id":    owner.UserID,
		"action":      string(action.Kind),
		"document_id": saved.ID,
	})
	return out, nil
}
