// Package draftsync pushes a device's anonymous drafts into the signed-in
// user's remote collection.
package draftsync

import (
	"context"
	"fmt"
	"time"

	"resume-builder/internal/drafts"
	"resume-builder/internal/kv"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// Saver is the remote write used by Sync.
type Saver interface {
	Save(ctx context.Context, ownerID string, doc resumes.Document) (resumes.Document, error)
}

// FailedDocument describes a draft that could not be pushed.
type FailedDocument struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// Report summarizes one Sync run.
type Report struct {
	Attempted int              `json:"attempted"`
	Synced    int              `json:"synced"`
	Failed    []FailedDocument `json:"failed"`
}

// Summary renders the report for request logs.
func (r Report) Summary() string {
	return fmt.Sprintf("attempted=%d synced=%d failed=%d", r.Attempted, r.Synced, len(r.Failed))
}

type Service struct {
	Remote Saver
	Now    func() time.Time
}

func NewService(remote Saver) *Service {
	return &Service{Remote: remote, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Sync copies every anonymous draft on device to ownerID's remote store,
// one document at a time. A failed document is logged and skipped; the
// drafts themselves are left in place. Re-running is safe since saves are
// upserts keyed by the draft id.
func (s *Service) Sync(ctx context.Context, device kv.Store, ownerID string) Report {
	report := Report{Failed: []FailedDocument{}}
	start := s.now()

	docs, err := drafts.New(device).LoadAll(ctx, drafts.AnonymousScope)
	if err != nil {
		telemetry.Error("draftsync.load_failed", map[string]any{
			"owner_id": ownerID,
			"error":    err.Error(),
		})
		return report
	}
	if len(docs) == 0 {
		return report
	}

	metrics.IncDraftSyncRun()
	for _, doc := range docs {
		report.Attempted++
		if err := ctx.Err(); err != nil {
			report.Failed = append(report.Failed, FailedDocument{ID: doc.ID, Title: doc.Title, Error: err.Error()})
			continue
		}
		if _, err := s.Remote.Save(ctx, ownerID, doc); err != nil {
			telemetry.Error("draftsync.document_failed", map[string]any{
				"owner_id":    ownerID,
				"document_id": doc.ID,
				"error":       err.Error(),
			})
			report.Failed = append(report.Failed, FailedDocument{ID: doc.ID, Title: doc.Title, Error: err.Error()})
			continue
		}
		report.Synced++
	}

	elapsed := s.now().Sub(start)
	metrics.AddDraftSyncDocuments(report.Synced)
	metrics.AddDraftSyncFailures(len(report.Failed))
	metrics.ObserveDraftSyncDurationMs(float64(elapsed.Microseconds()) / 1000.0)
	telemetry.Info("draftsync.complete", map[string]any{
		"owner_id":    ownerID,
		"attempted":   report.Attempted,
		"synced":      report.Synced,
		"failed":      len(report.Failed),
		"duration_ms": float64(elapsed.Microseconds()) / 1000.0,
	})
	return report
}
