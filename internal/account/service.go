package account

import (
	"context"
	"errors"
	"strings"

	"resume-builder/internal/draftsync"
	"resume-builder/internal/kv"
)

// Service runs an explicit draft sync for a signed-in device. It covers the
// retry path after the automatic sync on session start left failures behind.
type Service struct {
	Sync    *draftsync.Service
	Guard   *draftsync.SessionGuard
	Devices kv.Store
}

func NewService(sync *draftsync.Service, guard *draftsync.SessionGuard, devices kv.Store) *Service {
	return &Service{Sync: sync, Guard: guard, Devices: devices}
}

// SyncDevice pushes deviceID's anonymous drafts to userID and marks the
// session as synced so the automatic pass does not repeat the work.
func (s *Service) SyncDevice(ctx context.Context, sessionID, deviceID, userID string) (draftsync.Report, error) {
	if strings.TrimSpace(deviceID) == "" || strings.TrimSpace(userID) == "" {
		return draftsync.Report{}, errors.New("deviceID and userID are required")
	}
	if sessionID == "" {
		sessionID = userID
	}
	if s.Guard != nil {
		s.Guard.Mark(draftsync.SessionKey(sessionID, deviceID))
	}
	return s.Sync.Sync(ctx, kv.Device(s.Devices, deviceID), userID), nil
}
