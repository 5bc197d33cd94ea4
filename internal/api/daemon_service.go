package api

import (
	"context"
	"time"

	"github.com/hirrd/hirrd/internal/gate"
	"github.com/hirrd/hirrd/internal/store"
)

// DaemonService implements hirrd.v1.DaemonService.
type DaemonService struct {
	instanceName string
	feedKind     string
	startedAt    time.Time
	gate         *gate.Gate
	db           *store.DB
}

// NewDaemonService creates a new daemon service.
func NewDaemonService(instanceName, feedKind string, g *gate.Gate, db *store.DB) *DaemonService {
	return &DaemonService{
		instanceName: instanceName,
		feedKind:     feedKind,
		startedAt:    time.Now(),
		gate:         g,
		db:           db,
	}
}

func (s *DaemonService) GetStatus(ctx context.Context, _ *GetStatusRequest) (*GetStatusResponse, error) {
	resp := &GetStatusResponse{
		Instance: s.instanceName,
		Feed:     s.feedKind,
		UptimeMs: time.Since(s.startedAt).Milliseconds(),
	}
	for _, st := range s.gate.Unlocked() {
		resp.UnlockedStates = append(resp.UnlockedStates, string(st))
	}

	if s.db != nil {
		if n, err := s.db.ApplicationCount(ctx); err == nil {
			resp.ApplicationCount = n
		}
		if n, err := s.db.MessageCount(ctx); err == nil {
			resp.MessageCount = n
		}
	}

	return resp, nil
}
