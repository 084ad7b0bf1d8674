package services

import (
	"context"
	"time"

	"carsource_backend/internal/repositories"
	"carsource_backend/pkg/apperrors"
)

type PresenceService interface {
	// Heartbeat records that the user is currently online.
	Heartbeat(ctx context.Context, userID string) error
	// IsOnline reports whether the user heartbeated within the online window.
	IsOnline(ctx context.Context, userID string) (bool, error)
	LastSeen(ctx context.Context, userID string) (*time.Time, error)
	// PruneStale drops rows older than the retention period.
	PruneStale(ctx context.Context) (int64, error)
}

type presenceService struct {
	repo         repositories.PresenceRepository
	onlineWindow time.Duration
	retention    time.Duration
}

func NewPresenceService(repo repositories.PresenceRepository, onlineWindow, retention time.Duration) PresenceService {
	return &presenceService{
		repo:         repo,
		onlineWindow: onlineWindow,
		retention:    retention,
	}
}

func (s *presenceService) Heartbeat(ctx context.Context, userID string) error {
	if err := s.repo.Upsert(userID, time.Now()); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *presenceService) IsOnline(ctx context.Context, userID string) (bool, error) {
	presence, err := s.repo.Get(userID)
	if err != nil {
		return false, apperrors.InternalError(err)
	}
	if presence == nil {
		return false, nil
	}
	return time.Since(presence.LastSeenAt) <= s.onlineWindow, nil
}

func (s *presenceService) LastSeen(ctx context.Context, userID string) (*time.Time, error) {
	presence, err := s.repo.Get(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if presence == nil {
		return nil, nil
	}
	return &presence.LastSeenAt, nil
}

func (s *presenceService) PruneStale(ctx context.Context) (int64, error) {
	return s.repo.PruneStale(time.Now().Add(-s.retention))
}
