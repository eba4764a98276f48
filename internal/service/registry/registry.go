package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
)

// Service keeps an in-memory snapshot of the active geofences and their
// assignment sets so sample evaluation never queries the database per
// sample. The snapshot is reloaded when an admin write invalidates it or
// when it is older than maxAge.
type Service struct {
	repo   geofence.GeofenceRepository
	maxAge time.Duration

	mu       sync.RWMutex
	fences   []geofence.Geofence
	version  uint64
	loadedAt time.Time

	now func() time.Time
}

func NewService(repo geofence.GeofenceRepository, maxAge time.Duration) *Service {
	return &Service{
		repo:   repo,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Snapshot returns the cached active geofences and the snapshot version.
// Callers must not mutate the returned slice.
func (s *Service) Snapshot(ctx context.Context) ([]geofence.Geofence, uint64, error) {
	s.mu.RLock()
	if !s.stale() {
		fences, version := s.fences, s.version
		s.mu.RUnlock()
		return fences, version, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have reloaded while we waited for the lock.
	if !s.stale() {
		return s.fences, s.version, nil
	}

	fences, err := s.repo.ListActive(ctx)
	if err != nil {
		// Serve the previous snapshot if there is one; evaluation keeps
		// running on slightly stale definitions rather than stopping.
		if s.version > 0 {
			return s.fences, s.version, nil
		}
		return nil, 0, fmt.Errorf("failed to load geofence registry: %w", err)
	}

	s.fences = fences
	s.version++
	s.loadedAt = s.now()

	return s.fences, s.version, nil
}

// Invalidate forces the next Snapshot call to reload. Admin writes call
// this so definition changes reach evaluation without waiting out maxAge.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadedAt = time.Time{}
}

// Version returns the current snapshot version without triggering a reload.
func (s *Service) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Service) stale() bool {
	return s.loadedAt.IsZero() || s.now().Sub(s.loadedAt) >= s.maxAge
}
