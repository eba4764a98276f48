package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fieldops-hr/geofence-engine-go/internal/domain/geofence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeofenceRepo struct {
	geofence.GeofenceRepository

	active    []geofence.Geofence
	loadCalls int
	loadErr   error
}

func (f *fakeGeofenceRepo) ListActive(ctx context.Context) ([]geofence.Geofence, error) {
	f.loadCalls++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]geofence.Geofence, len(f.active))
	copy(out, f.active)
	return out, nil
}

func fence(id, name string) geofence.Geofence {
	return geofence.Geofence{
		ID:        id,
		Name:      name,
		CenterLat: 24.7136,
		CenterLng: 46.6753,
		RadiusM:   100,
		IsActive:  true,
	}
}

func TestRegistry_SnapshotCachesWithinMaxAge(t *testing.T) {
	ctx := context.Background()
	repo := &fakeGeofenceRepo{active: []geofence.Geofence{fence("g1", "Site A")}}

	svc := NewService(repo, 30*time.Second)
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	fences, version, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, fences, 1)
	assert.Equal(t, uint64(1), version)

	// Within maxAge: no reload, same version.
	base = base.Add(10 * time.Second)
	_, version, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, 1, repo.loadCalls)
}

func TestRegistry_SnapshotReloadsAfterMaxAge(t *testing.T) {
	ctx := context.Background()
	repo := &fakeGeofenceRepo{active: []geofence.Geofence{fence("g1", "Site A")}}

	svc := NewService(repo, 30*time.Second)
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	_, _, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	// Definition change becomes visible once the snapshot ages out.
	repo.active = append(repo.active, fence("g2", "Site B"))
	base = base.Add(31 * time.Second)

	fences, version, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, fences, 2)
	assert.Equal(t, uint64(2), version)
	assert.Equal(t, 2, repo.loadCalls)
}

func TestRegistry_InvalidateForcesReload(t *testing.T) {
	ctx := context.Background()
	repo := &fakeGeofenceRepo{active: []geofence.Geofence{fence("g1", "Site A")}}

	svc := NewService(repo, time.Hour)
	_, version, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)

	repo.active[0].RadiusM = 250
	svc.Invalidate()

	fences, version, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), version)
	assert.Equal(t, 250, fences[0].RadiusM)
}

func TestRegistry_ServesStaleSnapshotOnLoadError(t *testing.T) {
	ctx := context.Background()
	repo := &fakeGeofenceRepo{active: []geofence.Geofence{fence("g1", "Site A")}}

	svc := NewService(repo, time.Hour)
	_, _, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	repo.loadErr = errors.New("connection refused")
	svc.Invalidate()

	fences, version, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, fences, 1)
	assert.Equal(t, uint64(1), version)
}

func TestRegistry_FirstLoadErrorPropagates(t *testing.T) {
	ctx := context.Background()
	repo := &fakeGeofenceRepo{loadErr: errors.New("connection refused")}

	svc := NewService(repo, time.Hour)
	_, _, err := svc.Snapshot(ctx)
	assert.Error(t, err)
}
