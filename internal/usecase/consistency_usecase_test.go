package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estate-geo-service/internal/domain"
	apperrors "github.com/estate-geo-service/internal/pkg/errors"
	"github.com/estate-geo-service/internal/usecase"
)

func newConsistency(t *testing.T, store *memoryStore) *usecase.ConsistencyUseCase {
	return usecase.NewConsistencyUseCase(store, newRepair(t, store, 11), zap.NewNop(), 3)
}

func auditStore() *memoryStore {
	return newMemoryStore(
		listing(1, 40.75, -73.99, true),
		listing(2, 200, -73.99, true),
		listing(3, 0, 0, true),
		listing(4, 48.85, 2.35, true),
		withPoint(listing(5, 40.0, -74.0, true), -75.0, 41.0),
		&domain.GeoPlace{GeoRecord: domain.GeoRecord{ID: 6, Kind: domain.KindListing}},
		listing(7, 0, 0, false),
		listing(8, 40.72, -73.95, false),
	)
}

func TestConsistencyCheck_Categories(t *testing.T) {
	store := auditStore()
	report, err := newConsistency(t, store).Check(context.Background(), domain.AuditScope{Kind: domain.KindListing})
	require.NoError(t, err)

	assert.Equal(t, 8, report.Total)
	assert.Equal(t, 7, report.WithCoordinates)

	assert.Equal(t, []int64{6}, report.Defects[domain.DefectMissing].Sample)
	// latitude=200 is globally invalid, never out of region
	assert.Equal(t, []int64{2}, report.Defects[domain.DefectGloballyInvalid].Sample)
	// (0,0) is zero_degenerate only
	assert.Equal(t, []int64{3, 7}, report.Defects[domain.DefectZeroDegenerate].Sample)
	assert.Equal(t, []int64{4}, report.Defects[domain.DefectOutOfRegion].Sample)
	// scalars (40,-74) vs point (-75,41); records without geometry are not compared
	assert.Equal(t, []int64{5}, report.Defects[domain.DefectMismatch].Sample)
	assert.True(t, report.NeedsFix())

	assert.Zero(t, store.saves)
}

func TestConsistencyCheck_SampleIsCapped(t *testing.T) {
	var places []*domain.GeoPlace
	for id := int64(1); id <= 12; id++ {
		places = append(places, listing(id, 0, 0, true))
	}

	report, err := newConsistency(t, newMemoryStore(places...)).Check(context.Background(), domain.AuditScope{Kind: domain.KindListing})
	require.NoError(t, err)

	bucket := report.Defects[domain.DefectZeroDegenerate]
	assert.Equal(t, 12, bucket.Count)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, bucket.Sample)
}

func TestConsistencyCheck_Scope(t *testing.T) {
	uc := newConsistency(t, auditStore())
	ctx := context.Background()

	from, to := int64(2), int64(4)
	report, err := uc.Check(ctx, domain.AuditScope{Kind: domain.KindListing, FromID: &from, ToID: &to})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Zero(t, report.Count(domain.DefectMissing))

	report, err = uc.Check(ctx, domain.AuditScope{Kind: domain.KindSchool})
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.False(t, report.NeedsFix())

	_, err = uc.Check(ctx, domain.AuditScope{Kind: "warehouse"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidKind))

	_, err = uc.Check(ctx, domain.AuditScope{Kind: domain.KindListing, FromID: &to, ToID: &from})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest))
}

func TestConsistencyFix_LeavesNoFixableDefects(t *testing.T) {
	ctx := context.Background()
	store := auditStore()
	uc := newConsistency(t, store)
	scope := domain.AuditScope{Kind: domain.KindListing}

	result, err := uc.Fix(ctx, scope, usecase.FixOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2+1, result.Repair.Updated) // 2, 3, 7
	assert.Equal(t, []int64{5}, result.MismatchIDs)
	assert.Equal(t, int64(1), result.Rederived)

	report, err := uc.Check(ctx, scope)
	require.NoError(t, err)
	assert.Zero(t, report.Count(domain.DefectGloballyInvalid))
	assert.Zero(t, report.Count(domain.DefectZeroDegenerate))
	assert.Zero(t, report.Count(domain.DefectMismatch))
	// Not part of the default selection
	assert.Equal(t, 1, report.Count(domain.DefectOutOfRegion))
	assert.Equal(t, 1, report.Count(domain.DefectMissing))
	assert.False(t, report.NeedsFix())

	// Scalars stay authoritative for mismatches
	rec := store.get(domain.KindListing, 5)
	assert.Equal(t, 40.0, *rec.Latitude)
	assert.Equal(t, domain.Point{Lng: -74.0, Lat: 40.0}, *rec.Point)
}

func TestConsistencyFix_DryRun(t *testing.T) {
	ctx := context.Background()
	store := auditStore()
	uc := newConsistency(t, store)
	scope := domain.AuditScope{Kind: domain.KindListing}

	before, err := uc.Check(ctx, scope)
	require.NoError(t, err)

	result, err := uc.Fix(ctx, scope, usecase.FixOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Len(t, result.Repair.Proposals, 3)
	assert.Equal(t, []int64{5}, result.MismatchIDs)
	assert.Zero(t, result.Rederived)
	assert.Zero(t, store.saves)

	after, err := uc.Check(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestConsistencyFix_InvalidScope(t *testing.T) {
	_, err := newConsistency(t, auditStore()).Fix(context.Background(), domain.AuditScope{Kind: "warehouse"}, usecase.FixOptions{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidKind))
}
