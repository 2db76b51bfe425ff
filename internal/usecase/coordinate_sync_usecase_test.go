package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
	"github.com/estate-geo-service/internal/usecase"
)

func TestCoordinateSync_PointOnlyDerivesScalars(t *testing.T) {
	store := newMemoryStore(&domain.GeoPlace{GeoRecord: domain.GeoRecord{ID: 1, Kind: domain.KindListing}})
	uc := usecase.NewCoordinateSyncUseCase(store, nil, zap.NewNop())

	event := &domain.CoordinateSyncEvent{
		Kind:     domain.KindListing,
		RecordID: 1,
		Point:    &domain.Point{Lng: -73.9857, Lat: 40.7484},
	}

	result, err := uc.Apply(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Empty(t, result.Error)
	require.NotNil(t, result.Latitude)
	assert.Equal(t, 40.7484, *result.Latitude)
	assert.Equal(t, -73.9857, *result.Longitude)

	rec := store.get(domain.KindListing, 1)
	assert.Equal(t, 40.7484, *rec.Latitude)
	assert.Equal(t, -73.9857, *rec.Longitude)
	assert.False(t, rec.PointMismatch())

	// Replaying the same event is a no-op
	result, err = uc.Apply(context.Background(), event)
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, 1, store.saves)
}

func TestCoordinateSync_ScalarsWin(t *testing.T) {
	store := newMemoryStore(listing(1, 10, 10, true))
	cache := &MockCacheRepository{}
	cache.On("DeleteByPrefix", mock.Anything, "search:listing:").Return(int64(2), nil).Once()

	uc := usecase.NewCoordinateSyncUseCase(store, cache, zap.NewNop())

	result, err := uc.Apply(context.Background(), &domain.CoordinateSyncEvent{
		Kind:      domain.KindListing,
		RecordID:  1,
		Latitude:  f64(40.0),
		Longitude: f64(-74.0),
		Point:     &domain.Point{Lng: -75.0, Lat: 41.0},
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)

	rec := store.get(domain.KindListing, 1)
	assert.Equal(t, domain.Point{Lng: -74.0, Lat: 40.0}, *rec.Point)
	cache.AssertExpectations(t)
}

func TestCoordinateSync_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown kind", func(t *testing.T) {
		uc := usecase.NewCoordinateSyncUseCase(newMemoryStore(), nil, zap.NewNop())
		result, err := uc.Apply(ctx, &domain.CoordinateSyncEvent{Kind: "warehouse", RecordID: 1})
		assert.True(t, errors.Is(err, usecase.ErrUnsupportedKind))
		assert.NotEmpty(t, result.Error)
	})

	t.Run("record not found", func(t *testing.T) {
		uc := usecase.NewCoordinateSyncUseCase(newMemoryStore(), nil, zap.NewNop())
		result, err := uc.Apply(ctx, &domain.CoordinateSyncEvent{Kind: domain.KindSchool, RecordID: 42, Latitude: f64(1), Longitude: f64(1)})
		assert.True(t, errors.Is(err, repository.ErrRecordNotFound))
		assert.False(t, result.Changed)
	})

	t.Run("save failure", func(t *testing.T) {
		store := newMemoryStore(listing(1, 10, 10, true))
		store.failSave[1] = errors.New("lock timeout")

		uc := usecase.NewCoordinateSyncUseCase(store, nil, zap.NewNop())
		result, err := uc.Apply(ctx, &domain.CoordinateSyncEvent{Kind: domain.KindListing, RecordID: 1, Latitude: f64(40), Longitude: f64(-74)})
		require.Error(t, err)
		assert.Equal(t, "lock timeout", result.Error)
		assert.Equal(t, 10.0, *store.get(domain.KindListing, 1).Latitude)
	})
}
