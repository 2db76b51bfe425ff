package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
	"github.com/estate-geo-service/internal/pkg/metrics"
)

// ErrUnsupportedKind - событие с неизвестным типом записи
var ErrUnsupportedKind = errors.New("unsupported record kind")

// CoordinateSyncUseCase применяет правило согласования координат к записям,
// сохранённым внешним сервисом объявлений
type CoordinateSyncUseCase struct {
	store     repository.GeoRecordRepository
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
}

// NewCoordinateSyncUseCase - создание нового CoordinateSyncUseCase; cacheRepo может быть nil
func NewCoordinateSyncUseCase(
	store repository.GeoRecordRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
) *CoordinateSyncUseCase {
	return &CoordinateSyncUseCase{
		store:     store,
		cacheRepo: cacheRepo,
		logger:    logger,
	}
}

// Apply согласует координаты из события и пишет их, только если запись в хранилище отличается
func (uc *CoordinateSyncUseCase) Apply(ctx context.Context, event *domain.CoordinateSyncEvent) (*domain.CoordinateSyncedEvent, error) {
	result := &domain.CoordinateSyncedEvent{
		EventID:  uuid.New(),
		Kind:     event.Kind,
		RecordID: event.RecordID,
	}

	if !validKind(event.Kind) {
		metrics.SyncEvents.WithLabelValues("failed").Inc()
		result.Error = ErrUnsupportedKind.Error()
		return result, fmt.Errorf("%w: %q", ErrUnsupportedKind, event.Kind)
	}

	rec := event.Record()
	rec.SyncCoordinates()
	result.Latitude = rec.Latitude
	result.Longitude = rec.Longitude

	stored, err := uc.store.GetByID(ctx, rec.Kind, rec.ID)
	if err != nil {
		metrics.SyncEvents.WithLabelValues("failed").Inc()
		result.Error = err.Error()
		return result, fmt.Errorf("load %s %d: %w", rec.Kind, rec.ID, err)
	}

	if sameCoordinates(stored, rec) {
		metrics.SyncEvents.WithLabelValues("unchanged").Inc()
		uc.logger.Debug("Coordinates already consistent",
			zap.String("kind", string(rec.Kind)),
			zap.Int64("record_id", rec.ID))
		return result, nil
	}

	if err := uc.store.SaveCoordinates(ctx, rec); err != nil {
		metrics.SyncEvents.WithLabelValues("failed").Inc()
		result.Error = err.Error()
		return result, fmt.Errorf("save %s %d: %w", rec.Kind, rec.ID, err)
	}

	result.Changed = true
	metrics.SyncEvents.WithLabelValues("changed").Inc()

	if uc.cacheRepo != nil {
		if _, err := uc.cacheRepo.DeleteByPrefix(ctx, SearchCacheKindPrefix(rec.Kind)); err != nil {
			uc.logger.Warn("Failed to invalidate search cache", zap.Error(err))
		}
	}

	uc.logger.Info("Coordinates synchronized",
		zap.String("kind", string(rec.Kind)),
		zap.Int64("record_id", rec.ID))

	return result, nil
}

func sameCoordinates(a, b *domain.GeoRecord) bool {
	return equalFloatPtr(a.Latitude, b.Latitude) &&
		equalFloatPtr(a.Longitude, b.Longitude) &&
		equalPointPtr(a.Point, b.Point)
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalPointPtr(a, b *domain.Point) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
