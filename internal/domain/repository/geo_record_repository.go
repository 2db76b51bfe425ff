package repository

import (
	"context"
	"errors"

	"github.com/estate-geo-service/internal/domain"
)

var (
	// ErrSpatialUnavailable - пространственный индекс/расширение недоступны, нужен ручной расчёт
	ErrSpatialUnavailable = errors.New("spatial index unavailable")

	// ErrRecordNotFound - запись не найдена
	ErrRecordNotFound = errors.New("record not found")
)

// ListingFilter - фильтры объявлений (для школ и POI игнорируются)
type ListingFilter struct {
	PropertyTypeID *int64
	MinPrice       *float64
	MaxPrice       *float64
	MinBedrooms    *int
	MaxBedrooms    *int
	MinBathrooms   *float64
	MaxBathrooms   *float64
}

// NearbyQuery - запрос поиска по радиусу через пространственный индекс
type NearbyQuery struct {
	Kind     domain.RecordKind
	Lat      float64
	Lng      float64
	RadiusKm float64
	Filter   ListingFilter
	Limit    int
	Offset   int
}

// ScanQuery - постраничное чтение записей по возрастанию ID (keyset)
type ScanQuery struct {
	Kind        domain.RecordKind
	Filter      ListingFilter
	FromID      *int64
	ToID        *int64
	AfterID     int64
	Limit       int
	ScalarsOnly bool
}

// GeoRecordRepository - хранилище записей с координатами
type GeoRecordRepository interface {
	// SearchNearby находит записи в радиусе, упорядоченные по (distance, id), и общее количество
	SearchNearby(ctx context.Context, q NearbyQuery) ([]*domain.GeoPlace, int, error)

	// CountUnindexed считает записи со скалярами, но без геометрии
	CountUnindexed(ctx context.Context, kind domain.RecordKind, filter ListingFilter) (int, error)

	// ScanPlaces читает страницу записей с ID > AfterID
	ScanPlaces(ctx context.Context, q ScanQuery) ([]*domain.GeoPlace, error)

	// ListPlaces возвращает страницу записей без геофильтра и общее количество
	ListPlaces(ctx context.Context, kind domain.RecordKind, filter ListingFilter, limit, offset int) ([]*domain.GeoPlace, int, error)

	// GetByID возвращает координаты записи
	GetByID(ctx context.Context, kind domain.RecordKind, id int64) (*domain.GeoRecord, error)

	// SaveCoordinates атомарно записывает скаляры и геометрию
	SaveCoordinates(ctx context.Context, record *domain.GeoRecord) error

	// RederiveGeometry пересчитывает геометрию из скаляров для указанных записей
	RederiveGeometry(ctx context.Context, kind domain.RecordKind, ids []int64) (int64, error)
}
