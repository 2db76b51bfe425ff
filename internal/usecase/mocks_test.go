package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
)

// MockGeoRecordRepository is a mock of GeoRecordRepository
type MockGeoRecordRepository struct {
	mock.Mock
}

func (m *MockGeoRecordRepository) SearchNearby(ctx context.Context, q repository.NearbyQuery) ([]*domain.GeoPlace, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.GeoPlace), args.Int(1), args.Error(2)
}

func (m *MockGeoRecordRepository) CountUnindexed(ctx context.Context, kind domain.RecordKind, filter repository.ListingFilter) (int, error) {
	args := m.Called(ctx, kind, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockGeoRecordRepository) ScanPlaces(ctx context.Context, q repository.ScanQuery) ([]*domain.GeoPlace, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GeoPlace), args.Error(1)
}

func (m *MockGeoRecordRepository) ListPlaces(ctx context.Context, kind domain.RecordKind, filter repository.ListingFilter, limit, offset int) ([]*domain.GeoPlace, int, error) {
	args := m.Called(ctx, kind, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.GeoPlace), args.Int(1), args.Error(2)
}

func (m *MockGeoRecordRepository) GetByID(ctx context.Context, kind domain.RecordKind, id int64) (*domain.GeoRecord, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeoRecord), args.Error(1)
}

func (m *MockGeoRecordRepository) SaveCoordinates(ctx context.Context, record *domain.GeoRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockGeoRecordRepository) RederiveGeometry(ctx context.Context, kind domain.RecordKind, ids []int64) (int64, error) {
	args := m.Called(ctx, kind, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}
