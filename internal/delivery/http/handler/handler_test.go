package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estate-geo-service/internal/delivery/http/handler"
	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
	"github.com/estate-geo-service/internal/usecase"
	"github.com/estate-geo-service/internal/usecase/dto"
)

// ---- Stub store ----

type stubStore struct {
	searchNearbyFn func(ctx context.Context, q repository.NearbyQuery) ([]*domain.GeoPlace, int, error)
	scanFn         func(ctx context.Context, q repository.ScanQuery) ([]*domain.GeoPlace, error)
	listFn         func(ctx context.Context, kind domain.RecordKind, limit, offset int) ([]*domain.GeoPlace, int, error)
}

func (s *stubStore) SearchNearby(ctx context.Context, q repository.NearbyQuery) ([]*domain.GeoPlace, int, error) {
	if s.searchNearbyFn != nil {
		return s.searchNearbyFn(ctx, q)
	}
	return nil, 0, nil
}
func (s *stubStore) CountUnindexed(ctx context.Context, kind domain.RecordKind, filter repository.ListingFilter) (int, error) {
	return 0, nil
}
func (s *stubStore) ScanPlaces(ctx context.Context, q repository.ScanQuery) ([]*domain.GeoPlace, error) {
	if s.scanFn != nil {
		return s.scanFn(ctx, q)
	}
	return nil, nil
}
func (s *stubStore) ListPlaces(ctx context.Context, kind domain.RecordKind, filter repository.ListingFilter, limit, offset int) ([]*domain.GeoPlace, int, error) {
	if s.listFn != nil {
		return s.listFn(ctx, kind, limit, offset)
	}
	return nil, 0, nil
}
func (s *stubStore) GetByID(ctx context.Context, kind domain.RecordKind, id int64) (*domain.GeoRecord, error) {
	return nil, repository.ErrRecordNotFound
}
func (s *stubStore) SaveCoordinates(ctx context.Context, record *domain.GeoRecord) error {
	return errors.New("read-only")
}
func (s *stubStore) RederiveGeometry(ctx context.Context, kind domain.RecordKind, ids []int64) (int64, error) {
	return 0, errors.New("read-only")
}

func f64(v float64) *float64 { return &v }

func place(id int64, kind domain.RecordKind, lat, lng float64) *domain.GeoPlace {
	return &domain.GeoPlace{
		GeoRecord: domain.GeoRecord{ID: id, Kind: kind, Latitude: f64(lat), Longitude: f64(lng), Point: &domain.Point{Lng: lng, Lat: lat}},
		Name:      "place",
	}
}

func setupApp(store repository.GeoRecordRepository) *fiber.App {
	logger := zap.NewNop()
	searchUC := usecase.NewProximitySearchUseCase(store, nil, logger, usecase.SearchOptions{})
	consistencyUC := usecase.NewConsistencyUseCase(store, nil, logger, 0)

	searchHandler := handler.NewSearchHandler(searchUC, logger)
	maintenanceHandler := handler.NewMaintenanceHandler(consistencyUC, logger)

	app := fiber.New()
	app.Get("/api/v1/search/properties", searchHandler.SearchProperties)
	app.Get("/api/v1/nearby/:kind", searchHandler.SearchNearby)
	app.Get("/api/v1/maintenance/coordinates/report", maintenanceHandler.GetCoordinateReport)
	return app
}

func doGet(t *testing.T, app *fiber.App, url string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var result struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	return result.Error.Code
}

// ---- Search ----

func TestSearchProperties_OK(t *testing.T) {
	var got repository.NearbyQuery
	store := &stubStore{
		searchNearbyFn: func(_ context.Context, q repository.NearbyQuery) ([]*domain.GeoPlace, int, error) {
			got = q
			p := place(1, domain.KindListing, 40.7484, -73.9857)
			p.Listing = &domain.ListingAttributes{Price: 650000, Bedrooms: 2}
			p.DistanceKm = f64(2.08)
			return []*domain.GeoPlace{p}, 1, nil
		},
	}
	app := setupApp(store)

	status, body := doGet(t, app, "/api/v1/search/properties?lat=40.73&lng=-73.99&radius=5&min_price=100000&page_size=10")
	require.Equal(t, fiber.StatusOK, status, string(body))

	var resp dto.ProximitySearchResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.PageSize)
	assert.Equal(t, dto.StrategyIndexed, resp.Strategy)
	require.Len(t, resp.Results, 1)
	assert.InDelta(t, 2.08, *resp.Results[0].Distance, 1e-9)
	assert.Equal(t, 650000.0, resp.Results[0].Price)

	assert.Equal(t, domain.KindListing, got.Kind)
	assert.Equal(t, 5.0, got.RadiusKm)
	require.NotNil(t, got.Filter.MinPrice)
	assert.Equal(t, 100000.0, *got.Filter.MinPrice)
	assert.Equal(t, 10, got.Limit)
}

func TestSearchProperties_DefaultRadius(t *testing.T) {
	var radius float64
	store := &stubStore{
		searchNearbyFn: func(_ context.Context, q repository.NearbyQuery) ([]*domain.GeoPlace, int, error) {
			radius = q.RadiusKm
			return nil, 0, nil
		},
	}

	status, body := doGet(t, setupApp(store), "/api/v1/search/properties?lat=40.73&lng=-73.99")
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Equal(t, 10.0, radius)
}

func TestSearchProperties_WithoutPoint(t *testing.T) {
	store := &stubStore{
		listFn: func(_ context.Context, kind domain.RecordKind, limit, offset int) ([]*domain.GeoPlace, int, error) {
			assert.Equal(t, 20, limit)
			assert.Equal(t, 20, offset)
			return []*domain.GeoPlace{place(21, kind, 40.7, -74)}, 21, nil
		},
	}

	status, body := doGet(t, setupApp(store), "/api/v1/search/properties?page=2")
	require.Equal(t, fiber.StatusOK, status, string(body))

	var resp dto.ProximitySearchResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, dto.StrategyListing, resp.Strategy)
	assert.Nil(t, resp.Results[0].Distance)
	assert.NotContains(t, string(body), `"distance"`)
}

func TestSearchProperties_ClientErrors(t *testing.T) {
	app := setupApp(&stubStore{})

	tests := []struct {
		name string
		url  string
		code string
	}{
		{"non-numeric lat", "/api/v1/search/properties?lat=abc&lng=-73.99", "INVALID_REQUEST"},
		{"non-numeric radius", "/api/v1/search/properties?lat=40.73&lng=-73.99&radius=far", "INVALID_REQUEST"},
		{"lat without lng", "/api/v1/search/properties?lat=40.73", "INVALID_COORDINATES"},
		{"zero radius", "/api/v1/search/properties?lat=40.73&lng=-73.99&radius=0", "INVALID_RADIUS"},
		{"negative radius", "/api/v1/search/properties?lat=40.73&lng=-73.99&radius=-2", "INVALID_RADIUS"},
		{"radius too large", "/api/v1/search/properties?lat=40.73&lng=-73.99&radius=100000", "INVALID_RADIUS"},
		{"latitude out of range", "/api/v1/search/properties?lat=91&lng=-73.99", "INVALID_REQUEST"},
		{"negative page", "/api/v1/search/properties?page=-1", "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doGet(t, app, tt.url)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, tt.code, errorCode(t, body))
		})
	}
}

func TestSearchProperties_StoreFailure(t *testing.T) {
	store := &stubStore{
		searchNearbyFn: func(context.Context, repository.NearbyQuery) ([]*domain.GeoPlace, int, error) {
			return nil, 0, errors.New("connection refused")
		},
	}

	status, body := doGet(t, setupApp(store), "/api/v1/search/properties?lat=40.73&lng=-73.99")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "DATABASE_ERROR", errorCode(t, body))
}

func TestSearchNearby_Kind(t *testing.T) {
	var kind domain.RecordKind
	store := &stubStore{
		searchNearbyFn: func(_ context.Context, q repository.NearbyQuery) ([]*domain.GeoPlace, int, error) {
			kind = q.Kind
			return nil, 0, nil
		},
	}
	app := setupApp(store)

	status, _ := doGet(t, app, "/api/v1/nearby/school?lat=40.73&lng=-73.99&radius=3")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, domain.KindSchool, kind)

	status, body := doGet(t, app, "/api/v1/nearby/warehouse?lat=40.73&lng=-73.99")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_KIND", errorCode(t, body))
}

// ---- Maintenance ----

func TestGetCoordinateReport(t *testing.T) {
	var scanned repository.ScanQuery
	store := &stubStore{
		scanFn: func(_ context.Context, q repository.ScanQuery) ([]*domain.GeoPlace, error) {
			scanned = q
			if q.AfterID > 0 {
				return nil, nil
			}
			mismatched := place(3, q.Kind, 40, -74)
			mismatched.Point = &domain.Point{Lng: -75, Lat: 41}
			return []*domain.GeoPlace{
				place(1, q.Kind, 200, -73.99),
				place(2, q.Kind, 0, 0),
				mismatched,
			}, nil
		},
	}

	status, body := doGet(t, setupApp(store), "/api/v1/maintenance/coordinates/report?kind=poi&from_id=1&to_id=100")
	require.Equal(t, fiber.StatusOK, status, string(body))

	var resp struct {
		Data domain.AuditReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, []int64{1}, resp.Data.Defects[domain.DefectGloballyInvalid].Sample)
	assert.Equal(t, []int64{2}, resp.Data.Defects[domain.DefectZeroDegenerate].Sample)
	assert.Equal(t, []int64{3}, resp.Data.Defects[domain.DefectMismatch].Sample)

	assert.Equal(t, domain.KindPOI, scanned.Kind)
	require.NotNil(t, scanned.FromID)
	assert.Equal(t, int64(1), *scanned.FromID)
}

func TestGetCoordinateReport_InvalidParams(t *testing.T) {
	app := setupApp(&stubStore{})

	for _, url := range []string{
		"/api/v1/maintenance/coordinates/report?kind=warehouse",
		"/api/v1/maintenance/coordinates/report?from_id=x",
		"/api/v1/maintenance/coordinates/report?from_id=10&to_id=2",
	} {
		status, body := doGet(t, app, url)
		assert.Equal(t, fiber.StatusBadRequest, status, url)
		assert.Equal(t, "INVALID_REQUEST", errorCode(t, body), url)
	}
}

// ---- Health ----

type checker func(ctx context.Context) error

func (f checker) Health(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	ok := checker(func(context.Context) error { return nil })
	down := checker(func(context.Context) error { return errors.New("dial tcp: connection refused") })

	app := fiber.New()
	app.Get("/healthy", handler.NewHealthHandler(map[string]handler.HealthChecker{"postgres": ok}, zap.NewNop()).Health)
	app.Get("/unhealthy", handler.NewHealthHandler(map[string]handler.HealthChecker{"postgres": ok, "redis": down}, zap.NewNop()).Health)

	status, _ := doGet(t, app, "/healthy")
	assert.Equal(t, fiber.StatusOK, status)

	status, body := doGet(t, app, "/unhealthy")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), "connection refused")
}
