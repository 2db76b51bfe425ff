package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mmcloughlin/geohash"
	"go.uber.org/zap"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
	apperrors "github.com/estate-geo-service/internal/pkg/errors"
	"github.com/estate-geo-service/internal/pkg/metrics"
	"github.com/estate-geo-service/internal/pkg/utils"
	"github.com/estate-geo-service/internal/pkg/validator"
	"github.com/estate-geo-service/internal/usecase/dto"
)

// SearchCachePrefix - префикс ключей кеша выдачи поиска
const SearchCachePrefix = "search:"

// SearchOptions - параметры поиска
type SearchOptions struct {
	DefaultRadiusKm  float64
	MaxRadiusKm      float64
	DefaultPageSize  int
	MaxPageSize      int
	ScanBatchSize    int
	GeohashPrecision uint
	CacheTTL         time.Duration
}

func (o *SearchOptions) applyDefaults() {
	if o.DefaultRadiusKm <= 0 {
		o.DefaultRadiusKm = 10
	}
	if o.MaxRadiusKm <= 0 {
		o.MaxRadiusKm = 500
	}
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = 20
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = 100
	}
	if o.ScanBatchSize <= 0 {
		o.ScanBatchSize = DefaultScanBatchSize
	}
	if o.GeohashPrecision == 0 {
		o.GeohashPrecision = 7
	}
}

// ProximitySearchUseCase - поиск записей по радиусу (индекс PostGIS или ручной расчёт)
type ProximitySearchUseCase struct {
	store     repository.GeoRecordRepository
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
	opts      SearchOptions
}

// NewProximitySearchUseCase - создание нового ProximitySearchUseCase; cacheRepo может быть nil
func NewProximitySearchUseCase(
	store repository.GeoRecordRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	opts SearchOptions,
) *ProximitySearchUseCase {
	opts.applyDefaults()
	return &ProximitySearchUseCase{
		store:     store,
		cacheRepo: cacheRepo,
		logger:    logger,
		opts:      opts,
	}
}

// Search - поиск по радиусу или страница списка, если точка не задана
func (uc *ProximitySearchUseCase) Search(ctx context.Context, req dto.ProximitySearchRequest) (*dto.ProximitySearchResponse, error) {
	if err := uc.normalize(&req); err != nil {
		return nil, err
	}

	cacheKey := uc.cacheKey(&req)
	if cached := uc.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	start := time.Now()
	var (
		resp *dto.ProximitySearchResponse
		err  error
	)
	if req.HasGeo() {
		resp, err = uc.searchNearby(ctx, &req)
	} else {
		resp, err = uc.list(ctx, &req)
	}
	if err != nil {
		return nil, err
	}

	metrics.SearchRequests.WithLabelValues(string(req.Kind), resp.Strategy).Inc()
	metrics.ObserveSince(metrics.SearchDuration, resp.Strategy, start)

	uc.toCache(ctx, cacheKey, resp)
	return resp, nil
}

func (uc *ProximitySearchUseCase) normalize(req *dto.ProximitySearchRequest) error {
	if req.Kind == "" {
		req.Kind = domain.KindListing
	}
	if err := validator.Validate(req); err != nil {
		return apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"validation": err.Error(),
		})
	}

	if (req.Lat == nil) != (req.Lng == nil) {
		return apperrors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"reason": "lat and lng must be provided together",
		})
	}
	if req.HasGeo() && !utils.ValidateCoordinates(*req.Lat, *req.Lng) {
		return apperrors.ErrInvalidCoordinates
	}

	// Радиус по умолчанию только если параметр не передан; явный 0 - ошибка
	if req.RadiusKm == nil {
		radius := uc.opts.DefaultRadiusKm
		req.RadiusKm = &radius
	}
	if !utils.ValidateRadius(*req.RadiusKm, uc.opts.MaxRadiusKm) {
		return apperrors.ErrInvalidRadius.WithDetails(map[string]interface{}{
			"radius":     *req.RadiusKm,
			"max_radius": uc.opts.MaxRadiusKm,
		})
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = uc.opts.DefaultPageSize
	}
	if req.PageSize > uc.opts.MaxPageSize {
		req.PageSize = uc.opts.MaxPageSize
	}

	return nil
}

func filterOf(req *dto.ProximitySearchRequest) repository.ListingFilter {
	return repository.ListingFilter{
		PropertyTypeID: req.PropertyTypeID,
		MinPrice:       req.MinPrice,
		MaxPrice:       req.MaxPrice,
		MinBedrooms:    req.MinBedrooms,
		MaxBedrooms:    req.MaxBedrooms,
		MinBathrooms:   req.MinBathrooms,
		MaxBathrooms:   req.MaxBathrooms,
	}
}

func offsetOf(req *dto.ProximitySearchRequest) int {
	return (req.Page - 1) * req.PageSize
}

func (uc *ProximitySearchUseCase) list(ctx context.Context, req *dto.ProximitySearchRequest) (*dto.ProximitySearchResponse, error) {
	places, total, err := uc.store.ListPlaces(ctx, req.Kind, filterOf(req), req.PageSize, offsetOf(req))
	if err != nil {
		uc.logger.Error("Failed to list records", zap.String("kind", string(req.Kind)), zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}
	return uc.response(req, dto.StrategyListing, places, total), nil
}

// searchNearby выбирает путь детерминированно: индекс, либо целиком ручной расчёт,
// если индекс недоступен или пуст при наличии записей без геометрии
func (uc *ProximitySearchUseCase) searchNearby(ctx context.Context, req *dto.ProximitySearchRequest) (*dto.ProximitySearchResponse, error) {
	filter := filterOf(req)

	places, total, err := uc.store.SearchNearby(ctx, repository.NearbyQuery{
		Kind:     req.Kind,
		Lat:      *req.Lat,
		Lng:      *req.Lng,
		RadiusKm: *req.RadiusKm,
		Filter:   filter,
		Limit:    req.PageSize,
		Offset:   offsetOf(req),
	})
	switch {
	case errors.Is(err, repository.ErrSpatialUnavailable):
		uc.logger.Warn("Spatial index unavailable, using haversine fallback", zap.String("kind", string(req.Kind)))
		return uc.fallback(ctx, req, filter)

	case err != nil:
		uc.logger.Error("Failed to search nearby", zap.String("kind", string(req.Kind)), zap.Error(err))
		return nil, apperrors.ErrDatabaseError

	case total == 0:
		unindexed, err := uc.store.CountUnindexed(ctx, req.Kind, filter)
		if err != nil {
			uc.logger.Error("Failed to count unindexed records", zap.String("kind", string(req.Kind)), zap.Error(err))
			return nil, apperrors.ErrDatabaseError
		}
		if unindexed > 0 {
			uc.logger.Info("No indexed matches, records without geometry exist, using haversine fallback",
				zap.String("kind", string(req.Kind)),
				zap.Int("unindexed", unindexed))
			return uc.fallback(ctx, req, filter)
		}
	}

	return uc.response(req, dto.StrategyIndexed, places, total), nil
}

// fallback считает расстояние по скалярам для всех записей, фильтрует по радиусу
// и сортирует по (distance, id)
func (uc *ProximitySearchUseCase) fallback(
	ctx context.Context,
	req *dto.ProximitySearchRequest,
	filter repository.ListingFilter,
) (*dto.ProximitySearchResponse, error) {
	lat, lng := *req.Lat, *req.Lng
	var matches []*domain.GeoPlace

	err := scanAll(ctx, uc.store, repository.ScanQuery{
		Kind:        req.Kind,
		Filter:      filter,
		ScalarsOnly: true,
	}, uc.opts.ScanBatchSize, func(p *domain.GeoPlace) error {
		// Записи с невалидными координатами не участвуют в поиске
		if !p.HasScalars() || !domain.GlobalBounds.Contains(*p.Latitude, *p.Longitude) {
			return nil
		}
		d := utils.HaversineDistance(lat, lng, *p.Latitude, *p.Longitude)
		if d <= *req.RadiusKm {
			p.DistanceKm = &d
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("Fallback scan failed", zap.String("kind", string(req.Kind)), zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}

	sortByDistance(matches)

	total := len(matches)
	from := offsetOf(req)
	if from > total {
		from = total
	}
	to := from + req.PageSize
	if to > total {
		to = total
	}

	return uc.response(req, dto.StrategyFallback, matches[from:to], total), nil
}

// sortByDistance - полный порядок: расстояние, затем ID
func sortByDistance(places []*domain.GeoPlace) {
	sort.SliceStable(places, func(i, j int) bool {
		di, dj := *places[i].DistanceKm, *places[j].DistanceKm
		if di != dj {
			return di < dj
		}
		return places[i].ID < places[j].ID
	})
}

func (uc *ProximitySearchUseCase) response(
	req *dto.ProximitySearchRequest,
	strategy string,
	places []*domain.GeoPlace,
	total int,
) *dto.ProximitySearchResponse {
	return &dto.ProximitySearchResponse{
		Count:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Strategy: strategy,
		Results:  dto.ConvertPlaces(places),
	}
}

// cacheKey: search:<kind>:<geohash>:<hash параметров>; без точки geohash = "all"
func (uc *ProximitySearchUseCase) cacheKey(req *dto.ProximitySearchRequest) string {
	cell := "all"
	if req.HasGeo() {
		cell = geohash.EncodeWithPrecision(*req.Lat, *req.Lng, uc.opts.GeohashPrecision)
	}

	params, _ := json.Marshal(req)
	sum := sha1.Sum(params)

	return fmt.Sprintf("%s%s:%s:%s", SearchCachePrefix, req.Kind, cell, hex.EncodeToString(sum[:8]))
}

// SearchCacheKindPrefix - префикс кеша выдачи одного типа записей
func SearchCacheKindPrefix(kind domain.RecordKind) string {
	return SearchCachePrefix + string(kind) + ":"
}

func (uc *ProximitySearchUseCase) fromCache(ctx context.Context, key string) *dto.ProximitySearchResponse {
	if uc.cacheRepo == nil || uc.opts.CacheTTL <= 0 {
		return nil
	}

	data, err := uc.cacheRepo.Get(ctx, key)
	if err != nil || data == nil {
		metrics.CacheMisses.WithLabelValues("search").Inc()
		return nil
	}

	var resp dto.ProximitySearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		uc.logger.Warn("Failed to unmarshal cached search", zap.String("key", key), zap.Error(err))
		return nil
	}

	metrics.CacheHits.WithLabelValues("search").Inc()
	return &resp
}

func (uc *ProximitySearchUseCase) toCache(ctx context.Context, key string, resp *dto.ProximitySearchResponse) {
	if uc.cacheRepo == nil || uc.opts.CacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		uc.logger.Warn("Failed to marshal search response", zap.Error(err))
		return
	}
	if err := uc.cacheRepo.Set(ctx, key, data, uc.opts.CacheTTL); err != nil {
		uc.logger.Warn("Failed to cache search response", zap.String("key", key), zap.Error(err))
	}
}
