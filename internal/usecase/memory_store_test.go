package usecase_test

import (
	"context"
	"sort"
	"sync"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
	"github.com/estate-geo-service/internal/pkg/utils"
)

// memoryStore is an in-memory GeoRecordRepository. Nearby search measures the
// geometry point the way the spatial index does, scans read scalars.
type memoryStore struct {
	mu          sync.Mutex
	records     map[domain.RecordKind][]*domain.GeoPlace
	spatialDown bool
	failSave    map[int64]error
	saves       int
}

func newMemoryStore(places ...*domain.GeoPlace) *memoryStore {
	s := &memoryStore{
		records:  make(map[domain.RecordKind][]*domain.GeoPlace),
		failSave: make(map[int64]error),
	}
	for _, p := range places {
		s.records[p.Kind] = append(s.records[p.Kind], p)
	}
	for _, list := range s.records {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return s
}

func clonePlace(p *domain.GeoPlace) *domain.GeoPlace {
	cp := *p
	if p.Latitude != nil {
		v := *p.Latitude
		cp.Latitude = &v
	}
	if p.Longitude != nil {
		v := *p.Longitude
		cp.Longitude = &v
	}
	if p.Point != nil {
		v := *p.Point
		cp.Point = &v
	}
	if p.Listing != nil {
		v := *p.Listing
		cp.Listing = &v
	}
	cp.DistanceKm = nil
	return &cp
}

func matchesFilter(p *domain.GeoPlace, f repository.ListingFilter) bool {
	if p.Kind != domain.KindListing || p.Listing == nil {
		return true
	}
	l := p.Listing
	switch {
	case f.PropertyTypeID != nil && l.PropertyTypeID != *f.PropertyTypeID,
		f.MinPrice != nil && l.Price < *f.MinPrice,
		f.MaxPrice != nil && l.Price > *f.MaxPrice,
		f.MinBedrooms != nil && l.Bedrooms < *f.MinBedrooms,
		f.MaxBedrooms != nil && l.Bedrooms > *f.MaxBedrooms,
		f.MinBathrooms != nil && l.Bathrooms < *f.MinBathrooms,
		f.MaxBathrooms != nil && l.Bathrooms > *f.MaxBathrooms:
		return false
	}
	return true
}

func page(list []*domain.GeoPlace, limit, offset int) []*domain.GeoPlace {
	if offset > len(list) {
		offset = len(list)
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}

func (s *memoryStore) SearchNearby(_ context.Context, q repository.NearbyQuery) ([]*domain.GeoPlace, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spatialDown {
		return nil, 0, repository.ErrSpatialUnavailable
	}

	var found []*domain.GeoPlace
	for _, p := range s.records[q.Kind] {
		if p.Point == nil || !domain.GlobalBounds.Contains(p.Point.Lat, p.Point.Lng) || !matchesFilter(p, q.Filter) {
			continue
		}
		d := utils.HaversineDistance(q.Lat, q.Lng, p.Point.Lat, p.Point.Lng)
		if d <= q.RadiusKm {
			cp := clonePlace(p)
			cp.DistanceKm = &d
			found = append(found, cp)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if *found[i].DistanceKm != *found[j].DistanceKm {
			return *found[i].DistanceKm < *found[j].DistanceKm
		}
		return found[i].ID < found[j].ID
	})

	return page(found, q.Limit, q.Offset), len(found), nil
}

func (s *memoryStore) CountUnindexed(_ context.Context, kind domain.RecordKind, filter repository.ListingFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, p := range s.records[kind] {
		if p.HasScalars() && p.Point == nil && matchesFilter(p, filter) {
			count++
		}
	}
	return count, nil
}

func (s *memoryStore) ScanPlaces(_ context.Context, q repository.ScanQuery) ([]*domain.GeoPlace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.GeoPlace
	for _, p := range s.records[q.Kind] {
		switch {
		case p.ID <= q.AfterID,
			q.FromID != nil && p.ID < *q.FromID,
			q.ToID != nil && p.ID > *q.ToID,
			q.ScalarsOnly && !p.HasScalars(),
			!matchesFilter(p, q.Filter):
			continue
		}
		out = append(out, clonePlace(p))
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *memoryStore) ListPlaces(_ context.Context, kind domain.RecordKind, filter repository.ListingFilter, limit, offset int) ([]*domain.GeoPlace, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.GeoPlace
	for _, p := range s.records[kind] {
		if matchesFilter(p, filter) {
			out = append(out, clonePlace(p))
		}
	}
	return page(out, limit, offset), len(out), nil
}

func (s *memoryStore) find(kind domain.RecordKind, id int64) *domain.GeoPlace {
	for _, p := range s.records[kind] {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, kind domain.RecordKind, id int64) (*domain.GeoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.find(kind, id)
	if p == nil {
		return nil, repository.ErrRecordNotFound
	}
	return &clonePlace(p).GeoRecord, nil
}

func (s *memoryStore) SaveCoordinates(_ context.Context, record *domain.GeoRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failSave[record.ID]; err != nil {
		return err
	}
	p := s.find(record.Kind, record.ID)
	if p == nil {
		return repository.ErrRecordNotFound
	}

	s.saves++
	p.Latitude, p.Longitude, p.Point = nil, nil, nil
	if record.HasScalars() {
		lat, lng := *record.Latitude, *record.Longitude
		p.Latitude, p.Longitude = &lat, &lng
		p.Point = &domain.Point{Lng: lng, Lat: lat}
	}
	return nil
}

func (s *memoryStore) RederiveGeometry(_ context.Context, kind domain.RecordKind, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range ids {
		p := s.find(kind, id)
		if p == nil {
			continue
		}
		p.Point = nil
		if p.HasScalars() {
			p.Point = &domain.Point{Lng: *p.Longitude, Lat: *p.Latitude}
		}
		n++
	}
	return n, nil
}

func (s *memoryStore) get(kind domain.RecordKind, id int64) *domain.GeoPlace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlace(s.find(kind, id))
}

// Fixture helpers

func f64(v float64) *float64 {
	return &v
}

func listing(id int64, lat, lng float64, indexed bool) *domain.GeoPlace {
	p := &domain.GeoPlace{
		GeoRecord: domain.GeoRecord{ID: id, Kind: domain.KindListing, Latitude: f64(lat), Longitude: f64(lng)},
		Name:      "listing",
		Listing:   &domain.ListingAttributes{PropertyTypeID: 1, PropertyType: "house", Price: 500000, Bedrooms: 2, Bathrooms: 1},
	}
	if indexed {
		p.Point = &domain.Point{Lng: lng, Lat: lat}
	}
	return p
}

func withPoint(p *domain.GeoPlace, lng, lat float64) *domain.GeoPlace {
	p.Point = &domain.Point{Lng: lng, Lat: lat}
	return p
}
