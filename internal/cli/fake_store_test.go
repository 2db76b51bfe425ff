package cli

import (
	"context"
	"sort"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
)

// fakeStore - минимальное хранилище в памяти для команд обслуживания
type fakeStore struct {
	records  []*domain.GeoRecord
	failSave map[int64]error
}

func newFakeStore(records ...*domain.GeoRecord) *fakeStore {
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return &fakeStore{records: records, failSave: map[int64]error{}}
}

func (s *fakeStore) find(id int64) *domain.GeoRecord {
	for _, r := range s.records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *fakeStore) SearchNearby(context.Context, repository.NearbyQuery) ([]*domain.GeoPlace, int, error) {
	return nil, 0, nil
}

func (s *fakeStore) CountUnindexed(context.Context, domain.RecordKind, repository.ListingFilter) (int, error) {
	return 0, nil
}

func (s *fakeStore) ScanPlaces(_ context.Context, q repository.ScanQuery) ([]*domain.GeoPlace, error) {
	var out []*domain.GeoPlace
	for _, r := range s.records {
		if r.Kind != q.Kind || r.ID <= q.AfterID ||
			(q.FromID != nil && r.ID < *q.FromID) ||
			(q.ToID != nil && r.ID > *q.ToID) ||
			(q.ScalarsOnly && !r.HasScalars()) {
			continue
		}
		cp := *r
		out = append(out, &domain.GeoPlace{GeoRecord: cp})
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) ListPlaces(context.Context, domain.RecordKind, repository.ListingFilter, int, int) ([]*domain.GeoPlace, int, error) {
	return nil, 0, nil
}

func (s *fakeStore) GetByID(_ context.Context, _ domain.RecordKind, id int64) (*domain.GeoRecord, error) {
	if r := s.find(id); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, repository.ErrRecordNotFound
}

func (s *fakeStore) SaveCoordinates(_ context.Context, rec *domain.GeoRecord) error {
	if err := s.failSave[rec.ID]; err != nil {
		return err
	}
	r := s.find(rec.ID)
	if r == nil {
		return repository.ErrRecordNotFound
	}
	r.Latitude, r.Longitude, r.Point = rec.Latitude, rec.Longitude, rec.Point
	return nil
}

func (s *fakeStore) RederiveGeometry(_ context.Context, _ domain.RecordKind, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if r := s.find(id); r != nil && r.HasScalars() {
			r.Point = &domain.Point{Lng: *r.Longitude, Lat: *r.Latitude}
			n++
		}
	}
	return n, nil
}

func f64(v float64) *float64 { return &v }

func rec(id int64, lat, lng float64) *domain.GeoRecord {
	return &domain.GeoRecord{
		ID: id, Kind: domain.KindListing,
		Latitude: f64(lat), Longitude: f64(lng),
		Point: &domain.Point{Lng: lng, Lat: lat},
	}
}
