package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type geoRecordRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewGeoRecordRepository(db *DB) repository.GeoRecordRepository {
	return &geoRecordRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// placeRow - строка выборки; колонки объявлений заполняются только для properties
type placeRow struct {
	ID             int64    `db:"id"`
	Name           string   `db:"name"`
	Latitude       *float64 `db:"latitude"`
	Longitude      *float64 `db:"longitude"`
	PointLng       *float64 `db:"point_lng"`
	PointLat       *float64 `db:"point_lat"`
	PropertyTypeID *int64   `db:"property_type_id"`
	PropertyType   *string  `db:"property_type"`
	Status         *string  `db:"status"`
	Price          *float64 `db:"price"`
	Bedrooms       *int     `db:"bedrooms"`
	Bathrooms      *float64 `db:"bathrooms"`
	City           *string  `db:"city"`
	State          *string  `db:"state"`
	DistanceKm     *float64 `db:"distance_km"`
	Total          int      `db:"total_count"`
}

func (row *placeRow) toPlace(kind domain.RecordKind) *domain.GeoPlace {
	place := &domain.GeoPlace{
		GeoRecord: domain.GeoRecord{
			ID:        row.ID,
			Kind:      kind,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
		},
		Name:       row.Name,
		DistanceKm: row.DistanceKm,
	}
	if row.PointLng != nil && row.PointLat != nil {
		place.Point = &domain.Point{Lng: *row.PointLng, Lat: *row.PointLat}
	}
	if kind == domain.KindListing {
		attrs := &domain.ListingAttributes{
			PropertyType: deref(row.PropertyType),
			Status:       deref(row.Status),
			City:         deref(row.City),
			State:        deref(row.State),
		}
		if row.PropertyTypeID != nil {
			attrs.PropertyTypeID = *row.PropertyTypeID
		}
		if row.Price != nil {
			attrs.Price = *row.Price
		}
		if row.Bedrooms != nil {
			attrs.Bedrooms = *row.Bedrooms
		}
		if row.Bathrooms != nil {
			attrs.Bathrooms = *row.Bathrooms
		}
		place.Listing = attrs
	}
	return place
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toPlaces(rows []placeRow, kind domain.RecordKind) ([]*domain.GeoPlace, int) {
	places := make([]*domain.GeoPlace, 0, len(rows))
	total := 0
	for i := range rows {
		places = append(places, rows[i].toPlace(kind))
		total = rows[i].Total
	}
	return places, total
}

func (r *geoRecordRepository) SearchNearby(ctx context.Context, q repository.NearbyQuery) ([]*domain.GeoPlace, int, error) {
	t, err := tableFor(q.Kind)
	if err != nil {
		return nil, 0, err
	}

	b := &queryBuilder{}
	geog := fmt.Sprintf("ST_SetSRID(ST_MakePoint(%s, %s), %d)::geography", b.arg(q.Lng), b.arg(q.Lat), SRID4326)
	loc := t.col("location") + "::geography"
	b.addRaw(t.col("location") + " IS NOT NULL")
	// приведение к geography сворачивает координаты вне диапазона в допустимые, такие точки отбрасываем
	b.addRaw(fmt.Sprintf("ST_Y(%[1]s) BETWEEN -90 AND 90 AND ST_X(%[1]s) BETWEEN -180 AND 180", t.col("location")))
	b.add(fmt.Sprintf("ST_DWithin(%s, %s, %%s)", loc, geog), q.RadiusKm*1000)
	b.applyListingFilter(t, q.Filter)

	query := fmt.Sprintf(`
		SELECT %s,
			ST_Distance(%s, %s) / 1000.0 AS distance_km,
			COUNT(*) OVER() AS total_count
		FROM %s%s
		ORDER BY distance_km ASC, %s ASC
		LIMIT %s OFFSET %s`,
		t.columns(), loc, geog, t.from(), b.whereClause(), t.col("id"),
		b.arg(q.Limit), b.arg(q.Offset),
	)

	var rows []placeRow
	if err := r.db.SelectContext(ctx, &rows, query, b.args...); err != nil {
		if isSpatialError(err) {
			r.logger.Warn("Spatial query unavailable", zap.String("kind", string(q.Kind)), zap.Error(err))
			return nil, 0, repository.ErrSpatialUnavailable
		}
		r.logger.Error("Failed to search nearby records",
			zap.String("kind", string(q.Kind)),
			zap.Float64("lat", q.Lat),
			zap.Float64("lng", q.Lng),
			zap.Float64("radius_km", q.RadiusKm),
			zap.Error(err))
		return nil, 0, fmt.Errorf("search nearby: %w", err)
	}

	places, total := toPlaces(rows, q.Kind)

	// Страница за пределами выдачи: окно COUNT(*) OVER() не вернуло строк
	if len(rows) == 0 && q.Offset > 0 {
		countArgs := b.args[:len(b.args)-2]
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", t.from(), b.whereClause())
		if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
			r.logger.Error("Failed to count nearby records", zap.String("kind", string(q.Kind)), zap.Error(err))
			return nil, 0, fmt.Errorf("count nearby: %w", err)
		}
	}

	return places, total, nil
}

func (r *geoRecordRepository) CountUnindexed(ctx context.Context, kind domain.RecordKind, filter repository.ListingFilter) (int, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	b := &queryBuilder{}
	b.addRaw(t.col("latitude") + " IS NOT NULL")
	b.addRaw(t.col("longitude") + " IS NOT NULL")
	b.addRaw(t.col("location") + " IS NULL")
	b.applyListingFilter(t, filter)

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", t.from(), b.whereClause())

	var count int
	if err := r.db.GetContext(ctx, &count, query, b.args...); err != nil {
		r.logger.Error("Failed to count unindexed records", zap.String("kind", string(kind)), zap.Error(err))
		return 0, fmt.Errorf("count unindexed: %w", err)
	}
	return count, nil
}

func (r *geoRecordRepository) ScanPlaces(ctx context.Context, q repository.ScanQuery) ([]*domain.GeoPlace, error) {
	t, err := tableFor(q.Kind)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	if limit > MaxScanLimit {
		limit = MaxScanLimit
	}

	b := &queryBuilder{}
	b.add(t.col("id")+" > %s", q.AfterID)
	if q.FromID != nil {
		b.add(t.col("id")+" >= %s", *q.FromID)
	}
	if q.ToID != nil {
		b.add(t.col("id")+" <= %s", *q.ToID)
	}
	if q.ScalarsOnly {
		b.addRaw(t.col("latitude") + " IS NOT NULL")
		b.addRaw(t.col("longitude") + " IS NOT NULL")
	}
	b.applyListingFilter(t, q.Filter)
	limitArg := b.arg(limit)

	build := func(columns string) string {
		return fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s ASC LIMIT %s",
			columns, t.from(), b.whereClause(), t.col("id"), limitArg)
	}

	var rows []placeRow
	err = r.db.SelectContext(ctx, &rows, build(t.columns()), b.args...)
	if err != nil && isSpatialError(err) {
		r.logger.Warn("Reading records without geometry", zap.String("kind", string(q.Kind)), zap.Error(err))
		rows = nil
		err = r.db.SelectContext(ctx, &rows, build(t.plainColumns()), b.args...)
	}
	if err != nil {
		r.logger.Error("Failed to scan records",
			zap.String("kind", string(q.Kind)),
			zap.Int64("after_id", q.AfterID),
			zap.Error(err))
		return nil, fmt.Errorf("scan records: %w", err)
	}

	places, _ := toPlaces(rows, q.Kind)
	return places, nil
}

func (r *geoRecordRepository) ListPlaces(
	ctx context.Context,
	kind domain.RecordKind,
	filter repository.ListingFilter,
	limit, offset int,
) ([]*domain.GeoPlace, int, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, 0, err
	}

	b := &queryBuilder{}
	b.applyListingFilter(t, filter)

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s%s
		ORDER BY %s ASC
		LIMIT %s OFFSET %s`,
		t.plainColumns(), t.from(), b.whereClause(), t.col("id"), b.arg(limit), b.arg(offset),
	)

	var rows []placeRow
	if err := r.db.SelectContext(ctx, &rows, query, b.args...); err != nil {
		r.logger.Error("Failed to list records", zap.String("kind", string(kind)), zap.Error(err))
		return nil, 0, fmt.Errorf("list records: %w", err)
	}

	places, total := toPlaces(rows, kind)
	return places, total, nil
}

func (r *geoRecordRepository) GetByID(ctx context.Context, kind domain.RecordKind, id int64) (*domain.GeoRecord, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", t.columns(), t.from(), t.col("id"))

	var row placeRow
	err = r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrRecordNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get record by ID",
			zap.String("kind", string(kind)),
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("get record: %w", err)
	}

	return &row.toPlace(kind).GeoRecord, nil
}

// SaveCoordinates пишет скаляры и геометрию одним UPDATE; геометрия строится из записанных скаляров
func (r *geoRecordRepository) SaveCoordinates(ctx context.Context, record *domain.GeoRecord) error {
	t, err := tableFor(record.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET
			latitude = $1::double precision,
			longitude = $2::double precision,
			location = CASE
				WHEN $1::double precision IS NULL OR $2::double precision IS NULL THEN NULL
				ELSE ST_SetSRID(ST_MakePoint($2::double precision, $1::double precision), %d)
			END,
			updated_at = NOW()
		WHERE id = $3`, t.table, SRID4326)

	res, err := r.db.ExecContext(ctx, query, record.Latitude, record.Longitude, record.ID)
	if err != nil {
		r.logger.Error("Failed to save coordinates",
			zap.String("kind", string(record.Kind)),
			zap.Int64("id", record.ID),
			zap.Error(err))
		return fmt.Errorf("save coordinates of %s %d: %w", record.Kind, record.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save coordinates of %s %d: %w", record.Kind, record.ID, err)
	}
	if affected == 0 {
		return repository.ErrRecordNotFound
	}
	return nil
}

func (r *geoRecordRepository) RederiveGeometry(ctx context.Context, kind domain.RecordKind, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("UPDATE %s %s SET location = %s, updated_at = NOW() WHERE %s = ANY($1)",
		t.table, t.alias, locationFromScalars(t), t.col("id"))

	res, err := r.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		r.logger.Error("Failed to rederive geometry",
			zap.String("kind", string(kind)),
			zap.Int("count", len(ids)),
			zap.Error(err))
		return 0, fmt.Errorf("rederive geometry: %w", err)
	}

	return res.RowsAffected()
}
