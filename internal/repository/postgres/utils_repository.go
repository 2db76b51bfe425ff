package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	// SRID4326 - WGS84 coordinate system
	SRID4326 = 4326
	// DefaultScanLimit - размер страницы keyset-чтения по умолчанию
	DefaultScanLimit = 500
	// MaxScanLimit - максимальный размер страницы keyset-чтения
	MaxScanLimit = 5000
)

// SQLSTATE кодов, означающих отсутствие PostGIS
var spatialErrorCodes = map[string]struct{}{
	"42883": {}, // undefined_function
	"42704": {}, // undefined_object
	"58P01": {}, // undefined_file (extension library missing)
}

// kindTable описывает таблицу одного типа записей
type kindTable struct {
	table   string
	alias   string
	name    string
	listing bool
}

var kindTables = map[domain.RecordKind]kindTable{
	domain.KindListing: {table: "properties", alias: "p", name: "p.title", listing: true},
	domain.KindSchool:  {table: "schools", alias: "s", name: "s.name"},
	domain.KindPOI:     {table: "points_of_interest", alias: "poi", name: "poi.name"},
}

func tableFor(kind domain.RecordKind) (kindTable, error) {
	t, ok := kindTables[kind]
	if !ok {
		return kindTable{}, fmt.Errorf("unsupported record kind %q", kind)
	}
	return t, nil
}

func (t kindTable) col(name string) string {
	return t.alias + "." + name
}

// from возвращает FROM-часть (для объявлений с типом недвижимости)
func (t kindTable) from() string {
	if t.listing {
		return fmt.Sprintf("%s %s LEFT JOIN property_types pt ON pt.id = %s", t.table, t.alias, t.col("property_type_id"))
	}
	return t.table + " " + t.alias
}

// columns возвращает список колонок placeRow
func (t kindTable) columns() string {
	cols := []string{
		t.col("id") + " AS id",
		t.name + " AS name",
		t.col("latitude") + " AS latitude",
		t.col("longitude") + " AS longitude",
		"ST_X(" + t.col("location") + ") AS point_lng",
		"ST_Y(" + t.col("location") + ") AS point_lat",
	}
	if t.listing {
		cols = append(cols,
			t.col("property_type_id")+" AS property_type_id",
			"pt.name AS property_type",
			t.col("status")+" AS status",
			t.col("price")+" AS price",
			t.col("bedrooms")+" AS bedrooms",
			t.col("bathrooms")+" AS bathrooms",
			t.col("city")+" AS city",
			t.col("state")+" AS state",
		)
	}
	return strings.Join(cols, ", ")
}

// plainColumns - колонки без геометрии, для чтения в обход PostGIS
func (t kindTable) plainColumns() string {
	cols := strings.Split(t.columns(), ", ")
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if strings.HasPrefix(c, "ST_") {
			continue
		}
		out = append(out, c)
	}
	return strings.Join(out, ", ")
}

// queryBuilder накапливает условия WHERE и позиционные аргументы
type queryBuilder struct {
	where []string
	args  []interface{}
}

func (b *queryBuilder) arg(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *queryBuilder) add(format string, v interface{}) {
	b.where = append(b.where, fmt.Sprintf(format, b.arg(v)))
}

func (b *queryBuilder) addRaw(cond string) {
	b.where = append(b.where, cond)
}

func (b *queryBuilder) whereClause() string {
	if len(b.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.where, " AND ")
}

// applyListingFilter добавляет фильтры объявлений (только для properties)
func (b *queryBuilder) applyListingFilter(t kindTable, f repository.ListingFilter) {
	if !t.listing {
		return
	}
	if f.PropertyTypeID != nil {
		b.add(t.col("property_type_id")+" = %s", *f.PropertyTypeID)
	}
	if f.MinPrice != nil {
		b.add(t.col("price")+" >= %s", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		b.add(t.col("price")+" <= %s", *f.MaxPrice)
	}
	if f.MinBedrooms != nil {
		b.add(t.col("bedrooms")+" >= %s", *f.MinBedrooms)
	}
	if f.MaxBedrooms != nil {
		b.add(t.col("bedrooms")+" <= %s", *f.MaxBedrooms)
	}
	if f.MinBathrooms != nil {
		b.add(t.col("bathrooms")+" >= %s", *f.MinBathrooms)
	}
	if f.MaxBathrooms != nil {
		b.add(t.col("bathrooms")+" <= %s", *f.MaxBathrooms)
	}
}

// locationFromScalars - выражение геометрии из скалярных колонок
func locationFromScalars(t kindTable) string {
	lat, lng := t.col("latitude"), t.col("longitude")
	return fmt.Sprintf(
		"CASE WHEN %s IS NULL OR %s IS NULL THEN NULL ELSE ST_SetSRID(ST_MakePoint(%s, %s), %d) END",
		lat, lng, lng, lat, SRID4326,
	)
}

// isSpatialError проверяет, что ошибка вызвана отсутствием PostGIS
func isSpatialError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := spatialErrorCodes[pgErr.Code]
		return ok
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		_, ok := spatialErrorCodes[string(pqErr.Code)]
		return ok
	}
	return false
}
