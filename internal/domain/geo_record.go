package domain

import "math"

// CoordinateTolerance - допустимое расхождение скалярных координат и геометрии (~11 м на экваторе)
const CoordinateTolerance = 1e-4

// RecordKind - тип сущности с географической позицией
type RecordKind string

const (
	KindListing RecordKind = "listing"
	KindSchool  RecordKind = "school"
	KindPOI     RecordKind = "poi"
)

// RecordKinds - все поддерживаемые типы
var RecordKinds = []RecordKind{KindListing, KindSchool, KindPOI}

// ParseRecordKind разбирает тип сущности из строки
func ParseRecordKind(s string) (RecordKind, bool) {
	for _, k := range RecordKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// GeoRecord - объявление, школа или точка интереса с двойным представлением координат:
// скалярные latitude/longitude и геометрия point. Скаляры являются источником истины.
type GeoRecord struct {
	ID        int64      `json:"id" db:"id"`
	Kind      RecordKind `json:"kind" db:"-"`
	Latitude  *float64   `json:"latitude" db:"latitude"`
	Longitude *float64   `json:"longitude" db:"longitude"`
	Point     *Point     `json:"point,omitempty" db:"-"`
}

// HasScalars - заданы обе скалярные координаты
func (r *GeoRecord) HasScalars() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// SyncCoordinates приводит представления к согласованному виду перед записью.
// Возвращает true, если запись изменилась.
func (r *GeoRecord) SyncCoordinates() bool {
	switch {
	case r.HasScalars():
		p := Point{Lng: *r.Longitude, Lat: *r.Latitude}
		if r.Point != nil && *r.Point == p {
			return false
		}
		r.Point = &p
		return true

	case r.Point != nil:
		lat, lng := r.Point.Lat, r.Point.Lng
		changed := r.Latitude == nil || *r.Latitude != lat || r.Longitude == nil || *r.Longitude != lng
		r.Latitude = &lat
		r.Longitude = &lng
		return changed
	}

	return false
}

// PointMismatch - оба представления заданы и расходятся больше допуска
func (r *GeoRecord) PointMismatch() bool {
	if !r.HasScalars() || r.Point == nil {
		return false
	}
	return math.Abs(r.Point.Lng-*r.Longitude) > CoordinateTolerance ||
		math.Abs(r.Point.Lat-*r.Latitude) > CoordinateTolerance
}

// ListingAttributes - поля объявления, используемые фильтрами поиска и в выдаче
type ListingAttributes struct {
	PropertyTypeID int64   `json:"property_type_id" db:"property_type_id"`
	PropertyType   string  `json:"property_type" db:"property_type"`
	Status         string  `json:"status" db:"status"`
	Price          float64 `json:"price" db:"price"`
	Bedrooms       int     `json:"bedrooms" db:"bedrooms"`
	Bathrooms      float64 `json:"bathrooms" db:"bathrooms"`
	City           string  `json:"city" db:"city"`
	State          string  `json:"state" db:"state"`
}

// GeoPlace - запись с названием и (для поиска) расстоянием до точки запроса
type GeoPlace struct {
	GeoRecord
	Name       string             `json:"name"`
	Listing    *ListingAttributes `json:"listing,omitempty"`
	DistanceKm *float64           `json:"distance_km,omitempty"`
}
