package dto

import "github.com/estate-geo-service/internal/domain"

// ProximitySearchRequest - запрос поиска по радиусу с фильтрами объявлений.
// Без lat/lng возвращается обычная страница списка.
type ProximitySearchRequest struct {
	Kind           domain.RecordKind `json:"kind" query:"-" validate:"required,record_kind"`
	Lat            *float64          `json:"lat,omitempty" query:"lat" validate:"omitempty,min=-90,max=90"`
	Lng            *float64          `json:"lng,omitempty" query:"lng" validate:"omitempty,min=-180,max=180"`
	RadiusKm       *float64          `json:"radius,omitempty" query:"radius"`
	PropertyTypeID *int64            `json:"property_type,omitempty" query:"property_type" validate:"omitempty,gt=0"`
	MinPrice       *float64          `json:"min_price,omitempty" query:"min_price" validate:"omitempty,gte=0"`
	MaxPrice       *float64          `json:"max_price,omitempty" query:"max_price" validate:"omitempty,gte=0"`
	MinBedrooms    *int              `json:"min_bedrooms,omitempty" query:"min_bedrooms" validate:"omitempty,gte=0"`
	MaxBedrooms    *int              `json:"max_bedrooms,omitempty" query:"max_bedrooms" validate:"omitempty,gte=0"`
	MinBathrooms   *float64          `json:"min_bathrooms,omitempty" query:"min_bathrooms" validate:"omitempty,gte=0"`
	MaxBathrooms   *float64          `json:"max_bathrooms,omitempty" query:"max_bathrooms" validate:"omitempty,gte=0"`
	Page           int               `json:"page" query:"page" validate:"gte=0"`
	PageSize       int               `json:"page_size" query:"page_size" validate:"gte=0"`
}

// HasGeo - задана точка запроса (обе координаты)
func (r *ProximitySearchRequest) HasGeo() bool {
	return r.Lat != nil && r.Lng != nil
}

// CoordinateReportRequest - запрос отчёта о дефектах координат
type CoordinateReportRequest struct {
	Kind   domain.RecordKind `json:"kind" query:"kind" validate:"required,record_kind"`
	FromID *int64            `json:"from_id,omitempty" query:"from_id" validate:"omitempty,gt=0"`
	ToID   *int64            `json:"to_id,omitempty" query:"to_id" validate:"omitempty,gt=0"`
}

// Scope - область проверки
func (r *CoordinateReportRequest) Scope() domain.AuditScope {
	return domain.AuditScope{Kind: r.Kind, FromID: r.FromID, ToID: r.ToID}
}
