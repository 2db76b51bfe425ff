package dto

import (
	"github.com/estate-geo-service/internal/domain"
)

// Search strategies
const (
	StrategyIndexed  = "indexed"
	StrategyFallback = "fallback"
	StrategyListing  = "listing"
)

// PlaceDTO - запись в выдаче поиска; distance (км) только для геозапросов
type PlaceDTO struct {
	ID        int64             `json:"id"`
	Kind      domain.RecordKind `json:"kind"`
	Name      string            `json:"name"`
	Latitude  *float64          `json:"latitude"`
	Longitude *float64          `json:"longitude"`
	Distance  *float64          `json:"distance,omitempty"`
	*ListingDTO
}

// ListingDTO - поля объявления
type ListingDTO struct {
	PropertyTypeID int64   `json:"property_type_id"`
	PropertyType   string  `json:"property_type"`
	Status         string  `json:"status"`
	Price          float64 `json:"price"`
	Bedrooms       int     `json:"bedrooms"`
	Bathrooms      float64 `json:"bathrooms"`
	City           string  `json:"city"`
	State          string  `json:"state"`
}

// ProximitySearchResponse - страница выдачи
type ProximitySearchResponse struct {
	Count    int        `json:"count"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Strategy string     `json:"strategy"`
	Results  []PlaceDTO `json:"results"`
}

// ConvertPlace преобразует доменную запись в DTO
func ConvertPlace(p *domain.GeoPlace) PlaceDTO {
	out := PlaceDTO{
		ID:        p.ID,
		Kind:      p.Kind,
		Name:      p.Name,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Distance:  p.DistanceKm,
	}
	if p.Listing != nil {
		out.ListingDTO = &ListingDTO{
			PropertyTypeID: p.Listing.PropertyTypeID,
			PropertyType:   p.Listing.PropertyType,
			Status:         p.Listing.Status,
			Price:          p.Listing.Price,
			Bedrooms:       p.Listing.Bedrooms,
			Bathrooms:      p.Listing.Bathrooms,
			City:           p.Listing.City,
			State:          p.Listing.State,
		}
	}
	return out
}

// ConvertPlaces преобразует список записей
func ConvertPlaces(places []*domain.GeoPlace) []PlaceDTO {
	out := make([]PlaceDTO, 0, len(places))
	for _, p := range places {
		out = append(out, ConvertPlace(p))
	}
	return out
}
