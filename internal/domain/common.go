package domain

// Point - геометрия точки в WGS84 (SRID 4326). Хранится в порядке (X = долгота, Y = широта).
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// BoundingBox - прямоугольная область в градусах (границы включительно)
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains проверяет попадание координат в область
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

var (
	// GlobalBounds - допустимые координаты WGS84
	GlobalBounds = BoundingBox{MinLat: -90, MinLon: -180, MaxLat: 90, MaxLon: 180}

	// USBounds - континентальные США (без Аляски и Гавайев)
	USBounds = BoundingBox{MinLat: 20, MinLon: -130, MaxLat: 50, MaxLon: -65}
)
