package domain

import (
	"errors"
	"fmt"
)

// MinReferenceRegions - минимальный размер таблицы регионов для ремонта координат
const MinReferenceRegions = 10

// Range - замкнутый интервал градусов
type Range struct {
	Min float64
	Max float64
}

// ReferenceRegion - именованная прямоугольная область, приближающая реальный город
type ReferenceRegion struct {
	Name string
	Lat  Range
	Lng  Range
}

// Contains проверяет попадание координат в регион
func (r ReferenceRegion) Contains(lat, lng float64) bool {
	return lat >= r.Lat.Min && lat <= r.Lat.Max && lng >= r.Lng.Min && lng <= r.Lng.Max
}

// Validate проверяет корректность границ региона
func (r ReferenceRegion) Validate() error {
	if r.Name == "" {
		return errors.New("region name is empty")
	}
	if r.Lat.Min > r.Lat.Max || r.Lng.Min > r.Lng.Max {
		return fmt.Errorf("region %q: min is greater than max", r.Name)
	}
	if !GlobalBounds.Contains(r.Lat.Min, r.Lng.Min) || !GlobalBounds.Contains(r.Lat.Max, r.Lng.Max) {
		return fmt.Errorf("region %q: bounds outside valid coordinates", r.Name)
	}
	return nil
}

// RegionSet - неизменяемая таблица регионов, передаваемая в ремонт координат
type RegionSet struct {
	regions []ReferenceRegion
}

// NewRegionSet валидирует регионы и создает таблицу
func NewRegionSet(regions []ReferenceRegion) (RegionSet, error) {
	if len(regions) < MinReferenceRegions {
		return RegionSet{}, fmt.Errorf("at least %d reference regions required, got %d", MinReferenceRegions, len(regions))
	}

	seen := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return RegionSet{}, err
		}
		if _, dup := seen[r.Name]; dup {
			return RegionSet{}, fmt.Errorf("duplicate region %q", r.Name)
		}
		seen[r.Name] = struct{}{}
	}

	cp := make([]ReferenceRegion, len(regions))
	copy(cp, regions)
	return RegionSet{regions: cp}, nil
}

// Len возвращает количество регионов
func (s RegionSet) Len() int {
	return len(s.regions)
}

// At возвращает регион по индексу
func (s RegionSet) At(i int) ReferenceRegion {
	return s.regions[i]
}

// Lookup ищет регион по имени
func (s RegionSet) Lookup(name string) (ReferenceRegion, bool) {
	for _, r := range s.regions {
		if r.Name == name {
			return r, true
		}
	}
	return ReferenceRegion{}, false
}
