package domain

// DefectCategory - категория дефекта координат
type DefectCategory string

const (
	DefectMissing         DefectCategory = "missing"
	DefectGloballyInvalid DefectCategory = "globally_invalid"
	DefectZeroDegenerate  DefectCategory = "zero_degenerate"
	DefectOutOfRegion     DefectCategory = "out_of_region"
	DefectMismatch        DefectCategory = "representation_mismatch"
)

// DefectCategories - порядок категорий в отчётах
var DefectCategories = []DefectCategory{
	DefectMissing,
	DefectGloballyInvalid,
	DefectZeroDegenerate,
	DefectOutOfRegion,
	DefectMismatch,
}

// Classification - результат классификации одной записи.
// Primary взаимоисключающая (пустая, если скаляры в порядке), Mismatch проверяется независимо.
type Classification struct {
	Primary  DefectCategory
	Mismatch bool
}

// IsClean - дефектов нет
func (c Classification) IsClean() bool {
	return c.Primary == "" && !c.Mismatch
}

// ClassifyRecord классифицирует координаты записи
func ClassifyRecord(r *GeoRecord) Classification {
	var c Classification

	if !r.HasScalars() {
		c.Primary = DefectMissing
		return c
	}

	lat, lng := *r.Latitude, *r.Longitude
	switch {
	case lat == 0 && lng == 0:
		c.Primary = DefectZeroDegenerate
	case !GlobalBounds.Contains(lat, lng):
		c.Primary = DefectGloballyInvalid
	case !USBounds.Contains(lat, lng):
		c.Primary = DefectOutOfRegion
	}

	c.Mismatch = r.PointMismatch()
	return c
}
