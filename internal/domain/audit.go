package domain

// AuditSampleSize - сколько идентификаторов сохраняется в примере каждой категории
const AuditSampleSize = 5

// AuditScope - область проверки: тип записей и необязательный диапазон ID (включительно)
type AuditScope struct {
	Kind   RecordKind `json:"kind"`
	FromID *int64     `json:"from_id,omitempty"`
	ToID   *int64     `json:"to_id,omitempty"`
}

// DefectBucket - количество записей категории и первые ID по возрастанию
type DefectBucket struct {
	Count  int     `json:"count"`
	Sample []int64 `json:"sample"`
}

// AuditReport - отчёт проверки согласованности координат
type AuditReport struct {
	Scope           AuditScope                       `json:"scope"`
	Total           int                              `json:"total"`
	WithCoordinates int                              `json:"with_coordinates"`
	Defects         map[DefectCategory]*DefectBucket `json:"defects"`
}

// NewAuditReport создает пустой отчёт со всеми категориями
func NewAuditReport(scope AuditScope) *AuditReport {
	defects := make(map[DefectCategory]*DefectBucket, len(DefectCategories))
	for _, c := range DefectCategories {
		defects[c] = &DefectBucket{Sample: []int64{}}
	}
	return &AuditReport{Scope: scope, Defects: defects}
}

// Record учитывает запись в отчёте. Записи должны подаваться по возрастанию ID.
func (r *AuditReport) Record(rec *GeoRecord) Classification {
	c := ClassifyRecord(rec)

	r.Total++
	if rec.HasScalars() {
		r.WithCoordinates++
	}
	if c.Primary != "" {
		r.add(c.Primary, rec.ID)
	}
	if c.Mismatch {
		r.add(DefectMismatch, rec.ID)
	}

	return c
}

func (r *AuditReport) add(category DefectCategory, id int64) {
	b := r.Defects[category]
	b.Count++
	if len(b.Sample) < AuditSampleSize {
		b.Sample = append(b.Sample, id)
	}
}

// Count возвращает количество записей категории
func (r *AuditReport) Count(category DefectCategory) int {
	if b, ok := r.Defects[category]; ok {
		return b.Count
	}
	return 0
}

// NeedsFix - есть дефекты, которые исправляет режим --fix
func (r *AuditReport) NeedsFix() bool {
	return r.Count(DefectGloballyInvalid) > 0 ||
		r.Count(DefectZeroDegenerate) > 0 ||
		r.Count(DefectMismatch) > 0
}
