package domain

import (
	"time"

	"github.com/google/uuid"
)

// RepairSelection - какие дефекты исправляются.
// По умолчанию globally_invalid + zero_degenerate.
type RepairSelection struct {
	ZeroOnly           bool `json:"zero_only"`
	IncludeOutOfRegion bool `json:"include_out_of_region"`
}

// Matches проверяет, попадает ли классификация в выборку. ZeroOnly имеет приоритет.
func (s RepairSelection) Matches(c Classification) bool {
	switch c.Primary {
	case DefectZeroDegenerate:
		return true
	case DefectGloballyInvalid:
		return !s.ZeroOnly
	case DefectOutOfRegion:
		return !s.ZeroOnly && s.IncludeOutOfRegion
	}
	return false
}

// RepairProposal - предлагаемая замена координат одной записи
type RepairProposal struct {
	RecordID     int64          `json:"record_id"`
	Kind         RecordKind     `json:"kind"`
	Category     DefectCategory `json:"category"`
	OldLatitude  *float64       `json:"old_latitude"`
	OldLongitude *float64       `json:"old_longitude"`
	NewLatitude  float64        `json:"new_latitude"`
	NewLongitude float64        `json:"new_longitude"`
	Region       string         `json:"region"`
}

// Record возвращает запись с новыми координатами (скаляры и геометрия согласованы)
func (p RepairProposal) Record() *GeoRecord {
	lat, lng := p.NewLatitude, p.NewLongitude
	rec := &GeoRecord{ID: p.RecordID, Kind: p.Kind, Latitude: &lat, Longitude: &lng}
	rec.SyncCoordinates()
	return rec
}

// RepairOutcome - результат записи одной замены
type RepairOutcome struct {
	Proposal RepairProposal `json:"proposal"`
	Err      error          `json:"-"`
}

// Succeeded - запись прошла успешно
func (o RepairOutcome) Succeeded() bool {
	return o.Err == nil
}

// RepairSummary - итог запуска ремонта
type RepairSummary struct {
	RunID      uuid.UUID        `json:"run_id"`
	Kind       RecordKind       `json:"kind"`
	Selection  RepairSelection  `json:"selection"`
	DryRun     bool             `json:"dry_run"`
	Proposals  []RepairProposal `json:"proposals"`
	Outcomes   []RepairOutcome  `json:"outcomes,omitempty"`
	Updated    int              `json:"updated"`
	Failed     int              `json:"failed"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// AddOutcome учитывает результат записи
func (s *RepairSummary) AddOutcome(o RepairOutcome) {
	s.Outcomes = append(s.Outcomes, o)
	if o.Succeeded() {
		s.Updated++
	} else {
		s.Failed++
	}
}
