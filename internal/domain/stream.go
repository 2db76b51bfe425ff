package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names (должны совпадать с сервисом объявлений)
const (
	StreamCoordinatesSync     = "stream:geo:coordinates:sync"
	StreamCoordinatesSynced   = "stream:geo:coordinates:synced"
	StreamCoordinatesRepaired = "stream:geo:coordinates:repaired"
)

// CoordinateSyncEvent - входящее событие: запись сохранена с новыми координатами
type CoordinateSyncEvent struct {
	Kind      RecordKind `json:"kind"`
	RecordID  int64      `json:"record_id"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Point     *Point     `json:"point,omitempty"`
}

// Record возвращает запись из события
func (e *CoordinateSyncEvent) Record() *GeoRecord {
	rec := &GeoRecord{
		ID:        e.RecordID,
		Kind:      e.Kind,
		Latitude:  e.Latitude,
		Longitude: e.Longitude,
	}
	if e.Point != nil {
		p := *e.Point
		rec.Point = &p
	}
	return rec
}

// CoordinateSyncedEvent - результат синхронизации
type CoordinateSyncedEvent struct {
	EventID   uuid.UUID  `json:"event_id"`
	Kind      RecordKind `json:"kind"`
	RecordID  int64      `json:"record_id"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Changed   bool       `json:"changed"`
	Error     string     `json:"error,omitempty"`
}

// CoordinatesRepairedEvent - координаты записи заменены ремонтом
type CoordinatesRepairedEvent struct {
	EventID      uuid.UUID  `json:"event_id"`
	RunID        uuid.UUID  `json:"run_id"`
	Kind         RecordKind `json:"kind"`
	RecordID     int64      `json:"record_id"`
	OldLatitude  *float64   `json:"old_latitude,omitempty"`
	OldLongitude *float64   `json:"old_longitude,omitempty"`
	NewLatitude  float64    `json:"new_latitude"`
	NewLongitude float64    `json:"new_longitude"`
	Region       string     `json:"region"`
	RepairedAt   time.Time  `json:"repaired_at"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
