package cases

import (
	"time"
)

// CaseID identifier type, assigned by storage at insert time.
type CaseID int64

// Aggregate Root: Case. One diagnostic submission plus the report generated
// for it. Cases are append-only; every field is immutable after creation and
// a case is never re-diagnosed in place.
type Case struct {
	ID              CaseID    `json:"id"`
	OwnerID         int64     `json:"owner_id"`
	EngineType      string    `json:"engine_type,omitempty"`
	Symptoms        string    `json:"symptoms"`
	ImageRef        string    `json:"image_ref,omitempty"`
	DiagnosisReport string    `json:"diagnosis_report"`
	CreatedAt       time.Time `json:"created_at"`
}
