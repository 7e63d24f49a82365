// Package event provides the construction/inspection event model and
// repositories for the resident portal.
package event

import "time"

// Type categorizes a building work event.
type Type string

// Event types.
const (
	TypeConstruction Type = "construction"
	TypeInspection   Type = "inspection"
	TypeMaintenance  Type = "maintenance"
	TypeRepair       Type = "repair"
)

// Status is the lifecycle state of an event.
type Status string

// Event statuses.
const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// NoiseLevel is the expected noise intensity of an event.
type NoiseLevel string

// Noise levels. The empty string means no noise estimate was provided.
const (
	NoiseLow    NoiseLevel = "low"
	NoiseMedium NoiseLevel = "medium"
	NoiseHigh   NoiseLevel = "high"
)

// Valid reports whether the noise level is one of the known values.
func (n NoiseLevel) Valid() bool {
	switch n {
	case NoiseLow, NoiseMedium, NoiseHigh:
		return true
	}
	return false
}

// ConstructionEvent is a scheduled construction, inspection, maintenance, or
// repair event within a building. StartDate and EndDate are an inclusive
// calendar range; StartTime and EndTime are optional "HH:MM" strings
// describing daily working hours during that range (empty when unknown).
type ConstructionEvent struct {
	ID                 string     `json:"id"`
	BuildingID         string     `json:"building_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Type               Type       `json:"type"`
	Status             Status     `json:"status"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            time.Time  `json:"end_date"`
	StartTime          string     `json:"start_time,omitempty"`
	EndTime            string     `json:"end_time,omitempty"`
	AffectedFloors     []int      `json:"affected_floors,omitempty"`
	AffectedFacilities []string   `json:"affected_facilities,omitempty"`
	AffectedAreas      []string   `json:"affected_areas,omitempty"`
	NoiseLevel         NoiseLevel `json:"noise_level,omitempty"`
	AccessRestrictions bool       `json:"access_restrictions"`
	Details            string     `json:"details,omitempty"`
	Contractor         string     `json:"contractor,omitempty"`
	ContactPerson      string     `json:"contact_person,omitempty"`
	ContactPhone       string     `json:"contact_phone,omitempty"`
	Attachments        []string   `json:"attachments,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
