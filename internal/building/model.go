// Package building provides models and repositories for buildings,
// facilities, and resident/staff user profiles.
package building

import "time"

// Role identifies the kind of portal account.
type Role string

// Account roles.
const (
	RoleResident Role = "resident"
	RoleStaff    Role = "staff"
)

// Valid reports whether the role is one of the known account roles.
func (r Role) Valid() bool {
	return r == RoleResident || r == RoleStaff
}

// FacilityType categorizes a building amenity.
type FacilityType string

// Facility types.
const (
	FacilityParking FacilityType = "parking"
	FacilityGym     FacilityType = "gym"
	FacilityLobby   FacilityType = "lobby"
	FacilityCommon  FacilityType = "common"
	FacilityRooftop FacilityType = "rooftop"
	FacilityOther   FacilityType = "other"
)

// TimePreference is a user-declared hour-of-day window of heightened
// interest or sensitivity. Hours are plain 0-23 integers; windows crossing
// midnight are not supported.
type TimePreference struct {
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	Label     string `json:"label"`
}

// Facility is a named amenity within a building, identified by a stable ID.
type Facility struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	BuildingID  string       `json:"building_id"`
	Floor       *int         `json:"floor,omitempty"`
	Type        FacilityType `json:"type"`
	Description string       `json:"description,omitempty"`
}

// Building represents a managed residential building.
type Building struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Address           string     `json:"address"`
	TotalFloors       int        `json:"total_floors"`
	TotalUnits        int        `json:"total_units"`
	ManagementCompany string     `json:"management_company"`
	Features          []Facility `json:"features,omitempty"`
}

// User is a portal account. FloorNumber is nil for accounts without a fixed
// floor (staff, commercial tenants). PasswordHash is never serialized.
type User struct {
	ID                   string           `json:"id"`
	Email                string           `json:"email"`
	DisplayName          string           `json:"display_name"`
	Role                 Role             `json:"role"`
	BuildingID           string           `json:"building_id"`
	FloorNumber          *int             `json:"floor_number,omitempty"`
	UnitNumber           string           `json:"unit_number,omitempty"`
	FacilitiesOfInterest []string         `json:"facilities_of_interest,omitempty"`
	TimePreferences      []TimePreference `json:"time_preferences,omitempty"`
	PasswordHash         string           `json:"-"`
	CreatedAt            time.Time        `json:"created_at"`
}
