// Package faq provides the building FAQ model and repositories.
package faq

import "time"

// FAQ is one answered question for a building, ordered for display.
type FAQ struct {
	ID         string    `json:"id"`
	BuildingID string    `json:"building_id"`
	Category   string    `json:"category"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Order      int       `json:"order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
