// Package seed decodes raw JSON fixture files into typed models and preloads
// the in-memory repositories for development mode. Fixture dates are plain
// strings; conversion to time.Time happens here, at the boundary, so the
// rest of the system only ever sees structured values.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/i20tominaga/resident-app/internal/building"
	"github.com/i20tominaga/resident-app/internal/event"
	"github.com/i20tominaga/resident-app/internal/faq"
)

// rawUser mirrors the users.json fixture shape.
type rawUser struct {
	ID                   string                    `json:"id"`
	Email                string                    `json:"email"`
	DisplayName          string                    `json:"display_name"`
	Role                 string                    `json:"role"`
	BuildingID           string                    `json:"building_id"`
	FloorNumber          *int                      `json:"floor_number"`
	UnitNumber           string                    `json:"unit_number"`
	FacilitiesOfInterest []string                  `json:"facilities_of_interest"`
	TimePreferences      []building.TimePreference `json:"time_preferences"`
	CreatedAt            string                    `json:"created_at"`
}

// rawEvent mirrors the events.json fixture shape.
type rawEvent struct {
	ID                 string   `json:"id"`
	BuildingID         string   `json:"building_id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Type               string   `json:"type"`
	Status             string   `json:"status"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	StartTime          string   `json:"start_time"`
	EndTime            string   `json:"end_time"`
	AffectedFloors     []int    `json:"affected_floors"`
	AffectedFacilities []string `json:"affected_facilities"`
	AffectedAreas      []string `json:"affected_areas"`
	NoiseLevel         string   `json:"noise_level"`
	AccessRestrictions bool     `json:"access_restrictions"`
	Details            string   `json:"details"`
	Contractor         string   `json:"contractor"`
	ContactPerson      string   `json:"contact_person"`
	ContactPhone       string   `json:"contact_phone"`
	Attachments        []string `json:"attachments"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

// rawFAQ mirrors the faqs.json fixture shape.
type rawFAQ struct {
	ID         string `json:"id"`
	BuildingID string `json:"building_id"`
	Category   string `json:"category"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Order      int    `json:"order"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ParseDate accepts the two date encodings the fixtures use: a bare calendar
// date ("2025-02-01") or a full RFC 3339 timestamp. An empty string yields
// the zero time without error.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return t, nil
}

// ConvertUser converts a decoded fixture record into a typed User.
func ConvertUser(raw rawUser) (*building.User, error) {
	createdAt, err := ParseDate(raw.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", raw.ID, err)
	}
	role := building.Role(raw.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("user %s: unknown role %q", raw.ID, raw.Role)
	}
	return &building.User{
		ID:                   raw.ID,
		Email:                raw.Email,
		DisplayName:          raw.DisplayName,
		Role:                 role,
		BuildingID:           raw.BuildingID,
		FloorNumber:          raw.FloorNumber,
		UnitNumber:           raw.UnitNumber,
		FacilitiesOfInterest: raw.FacilitiesOfInterest,
		TimePreferences:      raw.TimePreferences,
		CreatedAt:            createdAt,
	}, nil
}

// ConvertEvent converts a decoded fixture record into a typed event.
func ConvertEvent(raw rawEvent) (*event.ConstructionEvent, error) {
	startDate, err := ParseDate(raw.StartDate)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", raw.ID, err)
	}
	endDate, err := ParseDate(raw.EndDate)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", raw.ID, err)
	}
	createdAt, err := ParseDate(raw.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", raw.ID, err)
	}
	updatedAt, err := ParseDate(raw.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", raw.ID, err)
	}
	status := event.Status(raw.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("event %s: unknown status %q", raw.ID, raw.Status)
	}
	return &event.ConstructionEvent{
		ID:                 raw.ID,
		BuildingID:         raw.BuildingID,
		Title:              raw.Title,
		Description:        raw.Description,
		Type:               event.Type(raw.Type),
		Status:             status,
		StartDate:          startDate,
		EndDate:            endDate,
		StartTime:          raw.StartTime,
		EndTime:            raw.EndTime,
		AffectedFloors:     raw.AffectedFloors,
		AffectedFacilities: raw.AffectedFacilities,
		AffectedAreas:      raw.AffectedAreas,
		NoiseLevel:         event.NoiseLevel(raw.NoiseLevel),
		AccessRestrictions: raw.AccessRestrictions,
		Details:            raw.Details,
		Contractor:         raw.Contractor,
		ContactPerson:      raw.ContactPerson,
		ContactPhone:       raw.ContactPhone,
		Attachments:        raw.Attachments,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}, nil
}

// ConvertFAQ converts a decoded fixture record into a typed FAQ.
func ConvertFAQ(raw rawFAQ) (*faq.FAQ, error) {
	createdAt, err := ParseDate(raw.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("faq %s: %w", raw.ID, err)
	}
	updatedAt, err := ParseDate(raw.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("faq %s: %w", raw.ID, err)
	}
	return &faq.FAQ{
		ID:         raw.ID,
		BuildingID: raw.BuildingID,
		Category:   raw.Category,
		Question:   raw.Question,
		Answer:     raw.Answer,
		Order:      raw.Order,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

// Stores groups the repositories Load populates.
type Stores struct {
	Users  building.UserRepository
	Events event.Repository
	FAQs   faq.Repository
}

// Load reads users.json, events.json, and faqs.json from dir and inserts
// their records into the given repositories. Missing files are skipped;
// malformed records fail the whole load.
func Load(ctx context.Context, dir string, stores Stores) error {
	var users struct {
		Users []rawUser `json:"users"`
	}
	if ok, err := readJSON(filepath.Join(dir, "users.json"), &users); err != nil {
		return err
	} else if ok {
		for _, raw := range users.Users {
			user, err := ConvertUser(raw)
			if err != nil {
				return err
			}
			if err := stores.Users.Insert(ctx, user); err != nil {
				return fmt.Errorf("seed user %s: %w", user.ID, err)
			}
		}
	}

	var events struct {
		Events []rawEvent `json:"events"`
	}
	if ok, err := readJSON(filepath.Join(dir, "events.json"), &events); err != nil {
		return err
	} else if ok {
		for _, raw := range events.Events {
			ev, err := ConvertEvent(raw)
			if err != nil {
				return err
			}
			if err := stores.Events.Insert(ctx, ev); err != nil {
				return fmt.Errorf("seed event %s: %w", ev.ID, err)
			}
		}
	}

	var faqs struct {
		FAQs []rawFAQ `json:"faqs"`
	}
	if ok, err := readJSON(filepath.Join(dir, "faqs.json"), &faqs); err != nil {
		return err
	} else if ok {
		for _, raw := range faqs.FAQs {
			f, err := ConvertFAQ(raw)
			if err != nil {
				return err
			}
			if err := stores.FAQs.Insert(ctx, f); err != nil {
				return fmt.Errorf("seed faq %s: %w", f.ID, err)
			}
		}
	}

	return nil
}

// readJSON decodes one fixture file. The boolean reports whether the file
// existed.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}
