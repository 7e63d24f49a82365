package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/i20tominaga/resident-app/internal/event"
	"github.com/i20tominaga/resident-app/internal/middleware"
	"github.com/i20tominaga/resident-app/internal/notification"
	"github.com/i20tominaga/resident-app/internal/validate"
)

// CreateEventRequest represents the request body for creating an event.
// Dates are calendar days; start_time and end_time are optional "HH:MM"
// working hours within those days.
type CreateEventRequest struct {
	BuildingID         string   `json:"building_id"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Type               string   `json:"type"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	StartTime          string   `json:"start_time,omitempty"`
	EndTime            string   `json:"end_time,omitempty"`
	AffectedFloors     []int    `json:"affected_floors,omitempty"`
	AffectedFacilities []string `json:"affected_facilities,omitempty"`
	AffectedAreas      []string `json:"affected_areas,omitempty"`
	NoiseLevel         string   `json:"noise_level,omitempty"`
	AccessRestrictions bool     `json:"access_restrictions,omitempty"`
	Details            string   `json:"details,omitempty"`
	Contractor         string   `json:"contractor,omitempty"`
	ContactPerson      string   `json:"contact_person,omitempty"`
	ContactPhone       string   `json:"contact_phone,omitempty"`
	Attachments        []string `json:"attachments,omitempty"`
}

// NotifyEventRequest represents the body for POST /events/{id}/notify.
type NotifyEventRequest struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// EventHandlers holds dependencies for event HTTP handlers.
type EventHandlers struct {
	events   event.Repository
	notifier *notification.Service
	metrics  *middleware.Metrics
}

// NewEventHandlers creates a new EventHandlers instance.
// notifier and metrics are optional and can be nil.
func NewEventHandlers(events event.Repository, notifier *notification.Service, metrics *middleware.Metrics) *EventHandlers {
	return &EventHandlers{events: events, notifier: notifier, metrics: metrics}
}

// HandleEvents dispatches /events by method.
func (h *EventHandlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.ListEvents(w, r)
	case http.MethodPost:
		h.CreateEvent(w, r)
	default:
		WriteError(w, r.Context(), http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	}
}

// HandleEventByID dispatches /events/{id} and its subresources.
func (h *EventHandlers) HandleEventByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/events/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Event not found")
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.GetEvent(w, r, id)
	case len(parts) == 2 && parts[1] == "cancel" && r.Method == http.MethodPost:
		h.CancelEvent(w, r, id)
	case len(parts) == 2 && parts[1] == "notify" && r.Method == http.MethodPost:
		h.NotifyEvent(w, r, id)
	default:
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Unknown event resource")
	}
}

// ListEvents handles GET /events?building_id= - lists a building's events.
func (h *EventHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	buildingID := r.URL.Query().Get("building_id")
	if buildingID == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "building_id query parameter is required")
		return
	}

	events, err := h.events.ListByBuilding(ctx, buildingID)
	if err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list events")
		return
	}
	WriteJSON(w, ctx, http.StatusOK, map[string]any{"events": events})
}

// CreateEvent handles POST /events - staff create a construction event.
func (h *EventHandlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	title, description, msg := validateCreateEvent(req)
	if msg != "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "start_date must be YYYY-MM-DD")
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "end_date must be YYYY-MM-DD")
		return
	}
	if endDate.Before(startDate) {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidTimeRange, "start_date must not be after end_date")
		return
	}
	if req.StartTime != "" && req.EndTime != "" && req.StartTime >= req.EndTime {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidTimeRange, "start_time must be before end_time")
		return
	}

	now := time.Now().UTC()
	ev := &event.ConstructionEvent{
		ID:                 "evt-" + uuid.New().String(),
		BuildingID:         req.BuildingID,
		Title:              title,
		Description:        description,
		Type:               event.Type(req.Type),
		Status:             event.StatusScheduled,
		StartDate:          startDate,
		EndDate:            endDate,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		AffectedFloors:     req.AffectedFloors,
		AffectedFacilities: req.AffectedFacilities,
		AffectedAreas:      req.AffectedAreas,
		NoiseLevel:         event.NoiseLevel(req.NoiseLevel),
		AccessRestrictions: req.AccessRestrictions,
		Details:            req.Details,
		Contractor:         req.Contractor,
		ContactPerson:      req.ContactPerson,
		ContactPhone:       req.ContactPhone,
		Attachments:        req.Attachments,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := h.events.Insert(ctx, ev); err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create event")
		return
	}

	h.broadcast(r, ev, notification.TypeNewEvent, "New construction scheduled", ev.Title)

	WriteJSON(w, ctx, http.StatusCreated, ev)
}

// GetEvent handles GET /events/{id}.
func (h *EventHandlers) GetEvent(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	ev, err := h.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Event not found")
			return
		}
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load event")
		return
	}
	WriteJSON(w, ctx, http.StatusOK, ev)
}

// CancelEvent handles POST /events/{id}/cancel - staff cancel an event and
// residents with matching preferences are notified.
func (h *EventHandlers) CancelEvent(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	ev, err := h.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Event not found")
			return
		}
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load event")
		return
	}
	if ev.Status == event.StatusCancelled {
		WriteError(w, ctx, http.StatusConflict, ErrCodeEventCancelled, "Event is already cancelled")
		return
	}

	if err := h.events.UpdateStatus(ctx, id, event.StatusCancelled); err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to cancel event")
		return
	}
	ev.Status = event.StatusCancelled

	h.broadcast(r, ev, notification.TypeEventCancelled, "Construction cancelled",
		fmt.Sprintf("%s has been cancelled.", ev.Title))

	WriteJSON(w, ctx, http.StatusOK, ev)
}

// NotifyEvent handles POST /events/{id}/notify - staff broadcast an update
// about an event to eligible residents.
func (h *EventHandlers) NotifyEvent(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	if h.notifier == nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Notifications are not configured")
		return
	}

	var req NotifyEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Title == "" || req.Message == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "title and message are required")
		return
	}
	typ := notification.Type(req.Type)
	if !typ.Valid() {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "unknown notification type")
		return
	}

	ev, err := h.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Event not found")
			return
		}
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load event")
		return
	}

	sent, err := h.notifier.Broadcast(ctx, ev, typ, req.Title, req.Message)
	if err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to send notifications")
		return
	}
	if h.metrics != nil {
		h.metrics.AddNotificationsSent(string(typ), sent)
	}

	WriteJSON(w, ctx, http.StatusOK, map[string]any{"notified": sent})
}

// broadcast delivers lifecycle notifications, logging-free and best effort:
// a notification failure must not fail the staff action that triggered it.
func (h *EventHandlers) broadcast(r *http.Request, ev *event.ConstructionEvent, typ notification.Type, title, message string) {
	if h.notifier == nil {
		return
	}
	sent, err := h.notifier.Broadcast(r.Context(), ev, typ, title, message)
	if err != nil {
		return
	}
	if h.metrics != nil {
		h.metrics.AddNotificationsSent(string(typ), sent)
	}
}

// validateCreateEvent returns the sanitized title and description, or a
// validation message.
func validateCreateEvent(req CreateEventRequest) (title, description, msg string) {
	title, err := validate.EventTitle(req.Title)
	if err != nil {
		return "", "", "event title must be between 3 and 120 characters"
	}
	description, err = validate.Description(req.Description)
	if err != nil {
		return "", "", "description is too long"
	}
	if req.BuildingID == "" {
		return "", "", "building_id is required"
	}
	if req.StartDate == "" || req.EndDate == "" {
		return "", "", "start_date and end_date are required"
	}
	if req.NoiseLevel != "" && !event.NoiseLevel(req.NoiseLevel).Valid() {
		return "", "", "noise_level must be low, medium, or high"
	}
	return title, description, ""
}
