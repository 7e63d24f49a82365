package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/i20tominaga/resident-app/internal/building"
	"github.com/i20tominaga/resident-app/internal/event"
	"github.com/i20tominaga/resident-app/internal/middleware"
	"github.com/i20tominaga/resident-app/internal/preference"
	"github.com/i20tominaga/resident-app/internal/relevance"
)

// Upper bound for the dashboard look-ahead window.
const maxDashboardDays = 90

// DashboardSummary is the personalized schedule view for one resident.
type DashboardSummary struct {
	Ongoing      []event.ConstructionEvent `json:"ongoing"`
	Upcoming     []event.ConstructionEvent `json:"upcoming"`
	InNextDays   []event.ConstructionEvent `json:"in_next_days"`
	Days         int                       `json:"days"`
	Scores       []relevance.Score         `json:"scores"`
	Personalized []event.ConstructionEvent `json:"personalized"`
}

// DashboardHandlers holds dependencies for the dashboard endpoint.
type DashboardHandlers struct {
	users   building.UserRepository
	events  event.Repository
	prefs   preference.Store
	weights *relevance.Weights
}

// NewDashboardHandlers creates a new DashboardHandlers instance.
func NewDashboardHandlers(users building.UserRepository, events event.Repository, prefs preference.Store, weights *relevance.Weights) *DashboardHandlers {
	if weights == nil {
		weights = relevance.DefaultWeights()
	}
	return &DashboardHandlers{users: users, events: events, prefs: prefs, weights: weights}
}

// GetDashboard handles GET /dashboard?days= for the authenticated user.
// The days parameter controls the look-ahead window and defaults to 7.
func (h *DashboardHandlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	days := relevance.DefaultUpcomingDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxDashboardDays {
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "days must be an integer between 1 and 90")
			return
		}
		days = parsed
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, building.ErrUserNotFound) {
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "User not found")
			return
		}
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load user")
		return
	}

	events, err := h.events.ListByBuilding(ctx, user.BuildingID)
	if err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load events")
		return
	}

	prefs, err := h.prefs.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, preference.ErrNotFound) {
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load preferences")
			return
		}
		prefs = preference.DefaultPreferences(userID, user)
	}

	profile := prefs.ScoringProfile(user)
	now := time.Now()

	summary := DashboardSummary{
		Ongoing:      relevance.OngoingEvents(events, now),
		Upcoming:     relevance.UpcomingEvents(events, now),
		InNextDays:   relevance.EventsInNextDays(events, now, days),
		Days:         days,
		Scores:       relevance.CalculateScores(profile, events, h.weights),
		Personalized: relevance.PersonalizedEvents(profile, events, prefs.MinRelevanceScore, h.weights),
	}

	WriteJSON(w, ctx, http.StatusOK, summary)
}
