package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/i20tominaga/resident-app/internal/building"
	"github.com/i20tominaga/resident-app/internal/middleware"
	"github.com/i20tominaga/resident-app/internal/preference"
)

// UpdatePreferencesRequest represents the request body for PUT /preferences.
type UpdatePreferencesRequest struct {
	NotificationSettings preference.NotificationSettings `json:"notification_settings"`
	MinRelevanceScore    int                             `json:"min_relevance_score"`
	FacilitiesOfInterest []string                        `json:"facilities_of_interest"`
	TimePreferences      []building.TimePreference       `json:"time_preferences"`
}

// PreferenceHandlers holds dependencies for preference HTTP handlers.
type PreferenceHandlers struct {
	users building.UserRepository
	prefs preference.Store
}

// NewPreferenceHandlers creates a new PreferenceHandlers instance.
func NewPreferenceHandlers(users building.UserRepository, prefs preference.Store) *PreferenceHandlers {
	return &PreferenceHandlers{users: users, prefs: prefs}
}

// HandlePreferences dispatches /preferences by method.
func (h *PreferenceHandlers) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.GetPreferences(w, r)
	case http.MethodPut:
		h.UpdatePreferences(w, r)
	default:
		WriteError(w, r.Context(), http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	}
}

// GetPreferences handles GET /preferences. Users who never saved
// preferences get the defaults seeded from their profile.
func (h *PreferenceHandlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	prefs, err := h.prefs.Get(ctx, userID)
	if err == nil {
		WriteJSON(w, ctx, http.StatusOK, prefs)
		return
	}
	if !errors.Is(err, preference.ErrNotFound) {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load preferences")
		return
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load user")
		return
	}
	WriteJSON(w, ctx, http.StatusOK, preference.DefaultPreferences(userID, user))
}

// UpdatePreferences handles PUT /preferences. The relevance threshold is
// clamped into the valid score range rather than rejected.
func (h *PreferenceHandlers) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	var req UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	for _, tp := range req.TimePreferences {
		if tp.StartHour < 0 || tp.StartHour > 23 || tp.EndHour < 0 || tp.EndHour > 24 || tp.StartHour >= tp.EndHour {
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "time preferences must use hours 0-24 with start before end")
			return
		}
	}

	prefs := &preference.Preferences{
		UserID:               userID,
		NotificationSettings: req.NotificationSettings,
		MinRelevanceScore:    preference.ClampThreshold(req.MinRelevanceScore),
		FacilitiesOfInterest: req.FacilitiesOfInterest,
		TimePreferences:      req.TimePreferences,
	}

	if err := h.prefs.Set(ctx, prefs); err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to save preferences")
		return
	}
	WriteJSON(w, ctx, http.StatusOK, prefs)
}
