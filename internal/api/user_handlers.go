package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/i20tominaga/resident-app/internal/auth"
	"github.com/i20tominaga/resident-app/internal/building"
	"github.com/i20tominaga/resident-app/internal/validate"
)

// CreateUserRequest represents the request body for registering a user.
type CreateUserRequest struct {
	Email                string                    `json:"email"`
	Password             string                    `json:"password"`
	DisplayName          string                    `json:"display_name"`
	Role                 string                    `json:"role"`
	BuildingID           string                    `json:"building_id"`
	FloorNumber          *int                      `json:"floor_number,omitempty"`
	UnitNumber           string                    `json:"unit_number,omitempty"`
	FacilitiesOfInterest []string                  `json:"facilities_of_interest,omitempty"`
	TimePreferences      []building.TimePreference `json:"time_preferences,omitempty"`
}

// LoginRequest represents the request body for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	Token string         `json:"token"`
	User  *building.User `json:"user"`
}

// UserHandlers holds dependencies for user HTTP handlers.
type UserHandlers struct {
	users building.UserRepository
	jwt   *auth.JWTService
}

// NewUserHandlers creates a new UserHandlers instance.
func NewUserHandlers(users building.UserRepository, jwt *auth.JWTService) *UserHandlers {
	return &UserHandlers{users: users, jwt: jwt}
}

// HandleUsers dispatches /users by method.
func (h *UserHandlers) HandleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.CreateUser(w, r)
	case http.MethodGet:
		h.ListUsers(w, r)
	default:
		WriteError(w, r.Context(), http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	}
}

// CreateUser handles POST /users - registers a new user.
func (h *UserHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	email, displayName, msg := validateCreateUser(req)
	if msg != "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to process password")
		return
	}

	user := &building.User{
		ID:                   "usr-" + uuid.New().String(),
		Email:                email,
		DisplayName:          displayName,
		Role:                 building.Role(req.Role),
		BuildingID:           req.BuildingID,
		FloorNumber:          req.FloorNumber,
		UnitNumber:           req.UnitNumber,
		FacilitiesOfInterest: req.FacilitiesOfInterest,
		TimePreferences:      req.TimePreferences,
		PasswordHash:         hash,
		CreatedAt:            time.Now().UTC(),
	}

	if err := h.users.Insert(ctx, user); err != nil {
		if errors.Is(err, building.ErrDuplicateEmail) {
			WriteError(w, ctx, http.StatusConflict, ErrCodeDuplicateEmail, "Email is already registered")
			return
		}
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create user")
		return
	}

	WriteJSON(w, ctx, http.StatusCreated, user)
}

// ListUsers handles GET /users?building_id= - staff-only listing.
func (h *UserHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	buildingID := r.URL.Query().Get("building_id")
	if buildingID == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "building_id query parameter is required")
		return
	}

	users, err := h.users.ListByBuilding(ctx, buildingID)
	if err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list users")
		return
	}
	WriteJSON(w, ctx, http.StatusOK, map[string]any{"users": users})
}

// Login handles POST /auth/login - exchanges credentials for a token.
func (h *UserHandlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	user, err := h.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Same response for unknown email and wrong password.
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Invalid email or password")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Invalid email or password")
		return
	}

	token, err := h.jwt.GenerateToken(user)
	if err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to issue token")
		return
	}

	WriteJSON(w, ctx, http.StatusOK, LoginResponse{Token: token, User: user})
}

// validateCreateUser returns the normalized email and display name, or a
// validation message.
func validateCreateUser(req CreateUserRequest) (email, name, msg string) {
	email, err := validate.Email(req.Email)
	if err != nil {
		return "", "", "a valid email is required"
	}
	name, err = validate.DisplayName(req.DisplayName)
	if err != nil {
		return "", "", "display name must be between 1 and 80 characters"
	}
	if !building.Role(req.Role).Valid() {
		return "", "", "role must be resident or staff"
	}
	if req.BuildingID == "" {
		return "", "", "building_id is required"
	}
	for _, tp := range req.TimePreferences {
		if tp.StartHour < 0 || tp.StartHour > 23 || tp.EndHour < 0 || tp.EndHour > 24 || tp.StartHour >= tp.EndHour {
			return "", "", "time preferences must use hours 0-24 with start before end"
		}
	}
	return email, name, ""
}
