package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/i20tominaga/resident-app/internal/middleware"
	"github.com/i20tominaga/resident-app/internal/notification"
)

// NotificationHandlers holds dependencies for notification HTTP handlers.
type NotificationHandlers struct {
	repo notification.Repository
}

// NewNotificationHandlers creates a new NotificationHandlers instance.
func NewNotificationHandlers(repo notification.Repository) *NotificationHandlers {
	return &NotificationHandlers{repo: repo}
}

// ListNotifications handles GET /notifications for the authenticated user,
// newest first.
func (h *NotificationHandlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
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

	notifications, err := h.repo.ListByUser(ctx, userID)
	if err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list notifications")
		return
	}
	WriteJSON(w, ctx, http.StatusOK, map[string]any{"notifications": notifications})
}

// HandleNotificationByID dispatches /notifications/{id}/read.
func (h *NotificationHandlers) HandleNotificationByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/notifications/"), "/")
	if len(parts) == 2 && parts[1] == "read" && r.Method == http.MethodPost {
		h.MarkRead(w, r, parts[0])
		return
	}
	WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Unknown notification resource")
}

// MarkRead handles POST /notifications/{id}/read. Only the owner can mark a
// notification read; anyone else sees not found.
func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	if err := h.repo.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Notification not found")
			return
		}
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to mark notification read")
		return
	}
	WriteJSON(w, ctx, http.StatusOK, map[string]any{"id": id, "is_read": true})
}
