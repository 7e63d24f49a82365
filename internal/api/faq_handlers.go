package api

import (
	"net/http"

	"github.com/i20tominaga/resident-app/internal/faq"
)

// FAQHandlers holds dependencies for FAQ HTTP handlers.
type FAQHandlers struct {
	repo faq.Repository
}

// NewFAQHandlers creates a new FAQHandlers instance.
func NewFAQHandlers(repo faq.Repository) *FAQHandlers {
	return &FAQHandlers{repo: repo}
}

// ListFAQs handles GET /faqs?building_id= in display order.
func (h *FAQHandlers) ListFAQs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	buildingID := r.URL.Query().Get("building_id")
	if buildingID == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "building_id query parameter is required")
		return
	}

	faqs, err := h.repo.ListByBuilding(ctx, buildingID)
	if err != nil {
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list FAQs")
		return
	}
	WriteJSON(w, ctx, http.StatusOK, map[string]any{"faqs": faqs})
}
