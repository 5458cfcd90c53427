package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamewatch/notifier/internal/repository"
)

// NotificationHandler exposes the read-only audit view on stored
// notification records. The user-facing notification API belongs to the
// surrounding CRUD service; this endpoint exists for operators chasing a
// "why did (or didn't) this mail go out" question.
type NotificationHandler struct {
	repo repository.NotificationRepository
}

func NewNotificationHandler(repo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

// ListBySource handles GET /api/v1/sources/{id}/notifications
//
// @Summary  List stored notifications for one source, newest first
// @Tags     notifications
// @Produce  json
// @Param    id   path      string  true  "InfoSource UUID"
// @Success  200  {object}  map[string]any
// @Router   /api/v1/sources/{id}/notifications [get]
func (h *NotificationHandler) ListBySource(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	notifications, err := h.repo.ListBySource(r.Context(), sourceID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  notifications,
		"total": len(notifications),
	})
}
