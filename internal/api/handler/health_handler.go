package handler

import "net/http"

// HealthHandler answers liveness probes. There is no separate readiness
// state: startup fails loudly if the database or migrations are unavailable,
// so a serving process is a ready process.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// Health handles GET /health
//
// @Summary  Liveness probe
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "notifier",
	})
}
