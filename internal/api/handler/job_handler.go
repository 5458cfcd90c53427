package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/gamewatch/notifier/internal/api/middleware"
	"github.com/gamewatch/notifier/internal/domain"
	"github.com/gamewatch/notifier/internal/service"
)

// JobHandler is the ingest side of the queue: the upstream sync process
// posts a snapshot pair here when a source's data changed.
type JobHandler struct {
	svc    *service.IngestService
	logger *zap.Logger
}

func NewJobHandler(svc *service.IngestService, logger *zap.Logger) *JobHandler {
	return &JobHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/jobs
//
// @Summary  Enqueue a create-notifications job
// @Tags     jobs
// @Accept   json
// @Produce  json
// @Param    body  body      domain.CreateNotificationsRequest  true  "Snapshot pair"
// @Success  202   {object}  domain.Job
// @Failure  422   {object}  map[string]string
// @Router   /api/v1/jobs [post]
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNotificationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	j, err := h.svc.Enqueue(r.Context(), req)
	if err != nil {
		h.logger.Warn("job ingest failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("source_id", req.SourceID),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, j)
}
