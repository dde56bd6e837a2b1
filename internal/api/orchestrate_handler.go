package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Ensemble/internal/orchestration"
	"github.com/shaiso/Ensemble/internal/telemetry"
)

// RunOrchestration запускает flow через выбранный движок.
// POST /api/v1/orchestrate/run
func (h *Handler) RunOrchestration(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	flowID, err := uuid.Parse(req.FlowID)
	if err != nil {
		BadRequest(w, "invalid flow id")
		return
	}
	if req.Engine == "" {
		BadRequest(w, "engine is required")
		return
	}

	start := time.Now()
	result, err := h.dispatcher.Run(r.Context(), orchestration.Request{
		FlowID: flowID,
		Engine: req.Engine,
		Inputs: req.Inputs,
	})
	if err != nil {
		telemetry.RunsTotal.WithLabelValues(req.Engine, telemetry.OutcomeFailed).Inc()
		HandleDomainError(w, h.logger, err)
		return
	}

	telemetry.RunsTotal.WithLabelValues(result.Engine, telemetry.OutcomeOK).Inc()
	telemetry.RunDuration.WithLabelValues(result.Engine).Observe(time.Since(start).Seconds())

	if err := h.publisher.PublishRunCompleted(r.Context(), result.FlowID, result.Engine, string(result.Kind)); err != nil {
		h.logger.Warn("publish run.completed failed", "error", err)
	}

	Success(w, result)
}
