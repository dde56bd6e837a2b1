package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/Ensemble/internal/domain"
)

// ListEvaluations возвращает список всех оценок.
// GET /api/v1/evaluations
func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	evaluations, err := h.evaluations.List(r.Context())
	if HandleStoreError(w, h.logger, err, "") {
		return
	}

	List(w, evaluations, len(evaluations))
}

// CreateEvaluation создаёт оценку для существующего flow.
// POST /api/v1/evaluations
func (h *Handler) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	var req CreateEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	flowID, err := uuid.Parse(req.FlowID)
	if err != nil {
		BadRequest(w, "invalid flow id")
		return
	}

	// Оценка всегда ссылается на существующий flow.
	if _, err := h.flows.Get(r.Context(), flowID); err != nil {
		HandleStoreError(w, h.logger, err, "flow not found")
		return
	}

	evaluation := &domain.Evaluation{
		FlowID:   flowID,
		Score:    req.Score,
		Feedback: req.Feedback,
	}
	if err := h.evaluations.Create(r.Context(), evaluation); err != nil {
		HandleStoreError(w, h.logger, err, "")
		return
	}

	Created(w, evaluation)
}
