package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/Ensemble/internal/domain"
	"github.com/shaiso/Ensemble/internal/graph"
)

// ListFlows возвращает список всех flows.
// GET /api/v1/flows
func (h *Handler) ListFlows(w http.ResponseWriter, r *http.Request) {
	flows, err := h.flows.List(r.Context())
	if HandleStoreError(w, h.logger, err, "") {
		return
	}

	List(w, flows, len(flows))
}

// CreateFlow создаёт новый flow.
// Граф валидируется против существующих агентов, все нарушения
// возвращаются разом.
//
// POST /api/v1/flows
func (h *Handler) CreateFlow(w http.ResponseWriter, r *http.Request) {
	var req CreateFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	flow := req.ToDomain()
	if !h.checkFlow(w, r, flow) {
		return
	}

	if err := h.flows.Create(r.Context(), flow); err != nil {
		HandleStoreError(w, h.logger, err, "")
		return
	}

	Created(w, flow)
}

// GetFlow возвращает flow по ID.
// GET /api/v1/flows/{id}
func (h *Handler) GetFlow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid flow id")
		return
	}

	flow, err := h.flows.Get(r.Context(), id)
	if HandleStoreError(w, h.logger, err, "flow not found") {
		return
	}

	Success(w, flow)
}

// UpdateFlow частично обновляет flow. Результат применения patch
// проходит ту же валидацию графа, что и создание.
//
// PUT /api/v1/flows/{id}
func (h *Handler) UpdateFlow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid flow id")
		return
	}

	var req UpdateFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	current, err := h.flows.Get(r.Context(), id)
	if HandleStoreError(w, h.logger, err, "flow not found") {
		return
	}

	patch := req.ToPatch()
	candidate := *current
	patch.Apply(&candidate)
	if !h.checkFlow(w, r, &candidate) {
		return
	}

	flow, err := h.flows.Update(r.Context(), id, patch)
	if HandleStoreError(w, h.logger, err, "flow not found") {
		return
	}

	Success(w, flow)
}

// DeleteFlow удаляет flow.
// DELETE /api/v1/flows/{id}
func (h *Handler) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid flow id")
		return
	}

	if err := h.flows.Delete(r.Context(), id); err != nil {
		HandleStoreError(w, h.logger, err, "flow not found")
		return
	}

	NoContent(w)
}

// checkFlow валидирует поля flow и структуру его графа.
// Пишет ответ и возвращает false при любом нарушении.
func (h *Handler) checkFlow(w http.ResponseWriter, r *http.Request, flow *domain.Flow) bool {
	if errs := flow.Validate(); len(errs) > 0 {
		ValidationFailed(w, ErrCodeValidationFailed, "flow validation failed", errs)
		return false
	}

	known, err := h.knownAgentIDs(r)
	if err != nil {
		HandleStoreError(w, h.logger, err, "")
		return false
	}

	if err := graph.ValidateForCommit(flow.Graph, known); err != nil {
		HandleDomainError(w, h.logger, err)
		return false
	}
	return true
}

// knownAgentIDs собирает множество ID существующих агентов.
func (h *Handler) knownAgentIDs(r *http.Request) (map[string]bool, error) {
	agents, err := h.agents.List(r.Context())
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(agents))
	for _, a := range agents {
		known[a.ID.String()] = true
	}
	return known, nil
}
