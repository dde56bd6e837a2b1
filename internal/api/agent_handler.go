package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// ListAgents возвращает список всех агентов.
// GET /api/v1/agents
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.agents.List(r.Context())
	if HandleStoreError(w, h.logger, err, "") {
		return
	}

	List(w, agents, len(agents))
}

// CreateAgent создаёт нового агента.
// POST /api/v1/agents
func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	agent := req.ToDomain()
	if errs := agent.Validate(); len(errs) > 0 {
		ValidationFailed(w, ErrCodeValidationFailed, "agent validation failed", errs)
		return
	}

	if err := h.agents.Create(r.Context(), agent); err != nil {
		HandleStoreError(w, h.logger, err, "")
		return
	}

	Created(w, agent)
}

// GetAgent возвращает агента по ID.
// GET /api/v1/agents/{id}
func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid agent id")
		return
	}

	agent, err := h.agents.Get(r.Context(), id)
	if HandleStoreError(w, h.logger, err, "agent not found") {
		return
	}

	Success(w, agent)
}

// UpdateAgent частично обновляет агента.
// PUT /api/v1/agents/{id}
func (h *Handler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid agent id")
		return
	}

	var req UpdateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	// Patch валидируется на применённом результате до записи:
	// невалидное состояние не должно коммититься.
	current, err := h.agents.Get(r.Context(), id)
	if HandleStoreError(w, h.logger, err, "agent not found") {
		return
	}

	patch := req.ToPatch()
	candidate := *current
	patch.Apply(&candidate)
	if errs := candidate.Validate(); len(errs) > 0 {
		ValidationFailed(w, ErrCodeValidationFailed, "agent validation failed", errs)
		return
	}

	agent, err := h.agents.Update(r.Context(), id, patch)
	if HandleStoreError(w, h.logger, err, "agent not found") {
		return
	}

	Success(w, agent)
}

// DeleteAgent удаляет агента.
//
// Ссылки на агента из графов flows не каскадируются: осиротевший
// граф обнаружится при следующем запуске flow.
//
// DELETE /api/v1/agents/{id}
func (h *Handler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid agent id")
		return
	}

	if err := h.agents.Delete(r.Context(), id); err != nil {
		HandleStoreError(w, h.logger, err, "agent not found")
		return
	}

	NoContent(w)
}
