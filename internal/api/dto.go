package api

import (
	"github.com/shaiso/Ensemble/internal/domain"
	"github.com/shaiso/Ensemble/internal/store"
)

// CreateAgentRequest — запрос на создание агента.
type CreateAgentRequest struct {
	Name            string         `json:"name"`
	Role            string         `json:"role"`
	Goal            string         `json:"goal"`
	Backstory       string         `json:"backstory"`
	Tools           []string       `json:"tools,omitempty"`
	InputArtifacts  map[string]any `json:"input_artifacts,omitempty"`
	OutputArtifacts map[string]any `json:"output_artifacts,omitempty"`
}

// ToDomain преобразует запрос в доменную модель.
func (r *CreateAgentRequest) ToDomain() *domain.Agent {
	return &domain.Agent{
		Name:            r.Name,
		Role:            r.Role,
		Goal:            r.Goal,
		Backstory:       r.Backstory,
		Tools:           r.Tools,
		InputArtifacts:  r.InputArtifacts,
		OutputArtifacts: r.OutputArtifacts,
	}
}

// UpdateAgentRequest — частичное обновление агента.
// nil-поле означает "не менять".
type UpdateAgentRequest struct {
	Name            *string         `json:"name"`
	Role            *string         `json:"role"`
	Goal            *string         `json:"goal"`
	Backstory       *string         `json:"backstory"`
	Tools           *[]string       `json:"tools"`
	InputArtifacts  *map[string]any `json:"input_artifacts"`
	OutputArtifacts *map[string]any `json:"output_artifacts"`
}

// ToPatch преобразует запрос в patch для store.
func (r *UpdateAgentRequest) ToPatch() store.AgentPatch {
	return store.AgentPatch{
		Name:            r.Name,
		Role:            r.Role,
		Goal:            r.Goal,
		Backstory:       r.Backstory,
		Tools:           r.Tools,
		InputArtifacts:  r.InputArtifacts,
		OutputArtifacts: r.OutputArtifacts,
	}
}

// CreateFlowRequest — запрос на создание flow.
type CreateFlowRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Graph       *domain.Graph `json:"graph_json,omitempty"`
}

// ToDomain преобразует запрос в доменную модель.
func (r *CreateFlowRequest) ToDomain() *domain.Flow {
	return &domain.Flow{
		Name:        r.Name,
		Description: r.Description,
		Graph:       r.Graph,
	}
}

// UpdateFlowRequest — частичное обновление flow.
type UpdateFlowRequest struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Graph       *domain.Graph `json:"graph_json"`
}

// ToPatch преобразует запрос в patch для store.
func (r *UpdateFlowRequest) ToPatch() store.FlowPatch {
	return store.FlowPatch{
		Name:        r.Name,
		Description: r.Description,
		Graph:       r.Graph,
	}
}

// CreateEvaluationRequest — запрос на создание оценки.
type CreateEvaluationRequest struct {
	FlowID   string  `json:"flow_id"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback,omitempty"`
}

// ConvertAgentRequest — запрос конвертации Markdown в агента.
type ConvertAgentRequest struct {
	Text string `json:"text"`
}

// RunRequest — запрос запуска оркестрации.
type RunRequest struct {
	FlowID string         `json:"flow_id"`
	Engine string         `json:"engine"`
	Inputs map[string]any `json:"inputs,omitempty"`
}
