package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shaiso/Ensemble/internal/domain"
)

// Agents — хранилище агентов.
type Agents interface {
	// Create сохраняет нового агента, назначая ID и временные метки.
	Create(ctx context.Context, agent *domain.Agent) error

	// CreateBatch сохраняет пачку агентов атомарно: либо все,
	// либо ни одного.
	CreateBatch(ctx context.Context, agents []*domain.Agent) error

	// Get возвращает агента по ID. ErrNotFound, если агента нет.
	Get(ctx context.Context, id uuid.UUID) (*domain.Agent, error)

	// List возвращает всех агентов в порядке создания.
	List(ctx context.Context) ([]domain.Agent, error)

	// Update применяет частичное обновление и освежает updated_at.
	// created_at не меняется никогда.
	Update(ctx context.Context, id uuid.UUID, patch AgentPatch) (*domain.Agent, error)

	// Delete удаляет агента. ErrNotFound, если агента нет.
	// Ссылки на агента из графов flows не проверяются и не каскадируются:
	// осиротевшие ссылки обнаружит диспетчер при запуске.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Flows — хранилище flows.
type Flows interface {
	Create(ctx context.Context, flow *domain.Flow) error
	CreateBatch(ctx context.Context, flows []*domain.Flow) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Flow, error)
	List(ctx context.Context) ([]domain.Flow, error)
	Update(ctx context.Context, id uuid.UUID, patch FlowPatch) (*domain.Flow, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Evaluations — хранилище оценок. Append-only: без Update и Delete.
type Evaluations interface {
	Create(ctx context.Context, ev *domain.Evaluation) error
	List(ctx context.Context) ([]domain.Evaluation, error)
}

// AgentPatch — частичное обновление агента.
// nil-поле означает "не менять".
type AgentPatch struct {
	Name            *string
	Role            *string
	Goal            *string
	Backstory       *string
	Tools           *[]string
	InputArtifacts  *map[string]any
	OutputArtifacts *map[string]any
}

// FlowPatch — частичное обновление flow.
type FlowPatch struct {
	Name        *string
	Description *string
	Graph       *domain.Graph
}

// Apply применяет patch к агенту.
func (p AgentPatch) Apply(a *domain.Agent) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Role != nil {
		a.Role = *p.Role
	}
	if p.Goal != nil {
		a.Goal = *p.Goal
	}
	if p.Backstory != nil {
		a.Backstory = *p.Backstory
	}
	if p.Tools != nil {
		a.Tools = *p.Tools
	}
	if p.InputArtifacts != nil {
		a.InputArtifacts = *p.InputArtifacts
	}
	if p.OutputArtifacts != nil {
		a.OutputArtifacts = *p.OutputArtifacts
	}
}

// Apply применяет patch к flow.
func (p FlowPatch) Apply(f *domain.Flow) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Graph != nil {
		f.Graph = p.Graph
	}
}
