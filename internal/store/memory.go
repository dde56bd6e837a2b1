package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Ensemble/internal/domain"
)

// MemoryAgents — in-memory хранилище агентов.
//
// Порядок List — порядок вставки. Все операции защищены мьютексом,
// так что записи по одному id сериализованы.
type MemoryAgents struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*domain.Agent
	order []uuid.UUID
}

// NewMemoryAgents создаёт пустое хранилище агентов.
func NewMemoryAgents() *MemoryAgents {
	return &MemoryAgents{items: make(map[uuid.UUID]*domain.Agent)}
}

// Create сохраняет агента, назначая ID и временные метки.
func (s *MemoryAgents) Create(_ context.Context, agent *domain.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	agent.ID = uuid.New()
	agent.CreatedAt = now
	agent.UpdatedAt = now

	cp := *agent
	s.items[agent.ID] = &cp
	s.order = append(s.order, agent.ID)
	return nil
}

// CreateBatch сохраняет пачку агентов под одной блокировкой.
func (s *MemoryAgents) CreateBatch(_ context.Context, agents []*domain.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, agent := range agents {
		agent.ID = uuid.New()
		agent.CreatedAt = now
		agent.UpdatedAt = now

		cp := *agent
		s.items[agent.ID] = &cp
		s.order = append(s.order, agent.ID)
	}
	return nil
}

// Get возвращает агента по ID.
func (s *MemoryAgents) Get(_ context.Context, id uuid.UUID) (*domain.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agent, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *agent
	return &cp, nil
}

// List возвращает всех агентов в порядке создания.
func (s *MemoryAgents) List(_ context.Context) ([]domain.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Agent, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, *s.items[id])
	}
	return result, nil
}

// Update применяет частичное обновление.
func (s *MemoryAgents) Update(_ context.Context, id uuid.UUID, patch AgentPatch) (*domain.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}

	patch.Apply(agent)
	agent.UpdatedAt = time.Now().UTC()

	cp := *agent
	return &cp, nil
}

// Delete удаляет агента.
func (s *MemoryAgents) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// MemoryFlows — in-memory хранилище flows.
type MemoryFlows struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*domain.Flow
	order []uuid.UUID
}

// NewMemoryFlows создаёт пустое хранилище flows.
func NewMemoryFlows() *MemoryFlows {
	return &MemoryFlows{items: make(map[uuid.UUID]*domain.Flow)}
}

// Create сохраняет flow, назначая ID и временные метки.
func (s *MemoryFlows) Create(_ context.Context, flow *domain.Flow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	flow.ID = uuid.New()
	flow.CreatedAt = now
	flow.UpdatedAt = now

	cp := *flow
	s.items[flow.ID] = &cp
	s.order = append(s.order, flow.ID)
	return nil
}

// CreateBatch сохраняет пачку flows под одной блокировкой.
func (s *MemoryFlows) CreateBatch(_ context.Context, flows []*domain.Flow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, flow := range flows {
		flow.ID = uuid.New()
		flow.CreatedAt = now
		flow.UpdatedAt = now

		cp := *flow
		s.items[flow.ID] = &cp
		s.order = append(s.order, flow.ID)
	}
	return nil
}

// Get возвращает flow по ID.
func (s *MemoryFlows) Get(_ context.Context, id uuid.UUID) (*domain.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flow, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *flow
	return &cp, nil
}

// List возвращает все flows в порядке создания.
func (s *MemoryFlows) List(_ context.Context) ([]domain.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Flow, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, *s.items[id])
	}
	return result, nil
}

// Update применяет частичное обновление.
func (s *MemoryFlows) Update(_ context.Context, id uuid.UUID, patch FlowPatch) (*domain.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}

	patch.Apply(flow)
	flow.UpdatedAt = time.Now().UTC()

	cp := *flow
	return &cp, nil
}

// Delete удаляет flow.
func (s *MemoryFlows) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// MemoryEvaluations — in-memory хранилище оценок.
type MemoryEvaluations struct {
	mu    sync.RWMutex
	items []domain.Evaluation
}

// NewMemoryEvaluations создаёт пустое хранилище оценок.
func NewMemoryEvaluations() *MemoryEvaluations {
	return &MemoryEvaluations{}
}

// Create сохраняет оценку, назначая ID и created_at.
func (s *MemoryEvaluations) Create(_ context.Context, ev *domain.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.ID = uuid.New()
	ev.CreatedAt = time.Now().UTC()
	s.items = append(s.items, *ev)
	return nil
}

// List возвращает все оценки в порядке создания.
func (s *MemoryEvaluations) List(_ context.Context) ([]domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Evaluation, len(s.items))
	copy(result, s.items)
	return result, nil
}
