package orchestration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shaiso/Ensemble/internal/domain"
)

// Job — вход адаптера движка: разрешённый flow с агентами.
type Job struct {
	// Flow — выполняемый flow.
	Flow domain.Flow

	// Agents — агенты, на которых ссылаются узлы графа,
	// в порядке объявления узлов.
	Agents []domain.Agent

	// Inputs — входные параметры запуска.
	Inputs map[string]any
}

// AgentByID возвращает агента job по строковому ID узла.
func (j *Job) AgentByID(id string) *domain.Agent {
	for i := range j.Agents {
		if j.Agents[i].ID.String() == id {
			return &j.Agents[i]
		}
	}
	return nil
}

// Engine — внешний движок оркестрации за единым интерфейсом.
//
// Run может блокироваться на неограниченное время: адаптер обязан
// уважать отмену ctx. Возвращает одну из двух форм Output;
// диспетчер никогда не синтезирует одну форму из другой.
type Engine interface {
	// Name — имя движка в wire-контракте.
	Name() string

	// Run выполняет flow и возвращает сырой результат движка.
	Run(ctx context.Context, job Job) (*Output, error)
}

// Registry — реестр движков.
// Потокобезопасен.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

// DefaultRegistry создаёт реестр с фиксированным множеством движков.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewCrewAIEngine())
	r.Register(NewRobotGreenEngine())
	r.Register(NewFakeEngine())
	return r
}

// Register регистрирует движок. Существующий с тем же именем
// перезаписывается.
func (r *Registry) Register(e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[e.Name()] = e
}

// Get возвращает движок по имени (без учёта регистра).
// Возвращает ErrUnsupportedEngine, если движок не зарегистрирован.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engine, exists := r.engines[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEngine, name)
	}
	return engine, nil
}

// Names возвращает отсортированный список имён движков.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
