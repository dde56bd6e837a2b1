package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/Ensemble/internal/domain"
	"github.com/shaiso/Ensemble/internal/graph"
	"github.com/shaiso/Ensemble/internal/store"
)

// Request — запрос на запуск flow.
type Request struct {
	// FlowID — ID запускаемого flow.
	FlowID uuid.UUID

	// Engine — имя движка из реестра.
	Engine string

	// Inputs — входные параметры запуска, передаются движку как есть.
	Inputs map[string]any
}

// Dispatcher направляет запрос выполнения в движок.
//
// Порядок обработки фиксирован: flow → агенты узлов → движок → запуск.
// Любой отказ терминален для запроса, частичных результатов нет.
// Dispatcher ничего не пишет в store.
type Dispatcher struct {
	flows    store.Flows
	agents   store.Agents
	registry *Registry
	log      *slog.Logger
}

// NewDispatcher создаёт диспетчер.
func NewDispatcher(flows store.Flows, agents store.Agents, registry *Registry, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		flows:    flows,
		agents:   agents,
		registry: registry,
		log:      log,
	}
}

// Run выполняет запрос оркестрации.
//
// Возможные отказы:
//   - store.ErrNotFound — flow не существует;
//   - *graph.ValidationError — граф ссылается на удалённых агентов;
//   - ErrUnsupportedEngine — движок не зарегистрирован;
//   - ErrEngineFailed — движок завершился с ошибкой (текст сохраняется).
func (d *Dispatcher) Run(ctx context.Context, req Request) (*Result, error) {
	flow, err := d.flows.Get(ctx, req.FlowID)
	if err != nil {
		return nil, fmt.Errorf("resolve flow: %w", err)
	}

	agents, err := d.resolveAgents(ctx, flow)
	if err != nil {
		return nil, err
	}

	engine, err := d.registry.Get(req.Engine)
	if err != nil {
		return nil, err
	}

	d.log.Info("dispatching flow run",
		slog.String("flow_id", flow.ID.String()),
		slog.String("engine", engine.Name()),
		slog.Int("nodes", len(flow.Graph.Nodes)),
	)

	output, err := engine.Run(ctx, Job{
		Flow:   *flow,
		Agents: agents,
		Inputs: req.Inputs,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		d.log.Error("engine run failed",
			slog.String("flow_id", flow.ID.String()),
			slog.String("engine", engine.Name()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %s", ErrEngineFailed, err)
	}

	return &Result{
		FlowID: flow.ID,
		Engine: engine.Name(),
		Output: *output,
	}, nil
}

// resolveAgents загружает агентов узлов графа.
//
// Граф валидировался при сохранении flow, но агенты могли быть удалены
// после: ссылки перепроверяются на каждом запуске, все осиротевшие
// узлы собираются в один *graph.ValidationError.
func (d *Dispatcher) resolveAgents(ctx context.Context, flow *domain.Flow) ([]domain.Agent, error) {
	if flow.Graph == nil || len(flow.Graph.Nodes) == 0 {
		return nil, &graph.ValidationError{Violations: []graph.Violation{{
			Message: "graph must contain at least one node",
			Err:     graph.ErrEmptyNodes,
		}}}
	}

	var (
		agents     []domain.Agent
		violations []graph.Violation
	)
	for _, node := range flow.Graph.Nodes {
		id, err := uuid.Parse(node.ID)
		if err == nil {
			var agent *domain.Agent
			agent, err = d.agents.Get(ctx, id)
			if err == nil {
				agents = append(agents, *agent)
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("resolve agent %s: %w", node.ID, err)
			}
		}
		violations = append(violations, graph.Violation{
			Message: fmt.Sprintf("node references unknown agent: %s", node.ID),
			Err:     graph.ErrUnknownAgent,
		})
	}
	if len(violations) > 0 {
		return nil, &graph.ValidationError{Violations: violations}
	}
	return agents, nil
}
