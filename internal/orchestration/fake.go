package orchestration

import (
	"context"
	"fmt"
)

// FakeEngine — детерминированный движок без внешних зависимостей.
// Используется в тестах и демо: обходит узлы в порядке объявления
// и синтезирует предсказуемый план.
type FakeEngine struct{}

// NewFakeEngine создаёт fake-движок.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{}
}

// Name возвращает имя движка.
func (e *FakeEngine) Name() string { return "fake" }

// Run синтезирует план выполнения. Inputs["simulate_error"] заставляет
// движок завершиться ошибкой — для проверки пути ErrEngineFailed.
func (e *FakeEngine) Run(ctx context.Context, job Job) (*Output, error) {
	if _, ok := job.Inputs["simulate_error"]; ok {
		return nil, fmt.Errorf("simulated failure for flow %s", job.Flow.ID)
	}

	prompt, _ := job.Inputs["prompt"].(string)

	var (
		executed  []string
		artifacts = make(map[string]any)
		logs      []string
	)
	logs = append(logs, fmt.Sprintf("fake: starting flow %q with %d node(s)", job.Flow.Name, len(job.Flow.Graph.Nodes)))

	for _, node := range job.Flow.Graph.Nodes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		output := "fake-" + node.ID
		if prompt != "" {
			output += "-" + snippet(prompt, 24)
		}
		executed = append(executed, node.ID)
		artifacts[node.ID] = map[string]any{
			"status": "done",
			"output": output,
		}
		if agent := job.AgentByID(node.ID); agent != nil {
			logs = append(logs, fmt.Sprintf("fake: node %s (%s) done", node.ID, agent.Name))
		} else {
			logs = append(logs, fmt.Sprintf("fake: node %s done", node.ID))
		}
	}

	return &Output{
		Kind: KindPlan,
		Plan: map[string]any{
			"executed_nodes": executed,
			"artifacts":      artifacts,
			"routing":        "sequential",
		},
		Logs: logs,
	}, nil
}

// snippet обрезает строку до n рун.
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
