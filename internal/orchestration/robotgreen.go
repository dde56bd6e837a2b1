package orchestration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RobotGreenEngine — адаптер движка robotgreen.
//
// В отличие от crewai, движок не возвращает план: его ответ — форма
// {result, duration_ms} с итоговыми выходами по узлам.
type RobotGreenEngine struct {
	now func() time.Time
}

// NewRobotGreenEngine создаёт адаптер robotgreen.
func NewRobotGreenEngine() *RobotGreenEngine {
	return &RobotGreenEngine{now: time.Now}
}

// Name возвращает имя движка.
func (e *RobotGreenEngine) Name() string { return "robotgreen" }

// Run выполняет граф и возвращает выходы узлов с замером длительности.
func (e *RobotGreenEngine) Run(ctx context.Context, job Job) (*Output, error) {
	started := e.now()

	outputs := make(map[string]any, len(job.Flow.Graph.Nodes))
	for _, node := range job.Flow.Graph.Nodes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		outputs[node.ID] = "rg-output-" + node.ID
	}

	return &Output{
		Kind: KindOutcome,
		Result: map[string]any{
			"status":  "completed",
			"outputs": outputs,
		},
		DurationMS: e.now().Sub(started).Milliseconds(),
		RequestID:  uuid.NewString(),
	}, nil
}
