package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CrewAIEngine — адаптер движка crewai.
//
// Движок возвращает форму {plan, logs}; строки логов — сериализованные
// JSON-записи {ts, node, msg}, пригодные для ParseLogLine.
type CrewAIEngine struct {
	now func() time.Time
}

// NewCrewAIEngine создаёт адаптер crewai.
func NewCrewAIEngine() *CrewAIEngine {
	return &CrewAIEngine{now: time.Now}
}

// Name возвращает имя движка.
func (e *CrewAIEngine) Name() string { return "crewai" }

// Run строит план экипажа: каждый узел графа становится задачей,
// роль и цель берутся из агента узла.
func (e *CrewAIEngine) Run(ctx context.Context, job Job) (*Output, error) {
	var (
		tasks []map[string]any
		logs  []string
	)
	logs = append(logs, e.logLine("", fmt.Sprintf("crew assembled for flow %q", job.Flow.Name)))

	for _, node := range job.Flow.Graph.Nodes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		task := map[string]any{"node": node.ID}
		if agent := job.AgentByID(node.ID); agent != nil {
			task["agent"] = agent.Name
			task["role"] = agent.Role
			task["goal"] = agent.Goal
			if len(agent.Tools) > 0 {
				task["tools"] = agent.Tools
			}
		}
		tasks = append(tasks, task)
		logs = append(logs, e.logLine(node.ID, "task scheduled"))
	}

	logs = append(logs, e.logLine("", fmt.Sprintf("plan ready: %d task(s)", len(tasks))))

	return &Output{
		Kind: KindPlan,
		Plan: map[string]any{
			"process": "sequential",
			"tasks":   tasks,
		},
		Logs:      logs,
		RequestID: uuid.NewString(),
	}, nil
}

// logLine сериализует структурированную запись лога.
func (e *CrewAIEngine) logLine(node, msg string) string {
	record := map[string]string{
		"ts":  e.now().UTC().Format(time.RFC3339),
		"msg": msg,
	}
	if node != "" {
		record["node"] = node
	}
	data, err := json.Marshal(record)
	if err != nil {
		return msg
	}
	return string(data)
}
