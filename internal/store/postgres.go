package store

// Реализация хранилища на PostgreSQL.
//
// Схема:
//
//	CREATE TABLE agents (
//	    id               UUID PRIMARY KEY,
//	    name             TEXT NOT NULL,
//	    role             TEXT NOT NULL,
//	    goal             TEXT NOT NULL,
//	    backstory        TEXT NOT NULL,
//	    tools            JSONB,
//	    input_artifacts  JSONB,
//	    output_artifacts JSONB,
//	    created_at       TIMESTAMPTZ NOT NULL,
//	    updated_at       TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE flows (
//	    id          UUID PRIMARY KEY,
//	    name        TEXT NOT NULL,
//	    description TEXT NOT NULL DEFAULT '',
//	    graph_json  JSONB,
//	    created_at  TIMESTAMPTZ NOT NULL,
//	    updated_at  TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE evaluations (
//	    id         UUID PRIMARY KEY,
//	    flow_id    UUID NOT NULL,
//	    score      DOUBLE PRECISION NOT NULL,
//	    feedback   TEXT NOT NULL DEFAULT '',
//	    created_at TIMESTAMPTZ NOT NULL
//	);
//
// Update выполняется в транзакции с SELECT ... FOR UPDATE, чтобы
// конкурентные частичные обновления одной записи не теряли изменения.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Ensemble/internal/domain"
)

// pgErr преобразует ошибку pgx в ошибку хранилища.
func pgErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// PgAgents — хранилище агентов на PostgreSQL.
type PgAgents struct {
	pool *pgxpool.Pool
}

// NewPgAgents создаёт PgAgents.
func NewPgAgents(pool *pgxpool.Pool) *PgAgents {
	return &PgAgents{pool: pool}
}

// Create сохраняет агента, назначая ID и временные метки.
func (s *PgAgents) Create(ctx context.Context, agent *domain.Agent) error {
	now := time.Now().UTC()
	agent.ID = uuid.New()
	agent.CreatedAt = now
	agent.UpdatedAt = now

	tools, artifacts, err := marshalAgentJSON(agent)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO agents (id, name, role, goal, backstory, tools, input_artifacts, output_artifacts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.pool.Exec(ctx, query,
		agent.ID, agent.Name, agent.Role, agent.Goal, agent.Backstory,
		tools, artifacts[0], artifacts[1],
		agent.CreatedAt, agent.UpdatedAt,
	)
	if err != nil {
		return pgErr("insert agent", err)
	}
	return nil
}

// CreateBatch сохраняет пачку агентов в одной транзакции:
// либо все, либо ни одного.
func (s *PgAgents) CreateBatch(ctx context.Context, agents []*domain.Agent) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pgErr("begin", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	query := `
		INSERT INTO agents (id, name, role, goal, backstory, tools, input_artifacts, output_artifacts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, agent := range agents {
		agent.ID = uuid.New()
		agent.CreatedAt = now
		agent.UpdatedAt = now

		tools, artifacts, err := marshalAgentJSON(agent)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, query,
			agent.ID, agent.Name, agent.Role, agent.Goal, agent.Backstory,
			tools, artifacts[0], artifacts[1],
			agent.CreatedAt, agent.UpdatedAt,
		)
		if err != nil {
			return pgErr("insert agent", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return pgErr("commit", err)
	}
	return nil
}

// Get возвращает агента по ID.
func (s *PgAgents) Get(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	query := `
		SELECT id, name, role, goal, backstory, tools, input_artifacts, output_artifacts, created_at, updated_at
		FROM agents
		WHERE id = $1
	`
	return scanAgent(s.pool.QueryRow(ctx, query, id))
}

// List возвращает всех агентов в порядке создания.
func (s *PgAgents) List(ctx context.Context) ([]domain.Agent, error) {
	query := `
		SELECT id, name, role, goal, backstory, tools, input_artifacts, output_artifacts, created_at, updated_at
		FROM agents
		ORDER BY created_at, id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, pgErr("list agents", err)
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *agent)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr("list agents", err)
	}
	return agents, nil
}

// Update применяет частичное обновление внутри транзакции.
func (s *PgAgents) Update(ctx context.Context, id uuid.UUID, patch AgentPatch) (*domain.Agent, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, pgErr("begin", err)
	}
	defer tx.Rollback(ctx)

	query := `
		SELECT id, name, role, goal, backstory, tools, input_artifacts, output_artifacts, created_at, updated_at
		FROM agents
		WHERE id = $1
		FOR UPDATE
	`
	agent, err := scanAgent(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	patch.Apply(agent)
	agent.UpdatedAt = time.Now().UTC()

	tools, artifacts, err := marshalAgentJSON(agent)
	if err != nil {
		return nil, err
	}

	update := `
		UPDATE agents
		SET name = $2, role = $3, goal = $4, backstory = $5,
		    tools = $6, input_artifacts = $7, output_artifacts = $8,
		    updated_at = $9
		WHERE id = $1
	`
	_, err = tx.Exec(ctx, update,
		agent.ID, agent.Name, agent.Role, agent.Goal, agent.Backstory,
		tools, artifacts[0], artifacts[1],
		agent.UpdatedAt,
	)
	if err != nil {
		return nil, pgErr("update agent", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, pgErr("commit", err)
	}
	return agent, nil
}

// Delete удаляет агента.
func (s *PgAgents) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return pgErr("delete agent", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// marshalAgentJSON сериализует JSONB-поля агента.
// nil остаётся NULL в базе, а не пустым объектом.
func marshalAgentJSON(agent *domain.Agent) ([]byte, [2][]byte, error) {
	var tools []byte
	var artifacts [2][]byte
	var err error

	if agent.Tools != nil {
		tools, err = json.Marshal(agent.Tools)
		if err != nil {
			return nil, artifacts, fmt.Errorf("marshal tools: %w", err)
		}
	}
	if agent.InputArtifacts != nil {
		artifacts[0], err = json.Marshal(agent.InputArtifacts)
		if err != nil {
			return nil, artifacts, fmt.Errorf("marshal input_artifacts: %w", err)
		}
	}
	if agent.OutputArtifacts != nil {
		artifacts[1], err = json.Marshal(agent.OutputArtifacts)
		if err != nil {
			return nil, artifacts, fmt.Errorf("marshal output_artifacts: %w", err)
		}
	}
	return tools, artifacts, nil
}

// scanAgent читает агента из строки результата.
func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var agent domain.Agent
	var tools, in, out []byte

	err := row.Scan(
		&agent.ID, &agent.Name, &agent.Role, &agent.Goal, &agent.Backstory,
		&tools, &in, &out,
		&agent.CreatedAt, &agent.UpdatedAt,
	)
	if err != nil {
		return nil, pgErr("scan agent", err)
	}

	if tools != nil {
		if err := json.Unmarshal(tools, &agent.Tools); err != nil {
			return nil, fmt.Errorf("unmarshal tools: %w", err)
		}
	}
	if in != nil {
		if err := json.Unmarshal(in, &agent.InputArtifacts); err != nil {
			return nil, fmt.Errorf("unmarshal input_artifacts: %w", err)
		}
	}
	if out != nil {
		if err := json.Unmarshal(out, &agent.OutputArtifacts); err != nil {
			return nil, fmt.Errorf("unmarshal output_artifacts: %w", err)
		}
	}
	return &agent, nil
}

// PgFlows — хранилище flows на PostgreSQL.
type PgFlows struct {
	pool *pgxpool.Pool
}

// NewPgFlows создаёт PgFlows.
func NewPgFlows(pool *pgxpool.Pool) *PgFlows {
	return &PgFlows{pool: pool}
}

// Create сохраняет flow, назначая ID и временные метки.
func (s *PgFlows) Create(ctx context.Context, flow *domain.Flow) error {
	now := time.Now().UTC()
	flow.ID = uuid.New()
	flow.CreatedAt = now
	flow.UpdatedAt = now

	graph, err := marshalGraph(flow.Graph)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO flows (id, name, description, graph_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.pool.Exec(ctx, query,
		flow.ID, flow.Name, flow.Description, graph,
		flow.CreatedAt, flow.UpdatedAt,
	)
	if err != nil {
		return pgErr("insert flow", err)
	}
	return nil
}

// CreateBatch сохраняет пачку flows в одной транзакции.
func (s *PgFlows) CreateBatch(ctx context.Context, flows []*domain.Flow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pgErr("begin", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	query := `
		INSERT INTO flows (id, name, description, graph_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, flow := range flows {
		flow.ID = uuid.New()
		flow.CreatedAt = now
		flow.UpdatedAt = now

		graph, err := marshalGraph(flow.Graph)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, query,
			flow.ID, flow.Name, flow.Description, graph,
			flow.CreatedAt, flow.UpdatedAt,
		)
		if err != nil {
			return pgErr("insert flow", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return pgErr("commit", err)
	}
	return nil
}

// Get возвращает flow по ID.
func (s *PgFlows) Get(ctx context.Context, id uuid.UUID) (*domain.Flow, error) {
	query := `
		SELECT id, name, description, graph_json, created_at, updated_at
		FROM flows
		WHERE id = $1
	`
	return scanFlow(s.pool.QueryRow(ctx, query, id))
}

// List возвращает все flows в порядке создания.
func (s *PgFlows) List(ctx context.Context) ([]domain.Flow, error) {
	query := `
		SELECT id, name, description, graph_json, created_at, updated_at
		FROM flows
		ORDER BY created_at, id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, pgErr("list flows", err)
	}
	defer rows.Close()

	var flows []domain.Flow
	for rows.Next() {
		flow, err := scanFlow(rows)
		if err != nil {
			return nil, err
		}
		flows = append(flows, *flow)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr("list flows", err)
	}
	return flows, nil
}

// Update применяет частичное обновление внутри транзакции.
func (s *PgFlows) Update(ctx context.Context, id uuid.UUID, patch FlowPatch) (*domain.Flow, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, pgErr("begin", err)
	}
	defer tx.Rollback(ctx)

	query := `
		SELECT id, name, description, graph_json, created_at, updated_at
		FROM flows
		WHERE id = $1
		FOR UPDATE
	`
	flow, err := scanFlow(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	patch.Apply(flow)
	flow.UpdatedAt = time.Now().UTC()

	graph, err := marshalGraph(flow.Graph)
	if err != nil {
		return nil, err
	}

	update := `
		UPDATE flows
		SET name = $2, description = $3, graph_json = $4, updated_at = $5
		WHERE id = $1
	`
	_, err = tx.Exec(ctx, update, flow.ID, flow.Name, flow.Description, graph, flow.UpdatedAt)
	if err != nil {
		return nil, pgErr("update flow", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, pgErr("commit", err)
	}
	return flow, nil
}

// Delete удаляет flow.
func (s *PgFlows) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM flows WHERE id = $1`, id)
	if err != nil {
		return pgErr("delete flow", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// marshalGraph сериализует граф в JSONB. nil остаётся NULL.
func marshalGraph(g *domain.Graph) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal graph: %w", err)
	}
	return data, nil
}

// scanFlow читает flow из строки результата.
func scanFlow(row pgx.Row) (*domain.Flow, error) {
	var flow domain.Flow
	var graph []byte

	err := row.Scan(
		&flow.ID, &flow.Name, &flow.Description, &graph,
		&flow.CreatedAt, &flow.UpdatedAt,
	)
	if err != nil {
		return nil, pgErr("scan flow", err)
	}

	if graph != nil {
		flow.Graph = &domain.Graph{}
		if err := json.Unmarshal(graph, flow.Graph); err != nil {
			return nil, fmt.Errorf("unmarshal graph: %w", err)
		}
	}
	return &flow, nil
}

// PgEvaluations — хранилище оценок на PostgreSQL.
type PgEvaluations struct {
	pool *pgxpool.Pool
}

// NewPgEvaluations создаёт PgEvaluations.
func NewPgEvaluations(pool *pgxpool.Pool) *PgEvaluations {
	return &PgEvaluations{pool: pool}
}

// Create сохраняет оценку, назначая ID и created_at.
func (s *PgEvaluations) Create(ctx context.Context, ev *domain.Evaluation) error {
	ev.ID = uuid.New()
	ev.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO evaluations (id, flow_id, score, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, query, ev.ID, ev.FlowID, ev.Score, ev.Feedback, ev.CreatedAt)
	if err != nil {
		return pgErr("insert evaluation", err)
	}
	return nil
}

// List возвращает все оценки в порядке создания.
func (s *PgEvaluations) List(ctx context.Context) ([]domain.Evaluation, error) {
	query := `
		SELECT id, flow_id, score, feedback, created_at
		FROM evaluations
		ORDER BY created_at, id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, pgErr("list evaluations", err)
	}
	defer rows.Close()

	var evals []domain.Evaluation
	for rows.Next() {
		var ev domain.Evaluation
		err := rows.Scan(&ev.ID, &ev.FlowID, &ev.Score, &ev.Feedback, &ev.CreatedAt)
		if err != nil {
			return nil, pgErr("scan evaluation", err)
		}
		evals = append(evals, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr("list evaluations", err)
	}
	return evals, nil
}
