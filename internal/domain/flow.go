package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Flow — граф ссылок на агентов.
//
// Узлы графа ссылаются на существующих агентов по ID, рёбра задают
// направленные связи между узлами. Flow не дублирует содержимое
// агентов — только ссылается на них.
type Flow struct {
	// ID — уникальный идентификатор flow. Назначается store.
	ID uuid.UUID `json:"id,omitzero"`

	// Name — имя flow. Обязательное.
	Name string `json:"name"`

	// Description — описание назначения flow.
	Description string `json:"description,omitempty"`

	// Graph — структура графа. nil допустим только для черновиков;
	// при сохранении граф обязан содержать хотя бы один узел.
	Graph *Graph `json:"graph_json,omitempty"`

	// CreatedAt — время создания. Назначается store.
	CreatedAt time.Time `json:"created_at,omitzero"`

	// UpdatedAt — время последнего обновления. Назначается store.
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Graph — содержимое поля graph_json.
type Graph struct {
	// Nodes — узлы графа. ID узла — это ID агента, на которого он
	// ссылается; два узла не могут ссылаться на одного агента.
	Nodes []GraphNode `json:"nodes"`

	// Edges — направленные рёбра между узлами.
	Edges []GraphEdge `json:"edges"`
}

// GraphNode — узел графа (ссылка на агента).
type GraphNode struct {
	ID string `json:"id"`
}

// GraphEdge — направленное ребро графа.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NodeIDs возвращает ID всех узлов в порядке объявления.
func (g *Graph) NodeIDs() []string {
	if g == nil {
		return nil
	}
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// IsDraft возвращает true, если flow ещё не сохранён (нет ID).
func (f *Flow) IsDraft() bool {
	return f.ID == uuid.Nil
}

// Validate проверяет обязательные поля flow.
// Структуру графа проверяет internal/graph, здесь — только поля.
func (f *Flow) Validate() []string {
	var errs []string
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}
