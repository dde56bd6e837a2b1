// Package graph валидирует структуру графа flow.
//
// Валидатор — чистая функция над (граф, множество известных агентов):
// ничего не читает и не пишет в store сам. Все нарушения
// накапливаются и возвращаются разом, без short-circuit: UI должен
// показать пользователю каждую проблему, а не первую попавшуюся.
//
// Циклы сознательно не проверяются: граф flow не обязан быть
// ацикличным, порядок обхода определяет движок оркестрации.
package graph

import (
	"fmt"

	"github.com/shaiso/Ensemble/internal/domain"
)

// Validate проверяет структуру графа против множества известных агентов.
//
// Правила (каждое проверяется и сообщается независимо):
//  1. Каждый nodes[].id должен быть ID существующего агента.
//  2. nodes[].id попарно различны.
//  3. from и to каждого ребра равны ID какого-то узла этого же графа.
//
// Пустой граф здесь допустим (черновик). Для сохранения используйте
// ValidateForCommit. Возвращает nil или *ValidationError.
func Validate(g *domain.Graph, agentIDs map[string]bool) error {
	violations := collect(g, agentIDs)
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// ValidateForCommit — как Validate, но дополнительно требует
// непустое множество узлов: контракт сохранения отвергает flow
// без единого узла.
func ValidateForCommit(g *domain.Graph, agentIDs map[string]bool) error {
	violations := collect(g, agentIDs)
	if g == nil || len(g.Nodes) == 0 {
		violations = append(violations, Violation{
			Message: "graph must contain at least one node",
			Err:     ErrEmptyNodes,
		})
	}
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// collect накапливает все нарушения.
func collect(g *domain.Graph, agentIDs map[string]bool) []Violation {
	if g == nil {
		return nil
	}

	var violations []Violation

	// Правило 2: уникальность узлов. Множество узлов собираем здесь же,
	// оно нужно для проверки рёбер.
	nodeIDs := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if nodeIDs[n.ID] {
			violations = append(violations, Violation{
				Message: fmt.Sprintf("duplicate node id: %s", n.ID),
				Err:     ErrDuplicateNode,
			})
			continue
		}
		nodeIDs[n.ID] = true

		// Правило 1: узел ссылается на существующего агента.
		if !agentIDs[n.ID] {
			violations = append(violations, Violation{
				Message: fmt.Sprintf("node references unknown agent: %s", n.ID),
				Err:     ErrUnknownAgent,
			})
		}
	}

	// Правило 3: концы рёбер — узлы этого же графа.
	for _, e := range g.Edges {
		if !nodeIDs[e.From] {
			violations = append(violations, Violation{
				Message: fmt.Sprintf("edge 'from' references unknown node: %s", e.From),
				Err:     ErrDanglingEdge,
			})
		}
		if !nodeIDs[e.To] {
			violations = append(violations, Violation{
				Message: fmt.Sprintf("edge 'to' references unknown node: %s", e.To),
				Err:     ErrDanglingEdge,
			})
		}
	}

	return violations
}
