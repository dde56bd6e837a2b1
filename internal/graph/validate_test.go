package graph

import (
	"errors"
	"testing"

	"github.com/shaiso/Ensemble/internal/domain"
)

func agents(ids ...string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestValidate_OK(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.GraphNode{{ID: "a1"}, {ID: "a2"}},
		Edges: []domain.GraphEdge{{From: "a1", To: "a2"}},
	}

	if err := Validate(g, agents("a1", "a2")); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidate_UnknownAgent(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.GraphNode{{ID: "agent-1"}},
	}

	err := Validate(g, agents())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(vErr.Violations) != 1 {
		t.Fatalf("expected exactly 1 violation, got %d: %v", len(vErr.Violations), vErr.Messages())
	}
	if !vErr.Has(ErrUnknownAgent) {
		t.Errorf("expected ErrUnknownAgent, got %v", vErr.Violations[0].Err)
	}
}

func TestValidate_DuplicateNode(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.GraphNode{{ID: "a1"}, {ID: "a1"}},
	}

	err := Validate(g, agents("a1"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if !vErr.Has(ErrDuplicateNode) {
		t.Errorf("expected ErrDuplicateNode, got %v", vErr.Messages())
	}
}

func TestValidate_DanglingEdges(t *testing.T) {
	tests := []struct {
		name string
		edge domain.GraphEdge
	}{
		{name: "dangling from", edge: domain.GraphEdge{From: "ghost", To: "a1"}},
		{name: "dangling to", edge: domain.GraphEdge{From: "a1", To: "ghost"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &domain.Graph{
				Nodes: []domain.GraphNode{{ID: "a1"}},
				Edges: []domain.GraphEdge{tt.edge},
			}

			err := Validate(g, agents("a1"))
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if !vErr.Has(ErrDanglingEdge) {
				t.Errorf("expected ErrDanglingEdge, got %v", vErr.Messages())
			}
		})
	}
}

func TestValidate_AccumulatesAllViolations(t *testing.T) {
	// Три независимых нарушения: неизвестный агент, дубликат,
	// висячее ребро. Валидатор должен сообщить о каждом.
	g := &domain.Graph{
		Nodes: []domain.GraphNode{{ID: "known"}, {ID: "unknown"}, {ID: "known"}},
		Edges: []domain.GraphEdge{{From: "known", To: "ghost"}},
	}

	err := Validate(g, agents("known"))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	if len(vErr.Violations) != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", len(vErr.Violations), vErr.Messages())
	}
	for _, want := range []error{ErrUnknownAgent, ErrDuplicateNode, ErrDanglingEdge} {
		if !vErr.Has(want) {
			t.Errorf("missing violation %v in %v", want, vErr.Messages())
		}
	}
}

func TestValidate_CyclesAllowed(t *testing.T) {
	// Ацикличность не требуется: цикл — не нарушение.
	g := &domain.Graph{
		Nodes: []domain.GraphNode{{ID: "a1"}, {ID: "a2"}},
		Edges: []domain.GraphEdge{
			{From: "a1", To: "a2"},
			{From: "a2", To: "a1"},
		},
	}

	if err := Validate(g, agents("a1", "a2")); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidate_EmptyGraphIsDraftOK(t *testing.T) {
	if err := Validate(&domain.Graph{}, agents()); err != nil {
		t.Errorf("expected nil for empty draft graph, got %v", err)
	}
	if err := Validate(nil, agents()); err != nil {
		t.Errorf("expected nil for nil graph, got %v", err)
	}
}

func TestValidateForCommit_EmptyNodes(t *testing.T) {
	tests := []struct {
		name string
		g    *domain.Graph
	}{
		{name: "nil graph", g: nil},
		{name: "empty nodes", g: &domain.Graph{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateForCommit(tt.g, agents())
			if !errors.Is(err, ErrInvalidGraph) {
				t.Fatalf("expected ErrInvalidGraph, got %v", err)
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if !vErr.Has(ErrEmptyNodes) {
				t.Errorf("expected ErrEmptyNodes, got %v", vErr.Messages())
			}
		})
	}
}
