package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shaiso/Ensemble/internal/codec"
	"github.com/shaiso/Ensemble/internal/domain"
	"github.com/shaiso/Ensemble/internal/store"
)

func newPipeline() (*Pipeline, *store.MemoryAgents, *store.MemoryFlows) {
	agents := store.NewMemoryAgents()
	flows := store.NewMemoryFlows()
	return New(agents, flows, DefaultLimits()), agents, flows
}

func TestImportAgents_AssignsServerFields(t *testing.T) {
	p, agents, _ := newPipeline()

	text := `{"agents":[{"name":"A","role":"R","goal":"G","backstory":"B"}]}`
	created, err := p.ImportAgents(context.Background(), []byte(text), codec.FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(created) != 1 {
		t.Fatalf("expected 1 created agent, got %d", len(created))
	}
	a := created[0]
	if a.IsDraft() {
		t.Error("created agent must have a server-assigned id")
	}
	if a.CreatedAt.IsZero() || a.UpdatedAt.IsZero() {
		t.Error("created agent must have server-assigned timestamps")
	}

	stored, err := agents.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("expected 1 stored agent, got %d", len(stored))
	}
}

func TestImportAgents_AtomicOnValidationFailure(t *testing.T) {
	p, agents, _ := newPipeline()

	// Второй элемент невалиден: не должно закоммититься ничего.
	text := `[
		{"name":"A","role":"R","goal":"G","backstory":"B"},
		{"name":"","role":"","goal":"G","backstory":"B"}
	]`
	_, err := p.ImportAgents(context.Background(), []byte(text), codec.FormatJSON)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(vErr.Errors) != 2 {
		t.Errorf("expected 2 errors (name, role), got %v", vErr.Errors)
	}

	stored, _ := agents.List(context.Background())
	if len(stored) != 0 {
		t.Errorf("atomic import violated: %d agents committed", len(stored))
	}
}

func TestImportAgents_DecodeErrorBeforeValidation(t *testing.T) {
	p, agents, _ := newPipeline()

	_, err := p.ImportAgents(context.Background(), []byte(`{"agents": [`), codec.FormatJSON)
	if !errors.Is(err, codec.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}

	stored, _ := agents.List(context.Background())
	if len(stored) != 0 {
		t.Errorf("decode failure must not commit, got %d agents", len(stored))
	}
}

func TestImportFlows_DanglingAgentReference(t *testing.T) {
	p, _, flows := newPipeline()

	text := `[{"name":"F","graph_json":{"nodes":[{"id":"agent-1"}],"edges":[]}}]`
	_, err := p.ImportFlows(context.Background(), []byte(text), codec.FormatJSON)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(vErr.Errors) != 1 {
		t.Fatalf("expected exactly 1 violation, got %v", vErr.Errors)
	}
	if !strings.Contains(vErr.Errors[0], "unknown agent") {
		t.Errorf("expected dangling reference message, got %q", vErr.Errors[0])
	}

	stored, _ := flows.List(context.Background())
	if len(stored) != 0 {
		t.Errorf("expected no flows committed, got %d", len(stored))
	}
}

func TestImportFlows_ValidGraph(t *testing.T) {
	p, agents, _ := newPipeline()

	agent := &domain.Agent{Name: "A", Role: "R", Goal: "G", Backstory: "B"}
	if err := agents.Create(context.Background(), agent); err != nil {
		t.Fatalf("create agent: %v", err)
	}

	text := fmt.Sprintf(`[{"name":"F","graph_json":{"nodes":[{"id":"%s"}],"edges":[]}}]`, agent.ID)
	created, err := p.ImportFlows(context.Background(), []byte(text), codec.FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 flow, got %d", len(created))
	}
	if created[0].IsDraft() {
		t.Error("created flow must have a server-assigned id")
	}
}

func TestValidate_Idempotent_NoStateAdvance(t *testing.T) {
	p, agents, _ := newPipeline()

	text := []byte(`{"agents":[{"name":"A","role":"R","goal":"G","backstory":"B"}]}`)

	first := p.Validate(context.Background(), text, codec.FormatJSON, KindAgents)
	second := p.Validate(context.Background(), text, codec.FormatJSON, KindAgents)

	if !first.OK || !second.OK {
		t.Fatalf("expected ok reports, got %+v / %+v", first, second)
	}
	if len(first.Errors) != len(second.Errors) {
		t.Errorf("validate must be idempotent: %v vs %v", first.Errors, second.Errors)
	}

	stored, _ := agents.List(context.Background())
	if len(stored) != 0 {
		t.Errorf("validate must not write to the store, got %d agents", len(stored))
	}
}

func TestValidate_ReportsDecodeError(t *testing.T) {
	p, _, _ := newPipeline()

	report := p.Validate(context.Background(), []byte("{invalid"), codec.FormatJSON, KindAgents)
	if report.OK {
		t.Fatal("expected failed report")
	}
	if len(report.Errors) == 0 {
		t.Error("expected at least one error message")
	}
}

func TestValidate_AppliesItemLimit(t *testing.T) {
	agents := store.NewMemoryAgents()
	flows := store.NewMemoryFlows()
	p := New(agents, flows, Limits{MaxItems: 1})

	// Пачка сверх лимита не прошла бы импорт, значит и Validate
	// обязан отчитаться об этом.
	text := []byte(`[
		{"name":"A","role":"R","goal":"G","backstory":"B"},
		{"name":"B","role":"R","goal":"G","backstory":"B"}
	]`)
	report := p.Validate(context.Background(), text, codec.FormatJSON, KindAgents)
	if report.OK {
		t.Fatal("expected failed report for an over-limit batch")
	}
	if len(report.Errors) == 0 || !strings.Contains(report.Errors[0], "too many items") {
		t.Errorf("expected item limit message, got %v", report.Errors)
	}

	if _, err := p.ImportAgents(context.Background(), text, codec.FormatJSON); !errors.Is(err, ErrTooManyItems) {
		t.Fatalf("expected ErrTooManyItems, got %v", err)
	}

	stored, _ := agents.List(context.Background())
	if len(stored) != 0 {
		t.Errorf("validate must not write to the store, got %d agents", len(stored))
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, f := range []codec.Format{codec.FormatJSON, codec.FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			p, agents, _ := newPipeline()

			seed := []*domain.Agent{
				{Name: "A", Role: "R1", Goal: "G1", Backstory: "B1", Tools: []string{"search"}},
				{Name: "B", Role: "R2", Goal: "G2", Backstory: "B2"},
			}
			for _, a := range seed {
				if err := agents.Create(context.Background(), a); err != nil {
					t.Fatalf("create: %v", err)
				}
			}

			text, err := p.ExportAgents(context.Background(), f)
			if err != nil {
				t.Fatalf("export: %v", err)
			}

			// Импорт в чистый store: множества должны совпасть
			// с точностью до серверных полей.
			p2, agents2, _ := newPipeline()
			created, err := p2.ImportAgents(context.Background(), text, f)
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if len(created) != len(seed) {
				t.Fatalf("expected %d agents, got %d", len(seed), len(created))
			}

			stored, _ := agents2.List(context.Background())
			for i, a := range stored {
				if a.Name != seed[i].Name || a.Role != seed[i].Role ||
					a.Goal != seed[i].Goal || a.Backstory != seed[i].Backstory {
					t.Errorf("agent %d mismatch: %+v vs %+v", i, a, seed[i])
				}
				if a.ID == seed[i].ID {
					t.Errorf("imported agent %d must get a fresh id", i)
				}
			}
		})
	}
}

func TestImportFile_Limits(t *testing.T) {
	agents := store.NewMemoryAgents()
	flows := store.NewMemoryFlows()
	p := New(agents, flows, Limits{MaxItems: 1, MaxFileBytes: 16})

	t.Run("file too large", func(t *testing.T) {
		data := []byte(`[{"name":"A","role":"R","goal":"G","backstory":"B"}]`)
		_, err := p.ImportAgentsFile(context.Background(), data, codec.FormatJSON)
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("expected ErrTooLarge, got %v", err)
		}
	})

	t.Run("too many items", func(t *testing.T) {
		data := []byte(`[{"name":"A","role":"R","goal":"G","backstory":"B"},{"name":"B","role":"R","goal":"G","backstory":"B"}]`)
		_, err := p.ImportAgents(context.Background(), data, codec.FormatJSON)
		if !errors.Is(err, ErrTooManyItems) {
			t.Errorf("expected ErrTooManyItems, got %v", err)
		}
	})

	t.Run("invalid utf8", func(t *testing.T) {
		_, err := p.ImportAgentsFile(context.Background(), []byte{0xff, 0xfe}, codec.FormatJSON)
		if !errors.Is(err, codec.ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})
}
