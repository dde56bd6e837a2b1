package codec

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Ensemble/internal/domain"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "json", want: FormatJSON},
		{in: "JSON", want: FormatJSON},
		{in: "", want: FormatJSON},
		{in: "yaml", want: FormatYAML},
		{in: "yml", want: FormatYAML},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRoundTrip_Agents(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	agents := []domain.Agent{
		{
			ID:        uuid.New(),
			Name:      "Researcher",
			Role:      "research",
			Goal:      "Find sources",
			Backstory: "Veteran librarian",
			Tools:     []string{"search", "search"},
			InputArtifacts: map[string]any{
				"topic": "string",
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        uuid.New(),
			Name:      "Writer",
			Role:      "writing",
			Goal:      "Write the report",
			Backstory: "Former journalist",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			text, err := EncodeAgents(agents, f)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}

			got, err := DecodeAgents(text, f)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}

			if !reflect.DeepEqual(got, agents) {
				t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", agents, got)
			}
		})
	}
}

func TestRoundTrip_Flows(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	flows := []domain.Flow{
		{
			ID:          uuid.New(),
			Name:        "research-pipeline",
			Description: "Research then write",
			Graph: &domain.Graph{
				Nodes: []domain.GraphNode{{ID: "a1"}, {ID: "a2"}},
				Edges: []domain.GraphEdge{{From: "a1", To: "a2"}},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			text, err := EncodeFlows(flows, f)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}

			got, err := DecodeFlows(text, f)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}

			if !reflect.DeepEqual(got, flows) {
				t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", flows, got)
			}
		})
	}
}

func TestDecode_InvalidSyntax(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		format Format
	}{
		{name: "broken json", text: `{"agents": [`, format: FormatJSON},
		{name: "json trailing garbage", text: `{} {}`, format: FormatJSON},
		{name: "json trailing text", text: `{"agents": []}garbage`, format: FormatJSON},
		{name: "json second value", text: `[]{"oops":1}`, format: FormatJSON},
		{name: "broken yaml", text: "agents:\n  - name: \"unclosed", format: FormatYAML},
		{name: "yaml duplicate keys", text: "name: a\nname: b\n", format: FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAgents([]byte(tt.text), tt.format)
			if !errors.Is(err, ErrDecode) {
				t.Errorf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestDecodeAgents_WrapperForms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "bare list", text: `[{"name":"A","role":"R","goal":"G","backstory":"B"}]`, want: 1},
		{name: "items wrapper", text: `{"items":[{"name":"A","role":"R","goal":"G","backstory":"B"}]}`, want: 1},
		{name: "kind wrapper", text: `{"agents":[{"name":"A","role":"R","goal":"G","backstory":"B"},{"name":"C","role":"R","goal":"G","backstory":"B"}]}`, want: 2},
		{name: "single object", text: `{"name":"A","role":"R","goal":"G","backstory":"B"}`, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agents, err := DecodeAgents([]byte(tt.text), FormatJSON)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(agents) != tt.want {
				t.Errorf("expected %d agents, got %d", tt.want, len(agents))
			}
		})
	}
}

func TestDecodeAgents_NonObjectItem(t *testing.T) {
	_, err := DecodeAgents([]byte(`["not an object"]`), FormatJSON)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestDecodeAgents_ScalarPayload(t *testing.T) {
	_, err := DecodeAgents([]byte(`42`), FormatJSON)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestDecode_AbsentArtifactsStayNil(t *testing.T) {
	// Отсутствующее input_artifacts означает "не задано" и не должно
	// превращаться в пустой объект.
	agents, err := DecodeAgents([]byte(`[{"name":"A","role":"R","goal":"G","backstory":"B"}]`), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agents[0].InputArtifacts != nil {
		t.Errorf("expected nil input_artifacts, got %v", agents[0].InputArtifacts)
	}
	if agents[0].OutputArtifacts != nil {
		t.Errorf("expected nil output_artifacts, got %v", agents[0].OutputArtifacts)
	}
}
