package orchestration

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestResultMarshal_PlanForm(t *testing.T) {
	r := Result{
		FlowID: uuid.New(),
		Engine: "crewai",
		Output: Output{
			Kind:      KindPlan,
			Plan:      map[string]any{"process": "sequential"},
			Logs:      []string{"line"},
			RequestID: "req-1",
		},
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var envelope map[string]any
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"flow_id", "engine", "plan", "logs", "request_id"} {
		if _, ok := envelope[key]; !ok {
			t.Errorf("missing %q in envelope: %s", key, data)
		}
	}
	for _, key := range []string{"result", "duration_ms"} {
		if _, ok := envelope[key]; ok {
			t.Errorf("plan form must not include %q: %s", key, data)
		}
	}
}

func TestResultMarshal_OutcomeForm(t *testing.T) {
	r := Result{
		FlowID: uuid.New(),
		Engine: "robotgreen",
		Output: Output{
			Kind:       KindOutcome,
			Result:     map[string]any{"status": "completed"},
			DurationMS: 42,
		},
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var envelope map[string]any
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"flow_id", "engine", "result", "duration_ms"} {
		if _, ok := envelope[key]; !ok {
			t.Errorf("missing %q in envelope: %s", key, data)
		}
	}
	for _, key := range []string{"plan", "logs", "request_id"} {
		if _, ok := envelope[key]; ok {
			t.Errorf("outcome form must not include %q: %s", key, data)
		}
	}
	if got := envelope["duration_ms"].(float64); got != 42 {
		t.Errorf("expected duration_ms 42, got %v", got)
	}
}

func TestParseLogLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		structured bool
		node       string
		msg        string
	}{
		{
			name:       "structured record",
			line:       `{"ts":"2026-09-01T10:00:00Z","node":"n1","msg":"task scheduled"}`,
			structured: true,
			node:       "n1",
			msg:        "task scheduled",
		},
		{
			name:       "partial record",
			line:       `{"msg":"plan ready"}`,
			structured: true,
			msg:        "plan ready",
		},
		{
			name: "plain text degrades to raw",
			line: "fake: node n1 done",
		},
		{
			name: "broken json degrades to raw",
			line: `{"msg": `,
		},
		{
			name: "json scalar degrades to raw",
			line: `"just a string"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := ParseLogLine(tt.line)
			if record.Structured != tt.structured {
				t.Fatalf("structured = %v, want %v", record.Structured, tt.structured)
			}
			if record.Raw != tt.line {
				t.Errorf("raw must keep the original line, got %q", record.Raw)
			}
			if record.Node != tt.node || record.Msg != tt.msg {
				t.Errorf("parsed {node:%q msg:%q}, want {node:%q msg:%q}",
					record.Node, record.Msg, tt.node, tt.msg)
			}
		})
	}
}

func TestParsedLogs(t *testing.T) {
	plan := &Result{Output: Output{
		Kind: KindPlan,
		Logs: []string{`{"msg":"a"}`, "raw line"},
	}}
	records := plan.ParsedLogs()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !records[0].Structured || records[1].Structured {
		t.Errorf("expected [structured, raw], got %+v", records)
	}

	outcome := &Result{Output: Output{Kind: KindOutcome}}
	if got := outcome.ParsedLogs(); got != nil {
		t.Errorf("outcome form has no logs, got %v", got)
	}
}
