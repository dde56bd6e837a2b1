package convert

import (
	"reflect"
	"testing"
)

func TestMarkdown_Basic(t *testing.T) {
	doc := `---
name: Researcher
role: research
goal: Find reliable sources
---
A veteran librarian who never trusts a single source.`

	res := Markdown(doc)
	if !res.OK {
		t.Fatalf("expected ok, got errors: %v", res.Errors)
	}
	if res.Agent == nil {
		t.Fatal("expected agent, got nil")
	}
	if res.Agent.Name != "Researcher" || res.Agent.Role != "research" {
		t.Errorf("unexpected agent fields: %+v", res.Agent)
	}
	if res.Agent.Backstory != "A veteran librarian who never trusts a single source." {
		t.Errorf("body must become backstory, got %q", res.Agent.Backstory)
	}
	if !res.Agent.IsDraft() {
		t.Error("converted agent must be a draft (no id)")
	}
}

func TestMarkdown_BodyTargetsGoal(t *testing.T) {
	doc := `---
name: Writer
role: writing
backstory: Former journalist
body: goal
---
Write the final report.`

	res := Markdown(doc)
	if !res.OK {
		t.Fatalf("expected ok, got errors: %v", res.Errors)
	}
	if res.Agent.Goal != "Write the final report." {
		t.Errorf("body must become goal, got %q", res.Agent.Goal)
	}
	if res.Agent.Backstory != "Former journalist" {
		t.Errorf("backstory from front matter must survive, got %q", res.Agent.Backstory)
	}
}

func TestMarkdown_ToolsForms(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "comma separated",
			doc:  "---\nname: A\nrole: R\ngoal: G\ntools: search, browser , \n---\nB",
			want: []string{"search", "browser"},
		},
		{
			name: "yaml list",
			doc:  "---\nname: A\nrole: R\ngoal: G\ntools:\n  - search\n  - browser\n---\nB",
			want: []string{"search", "browser"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Markdown(tt.doc)
			if !res.OK {
				t.Fatalf("expected ok, got errors: %v", res.Errors)
			}
			if !reflect.DeepEqual(res.Agent.Tools, tt.want) {
				t.Errorf("expected tools %v, got %v", tt.want, res.Agent.Tools)
			}
		})
	}
}

func TestMarkdown_UnrecognizedKeysPreserved(t *testing.T) {
	doc := `---
name: A
role: R
goal: G
temperature: 0.7
---
B`

	res := Markdown(doc)
	if !res.OK {
		t.Fatalf("expected ok, got errors: %v", res.Errors)
	}
	if res.Agent.InputArtifacts == nil {
		t.Fatal("expected unrecognized keys in input_artifacts")
	}
	if _, ok := res.Agent.InputArtifacts["temperature"]; !ok {
		t.Errorf("expected temperature key, got %v", res.Agent.InputArtifacts)
	}
}

func TestMarkdown_MissingFrontMatter(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "no fences", doc: "Just a paragraph of text."},
		{name: "unclosed fence", doc: "---\nname: A\nrole: R"},
		{name: "empty", doc: "   \n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Markdown(tt.doc)
			if res.OK {
				t.Fatal("expected failure")
			}
			if res.Agent != nil {
				t.Errorf("partial agent must never be returned, got %+v", res.Agent)
			}
			if len(res.Errors) == 0 {
				t.Error("expected at least one error message")
			}
		})
	}
}

func TestMarkdown_ValidationCollectsAllErrors(t *testing.T) {
	// name есть, остальное отсутствует: должны вернуться все нарушения.
	doc := "---\nname: A\n---\n"

	res := Markdown(doc)
	if res.OK {
		t.Fatal("expected failure")
	}
	if len(res.Errors) != 3 {
		t.Errorf("expected 3 errors (role, goal, backstory), got %v", res.Errors)
	}
}

func TestMarkdown_FrontMatterNotMapping(t *testing.T) {
	doc := "---\n- just\n- a list\n---\nB"

	res := Markdown(doc)
	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Agent != nil {
		t.Error("partial agent must never be returned")
	}
}
