package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shaiso/Ensemble/internal/domain"
	"github.com/shaiso/Ensemble/internal/orchestration"
	"github.com/shaiso/Ensemble/internal/store"
	"github.com/shaiso/Ensemble/internal/transfer"
)

// newServer собирает Handler на memory store без publisher.
func newServer(t *testing.T) (*httptest.Server, *store.MemoryAgents, *store.MemoryFlows) {
	t.Helper()

	agents := store.NewMemoryAgents()
	flows := store.NewMemoryFlows()
	evaluations := store.NewMemoryEvaluations()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewHandler(Config{
		Agents:      agents,
		Flows:       flows,
		Evaluations: evaluations,
		Pipeline:    transfer.New(agents, flows, transfer.DefaultLimits()),
		Dispatcher:  orchestration.NewDispatcher(flows, agents, orchestration.DefaultRegistry(), logger),
		Logger:      logger,
	})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, agents, flows
}

func doJSON(t *testing.T, method, url string, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if resp.StatusCode == http.StatusNoContent {
		return resp, nil
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, payload
}

func TestAgentCRUD(t *testing.T) {
	srv, _, _ := newServer(t)

	// Create
	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/api/v1/agents",
		`{"name":"Researcher","role":"research","goal":"G","backstory":"B","tools":["search"]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%v)", resp.StatusCode, payload)
	}
	created := payload["data"].(map[string]any)
	id := created["id"].(string)
	if id == "" {
		t.Fatal("created agent must have an id")
	}

	// Get
	resp, payload = doJSON(t, http.MethodGet, srv.URL+"/api/v1/agents/"+id, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	if got := payload["data"].(map[string]any)["name"]; got != "Researcher" {
		t.Errorf("expected name Researcher, got %v", got)
	}

	// Update: patch только role
	resp, payload = doJSON(t, http.MethodPut, srv.URL+"/api/v1/agents/"+id, `{"role":"analyst"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (%v)", resp.StatusCode, payload)
	}
	updated := payload["data"].(map[string]any)
	if updated["role"] != "analyst" {
		t.Errorf("expected updated role, got %v", updated["role"])
	}
	if updated["name"] != "Researcher" {
		t.Errorf("patch must not touch other fields, got name %v", updated["name"])
	}

	// Delete
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/agents/"+id, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/agents/"+id, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateAgent_ValidationFailed(t *testing.T) {
	srv, _, _ := newServer(t)

	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/api/v1/agents",
		`{"name":"","role":"","goal":"G","backstory":"B"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	detail := payload["error"].(map[string]any)
	if detail["code"] != string(ErrCodeValidationFailed) {
		t.Errorf("expected VALIDATION_FAILED, got %v", detail["code"])
	}
	// Все нарушения приходят разом.
	if errs := detail["errors"].([]any); len(errs) != 2 {
		t.Errorf("expected 2 violations, got %v", errs)
	}
}

func TestCreateFlow_InvalidGraph(t *testing.T) {
	srv, _, _ := newServer(t)

	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/api/v1/flows",
		`{"name":"F","graph_json":{"nodes":[{"id":"nope"}],"edges":[{"from":"nope","to":"ghost"}]}}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (%v)", resp.StatusCode, payload)
	}

	detail := payload["error"].(map[string]any)
	if detail["code"] != string(ErrCodeInvalidGraph) {
		t.Errorf("expected INVALID_GRAPH, got %v", detail["code"])
	}
	// Два нарушения: неизвестный агент и висячее ребро.
	if errs := detail["errors"].([]any); len(errs) != 2 {
		t.Errorf("expected 2 violations, got %v", errs)
	}
}

func TestOrchestrateRun_Fake(t *testing.T) {
	srv, agents, flows := newServer(t)

	agent := &domain.Agent{Name: "A", Role: "R", Goal: "G", Backstory: "B"}
	if err := agents.Create(t.Context(), agent); err != nil {
		t.Fatalf("create agent: %v", err)
	}
	flow := &domain.Flow{
		Name:  "F",
		Graph: &domain.Graph{Nodes: []domain.GraphNode{{ID: agent.ID.String()}}},
	}
	if err := flows.Create(t.Context(), flow); err != nil {
		t.Fatalf("create flow: %v", err)
	}

	body := fmt.Sprintf(`{"flow_id":"%s","engine":"fake"}`, flow.ID)
	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/api/v1/orchestrate/run", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, payload)
	}

	data := payload["data"].(map[string]any)
	if data["flow_id"] != flow.ID.String() || data["engine"] != "fake" {
		t.Errorf("envelope must echo the request: %v", data)
	}
	if _, ok := data["plan"]; !ok {
		t.Error("fake engine must return a plan")
	}
	if _, ok := data["result"]; ok {
		t.Error("plan form must not include result")
	}
}

func TestOrchestrateRun_UnsupportedEngine(t *testing.T) {
	srv, agents, flows := newServer(t)

	agent := &domain.Agent{Name: "A", Role: "R", Goal: "G", Backstory: "B"}
	if err := agents.Create(t.Context(), agent); err != nil {
		t.Fatalf("create agent: %v", err)
	}
	flow := &domain.Flow{
		Name:  "F",
		Graph: &domain.Graph{Nodes: []domain.GraphNode{{ID: agent.ID.String()}}},
	}
	if err := flows.Create(t.Context(), flow); err != nil {
		t.Fatalf("create flow: %v", err)
	}

	body := fmt.Sprintf(`{"flow_id":"%s","engine":"warp"}`, flow.ID)
	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/api/v1/orchestrate/run", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	detail := payload["error"].(map[string]any)
	if detail["code"] != string(ErrCodeUnsupportedEng) {
		t.Errorf("expected UNSUPPORTED_ENGINE, got %v", detail["code"])
	}
}

func TestImportValidateExport(t *testing.T) {
	srv, _, _ := newServer(t)

	batch := `[{"name":"A","role":"R","goal":"G","backstory":"B"}]`

	// Validate без записи
	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/api/v1/agents/validate?format=json", batch)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("validate: expected 200, got %d", resp.StatusCode)
	}
	if ok := payload["data"].(map[string]any)["ok"]; ok != true {
		t.Fatalf("expected ok report, got %v", payload)
	}

	resp, payload = doJSON(t, http.MethodGet, srv.URL+"/api/v1/agents", "")
	if total, ok := payload["total"]; ok && total != nil {
		t.Fatalf("validate must not commit, got %v", payload)
	}

	// Import
	resp, payload = doJSON(t, http.MethodPost, srv.URL+"/api/v1/agents/import?format=json", batch)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("import: expected 201, got %d (%v)", resp.StatusCode, payload)
	}

	// Export отдаёт документ без конверта
	resp, err := http.Get(srv.URL + "/api/v1/agents/export?format=json")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	var exported []map[string]any
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("export must be a bare document: %v (%s)", err, data)
	}
	if len(exported) != 1 || exported[0]["name"] != "A" {
		t.Errorf("unexpected export content: %s", data)
	}
}

func TestConvertAgentMarkdown(t *testing.T) {
	srv, _, _ := newServer(t)

	text := "---\nname: Writer\nrole: writing\ngoal: G\n---\nBody becomes backstory."
	body, _ := json.Marshal(map[string]string{"text": text})

	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/api/v1/convert/agent-md", string(bytes.TrimSpace(body)))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	data := payload["data"].(map[string]any)
	if data["ok"] != true {
		t.Fatalf("expected ok conversion, got %v", data)
	}
	agent := data["agent"].(map[string]any)
	if agent["backstory"] != "Body becomes backstory." {
		t.Errorf("body must fill backstory, got %v", agent["backstory"])
	}
}

func TestCreateEvaluation_UnknownFlow(t *testing.T) {
	srv, _, _ := newServer(t)

	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/api/v1/evaluations",
		`{"flow_id":"00000000-0000-0000-0000-000000000001","score":80}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%v)", resp.StatusCode, payload)
	}
}
