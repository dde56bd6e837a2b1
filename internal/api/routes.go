package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
		CORS(),
	)

	// Agents
	mux.Handle("GET /api/v1/agents", chain(http.HandlerFunc(h.ListAgents)))
	mux.Handle("POST /api/v1/agents", chain(http.HandlerFunc(h.CreateAgent)))
	mux.Handle("GET /api/v1/agents/{id}", chain(http.HandlerFunc(h.GetAgent)))
	mux.Handle("PUT /api/v1/agents/{id}", chain(http.HandlerFunc(h.UpdateAgent)))
	mux.Handle("DELETE /api/v1/agents/{id}", chain(http.HandlerFunc(h.DeleteAgent)))

	// Agents: export / import / validate
	mux.Handle("GET /api/v1/agents/export", chain(http.HandlerFunc(h.ExportAgents)))
	mux.Handle("POST /api/v1/agents/import", chain(http.HandlerFunc(h.ImportAgents)))
	mux.Handle("POST /api/v1/agents/import/file", chain(http.HandlerFunc(h.ImportAgentsFile)))
	mux.Handle("POST /api/v1/agents/validate", chain(http.HandlerFunc(h.ValidateAgents)))

	// Flows
	mux.Handle("GET /api/v1/flows", chain(http.HandlerFunc(h.ListFlows)))
	mux.Handle("POST /api/v1/flows", chain(http.HandlerFunc(h.CreateFlow)))
	mux.Handle("GET /api/v1/flows/{id}", chain(http.HandlerFunc(h.GetFlow)))
	mux.Handle("PUT /api/v1/flows/{id}", chain(http.HandlerFunc(h.UpdateFlow)))
	mux.Handle("DELETE /api/v1/flows/{id}", chain(http.HandlerFunc(h.DeleteFlow)))

	// Flows: export / import / validate
	mux.Handle("GET /api/v1/flows/export", chain(http.HandlerFunc(h.ExportFlows)))
	mux.Handle("POST /api/v1/flows/import", chain(http.HandlerFunc(h.ImportFlows)))
	mux.Handle("POST /api/v1/flows/import/file", chain(http.HandlerFunc(h.ImportFlowsFile)))
	mux.Handle("POST /api/v1/flows/validate", chain(http.HandlerFunc(h.ValidateFlows)))

	// Evaluations
	mux.Handle("GET /api/v1/evaluations", chain(http.HandlerFunc(h.ListEvaluations)))
	mux.Handle("POST /api/v1/evaluations", chain(http.HandlerFunc(h.CreateEvaluation)))

	// Conversion
	mux.Handle("POST /api/v1/convert/agent-md", chain(http.HandlerFunc(h.ConvertAgentMarkdown)))

	// Orchestration
	mux.Handle("POST /api/v1/orchestrate/run", chain(http.HandlerFunc(h.RunOrchestration)))

	// Health
	mux.Handle("GET /health", http.HandlerFunc(h.Health))
}

// Health — проверка живости сервиса.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	Success(w, map[string]string{"status": "ok"})
}
