package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// AgentResponse — агент из API.
type AgentResponse struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Role            string         `json:"role"`
	Goal            string         `json:"goal"`
	Backstory       string         `json:"backstory"`
	Tools           []string       `json:"tools,omitempty"`
	InputArtifacts  map[string]any `json:"input_artifacts,omitempty"`
	OutputArtifacts map[string]any `json:"output_artifacts,omitempty"`
	CreatedAt       string         `json:"created_at,omitempty"`
	UpdatedAt       string         `json:"updated_at,omitempty"`
}

// GraphResponse — граф flow из API.
type GraphResponse struct {
	Nodes []struct {
		ID string `json:"id"`
	} `json:"nodes"`
	Edges []struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"edges"`
}

// FlowResponse — flow из API.
type FlowResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Graph       *GraphResponse `json:"graph_json,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
}

// EvaluationResponse — оценка из API.
type EvaluationResponse struct {
	ID        string  `json:"id"`
	FlowID    string  `json:"flow_id"`
	Score     float64 `json:"score"`
	Feedback  string  `json:"feedback,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// ValidateReport — отчёт проверки без коммита.
type ValidateReport struct {
	OK      bool     `json:"ok"`
	Errors  []string `json:"errors"`
	Message string   `json:"message,omitempty"`
}

// ConvertResult — результат конвертации Markdown.
type ConvertResult struct {
	OK      bool           `json:"ok"`
	Agent   *AgentResponse `json:"agent,omitempty"`
	Errors  []string       `json:"errors"`
	Message string         `json:"message,omitempty"`
}

// RunResult — конверт результата оркестрации. Plan и Result
// остаются сырыми: их форма зависит от движка.
type RunResult struct {
	FlowID     string         `json:"flow_id"`
	Engine     string         `json:"engine"`
	Plan       map[string]any `json:"plan,omitempty"`
	Logs       []string       `json:"logs,omitempty"`
	Result     any            `json:"result,omitempty"`
	DurationMS int64          `json:"duration_ms,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
}

// --- Request types ---

// CreateAgentRequest — создание агента.
type CreateAgentRequest struct {
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Goal      string   `json:"goal"`
	Backstory string   `json:"backstory"`
	Tools     []string `json:"tools,omitempty"`
}

// UpdateAgentRequest — частичное обновление агента.
type UpdateAgentRequest struct {
	Name      *string   `json:"name,omitempty"`
	Role      *string   `json:"role,omitempty"`
	Goal      *string   `json:"goal,omitempty"`
	Backstory *string   `json:"backstory,omitempty"`
	Tools     *[]string `json:"tools,omitempty"`
}

// CreateFlowRequest — создание flow.
type CreateFlowRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Graph       json.RawMessage `json:"graph_json,omitempty"`
}

// UpdateFlowRequest — частичное обновление flow.
type UpdateFlowRequest struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Graph       json.RawMessage `json:"graph_json,omitempty"`
}

// CreateEvaluationRequest — создание оценки.
type CreateEvaluationRequest struct {
	FlowID   string  `json:"flow_id"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback,omitempty"`
}

// RunRequest — запуск оркестрации.
type RunRequest struct {
	FlowID string         `json:"flow_id"`
	Engine string         `json:"engine"`
	Inputs map[string]any `json:"inputs,omitempty"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Ensemble API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// --- Agents ---

// ListAgents возвращает всех агентов.
func (c *Client) ListAgents() ([]AgentResponse, error) {
	var agents []AgentResponse
	err := c.list("/api/v1/agents", &agents)
	return agents, err
}

// CreateAgent создаёт нового агента.
func (c *Client) CreateAgent(req CreateAgentRequest) (*AgentResponse, error) {
	var agent AgentResponse
	err := c.post("/api/v1/agents", req, &agent)
	return &agent, err
}

// GetAgent возвращает агента по ID.
func (c *Client) GetAgent(id string) (*AgentResponse, error) {
	var agent AgentResponse
	err := c.get("/api/v1/agents/"+id, &agent)
	return &agent, err
}

// UpdateAgent обновляет агента.
func (c *Client) UpdateAgent(id string, req UpdateAgentRequest) (*AgentResponse, error) {
	var agent AgentResponse
	err := c.put("/api/v1/agents/"+id, req, &agent)
	return &agent, err
}

// DeleteAgent удаляет агента.
func (c *Client) DeleteAgent(id string) error {
	return c.delete("/api/v1/agents/" + id)
}

// ConvertAgentMarkdown конвертирует Markdown-документ в черновик агента.
func (c *Client) ConvertAgentMarkdown(text string) (*ConvertResult, error) {
	var result ConvertResult
	err := c.post("/api/v1/convert/agent-md", map[string]string{"text": text}, &result)
	return &result, err
}

// --- Flows ---

// ListFlows возвращает все flows.
func (c *Client) ListFlows() ([]FlowResponse, error) {
	var flows []FlowResponse
	err := c.list("/api/v1/flows", &flows)
	return flows, err
}

// CreateFlow создаёт новый flow.
func (c *Client) CreateFlow(req CreateFlowRequest) (*FlowResponse, error) {
	var flow FlowResponse
	err := c.post("/api/v1/flows", req, &flow)
	return &flow, err
}

// GetFlow возвращает flow по ID.
func (c *Client) GetFlow(id string) (*FlowResponse, error) {
	var flow FlowResponse
	err := c.get("/api/v1/flows/"+id, &flow)
	return &flow, err
}

// UpdateFlow обновляет flow.
func (c *Client) UpdateFlow(id string, req UpdateFlowRequest) (*FlowResponse, error) {
	var flow FlowResponse
	err := c.put("/api/v1/flows/"+id, req, &flow)
	return &flow, err
}

// DeleteFlow удаляет flow.
func (c *Client) DeleteFlow(id string) error {
	return c.delete("/api/v1/flows/" + id)
}

// --- Evaluations ---

// ListEvaluations возвращает все оценки.
func (c *Client) ListEvaluations() ([]EvaluationResponse, error) {
	var evaluations []EvaluationResponse
	err := c.list("/api/v1/evaluations", &evaluations)
	return evaluations, err
}

// CreateEvaluation создаёт оценку.
func (c *Client) CreateEvaluation(req CreateEvaluationRequest) (*EvaluationResponse, error) {
	var evaluation EvaluationResponse
	err := c.post("/api/v1/evaluations", req, &evaluation)
	return &evaluation, err
}

// --- Export / Import / Validate ---

// Export возвращает сериализованный документ сущностей.
// kind — agents или flows.
func (c *Client) Export(kind, format string) ([]byte, error) {
	resp, err := c.do(http.MethodGet, "/api/v1/"+kind+"/export?format="+format, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// Import импортирует пачку сущностей из сериализованного документа.
func (c *Client) Import(kind, format string, data []byte) (json.RawMessage, error) {
	resp, err := c.do(http.MethodPost, "/api/v1/"+kind+"/import?format="+format, bytes.NewReader(data), "application/octet-stream")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return dr.Data, nil
}

// ImportFile импортирует сущности из файла через multipart-форму.
func (c *Client) ImportFile(kind, format, filename string, data []byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	resp, err := c.do(http.MethodPost, "/api/v1/"+kind+"/import/file?format="+format, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return dr.Data, nil
}

// Validate проверяет документ без коммита.
func (c *Client) Validate(kind, format string, data []byte) (*ValidateReport, error) {
	resp, err := c.do(http.MethodPost, "/api/v1/"+kind+"/validate?format="+format, bytes.NewReader(data), "application/octet-stream")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	var report ValidateReport
	if err := json.Unmarshal(dr.Data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

// --- Orchestration ---

// Run запускает flow через движок.
func (c *Client) Run(req RunRequest) (*RunResult, error) {
	var result RunResult
	err := c.post("/api/v1/orchestrate/run", req, &result)
	return &result, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.doJSON(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, result any) error {
	resp, err := c.doJSON(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.doJSON(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) doJSON(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(method, path, bodyReader, contentType)
}

func (c *Client) do(method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	if len(er.Error.Errors) > 0 {
		return fmt.Errorf("%s: %s (%d violations)", er.Error.Code, er.Error.Message, len(er.Error.Errors))
	}
	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
