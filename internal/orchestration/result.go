package orchestration

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// ResultKind — дискриминатор формы результата движка.
//
// Движки возвращают одну из двух форм: {plan, logs} либо
// {result, duration_ms}. Формы никогда не смешиваются, поэтому
// конверт — это tagged union с явным дискриминатором, а не объект
// с опциональными полями, форму которого угадывают по наличию.
type ResultKind string

// Формы результата.
const (
	// KindPlan — движок вернул план и логи.
	KindPlan ResultKind = "plan"

	// KindOutcome — движок вернул результат и длительность.
	KindOutcome ResultKind = "outcome"
)

// Output — сырой результат адаптера движка.
type Output struct {
	// Kind — какая из двух форм заполнена.
	Kind ResultKind

	// Plan и Logs — форма KindPlan.
	Plan map[string]any
	Logs []string

	// Result и DurationMS — форма KindOutcome.
	Result     any
	DurationMS int64

	// RequestID — опциональный идентификатор запроса движка.
	// Допустим в обеих формах.
	RequestID string
}

// Result — нормализованный конверт результата оркестрации.
// FlowID и Engine всегда повторяют запрос; остальные поля зависят
// от формы Output.
type Result struct {
	FlowID uuid.UUID
	Engine string
	Output
}

// MarshalJSON сериализует конверт в wire-контракт:
// {flow_id, engine, plan?|result?, logs?|duration_ms?, request_id?}.
// Поля чужой формы не попадают в JSON вовсе.
func (r Result) MarshalJSON() ([]byte, error) {
	envelope := map[string]any{
		"flow_id": r.FlowID,
		"engine":  r.Engine,
	}
	switch r.Kind {
	case KindOutcome:
		envelope["result"] = r.Result
		envelope["duration_ms"] = r.DurationMS
	default:
		envelope["plan"] = r.Plan
		envelope["logs"] = r.Logs
	}
	if r.RequestID != "" {
		envelope["request_id"] = r.RequestID
	}
	return json.Marshal(envelope)
}

// LogRecord — одна строка лога движка.
//
// Движки могут писать логи как сериализованные структурированные
// записи (JSON-объект с опциональными ts, node, msg). Каждая строка
// разбирается независимо: строка, не являющаяся JSON-объектом,
// деградирует до сырого текста — но никогда не отбрасывается.
type LogRecord struct {
	// Structured — true, если строка разобралась как JSON-объект.
	Structured bool `json:"structured"`

	// TS — временная метка записи (как есть, без разбора).
	TS string `json:"ts,omitempty"`

	// Node — узел графа, к которому относится запись.
	Node string `json:"node,omitempty"`

	// Msg — сообщение записи.
	Msg string `json:"msg,omitempty"`

	// Raw — исходная строка.
	Raw string `json:"raw"`
}

// ParseLogLine разбирает одну строку лога.
func ParseLogLine(line string) LogRecord {
	if !strings.HasPrefix(strings.TrimSpace(line), "{") {
		return LogRecord{Raw: line}
	}
	var structured struct {
		TS   string `json:"ts"`
		Node string `json:"node"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal([]byte(line), &structured); err != nil {
		return LogRecord{Raw: line}
	}
	return LogRecord{
		Structured: true,
		TS:         structured.TS,
		Node:       structured.Node,
		Msg:        structured.Msg,
		Raw:        line,
	}
}

// ParsedLogs разбирает все строки логов результата.
// Для формы KindOutcome возвращает nil.
func (r *Result) ParsedLogs() []LogRecord {
	if r.Kind != KindPlan || len(r.Logs) == 0 {
		return nil
	}
	records := make([]LogRecord, len(r.Logs))
	for i, line := range r.Logs {
		records[i] = ParseLogLine(line)
	}
	return records
}
