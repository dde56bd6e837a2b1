// Package transfer реализует пайплайн импорта/экспорта сущностей.
//
// Импорт — это validate-then-commit: декодирование через codec,
// затем валидация каждого элемента пачки с накоплением всех ошибок,
// и только при полном отсутствии ошибок — атомарный коммит в store.
// Частичный успех запрещён: пачка с хотя бы одним невалидным
// элементом не создаёт ничего.
//
// Validate — тот же пайплайн без коммита: без побочных эффектов,
// идемпотентен. Export — только чтение; от содержимого сущностей
// он не падает, только от недоступности store.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shaiso/Ensemble/internal/codec"
	"github.com/shaiso/Ensemble/internal/domain"
	"github.com/shaiso/Ensemble/internal/graph"
	"github.com/shaiso/Ensemble/internal/store"
)

// Kind — вид импортируемых сущностей.
type Kind string

// Виды сущностей.
const (
	KindAgents Kind = "agents"
	KindFlows  Kind = "flows"
)

// Limits — лимиты импорта. Ноль отключает соответствующий лимит.
type Limits struct {
	// MaxItems — максимум элементов в одной пачке.
	MaxItems int

	// MaxFileBytes — максимальный размер загружаемого файла.
	MaxFileBytes int
}

// DefaultLimits — лимиты по умолчанию.
func DefaultLimits() Limits {
	return Limits{MaxItems: 500, MaxFileBytes: 1 << 20}
}

// LimitsFromEnv читает лимиты из IMPORT_MAX_ITEMS и
// IMPORT_MAX_FILE_BYTES, падая обратно на значения по умолчанию.
func LimitsFromEnv() Limits {
	limits := DefaultLimits()
	if v, err := strconv.Atoi(os.Getenv("IMPORT_MAX_ITEMS")); err == nil {
		limits.MaxItems = v
	}
	if v, err := strconv.Atoi(os.Getenv("IMPORT_MAX_FILE_BYTES")); err == nil {
		limits.MaxFileBytes = v
	}
	return limits
}

// Pipeline — пайплайн импорта/экспорта.
type Pipeline struct {
	agents store.Agents
	flows  store.Flows
	limits Limits
}

// New создаёт Pipeline.
func New(agents store.Agents, flows store.Flows, limits Limits) *Pipeline {
	return &Pipeline{agents: agents, flows: flows, limits: limits}
}

// Report — результат проверки без коммита.
type Report struct {
	// OK — true, если пачка прошла бы импорт.
	OK bool `json:"ok"`

	// Errors — все найденные проблемы.
	Errors []string `json:"errors"`

	// Message — краткое описание исхода.
	Message string `json:"message,omitempty"`
}

// Validate проверяет текст без записи в store.
// Ошибки декодирования и валидации возвращаются в Report,
// а не как error: вызывающая сторона должна показать каждую.
// Повторный вызов с тем же входом даёт тот же результат.
func (p *Pipeline) Validate(ctx context.Context, text []byte, f codec.Format, kind Kind) Report {
	switch kind {
	case KindAgents:
		agents, err := codec.DecodeAgents(text, f)
		if err != nil {
			return Report{OK: false, Errors: []string{err.Error()}, Message: "decode failed"}
		}
		// Лимиты пачки входят в проверку: OK обещает, что импорт пройдёт.
		if err := p.checkCount(len(agents)); err != nil {
			return Report{OK: false, Errors: []string{err.Error()}, Message: "limit exceeded"}
		}
		if errs := p.checkAgents(agents); len(errs) > 0 {
			return Report{OK: false, Errors: errs, Message: "validation failed"}
		}
	case KindFlows:
		flows, err := codec.DecodeFlows(text, f)
		if err != nil {
			return Report{OK: false, Errors: []string{err.Error()}, Message: "decode failed"}
		}
		if err := p.checkCount(len(flows)); err != nil {
			return Report{OK: false, Errors: []string{err.Error()}, Message: "limit exceeded"}
		}
		errs, err := p.checkFlows(ctx, flows)
		if err != nil {
			return Report{OK: false, Errors: []string{err.Error()}, Message: "store unavailable"}
		}
		if len(errs) > 0 {
			return Report{OK: false, Errors: errs, Message: "validation failed"}
		}
	default:
		return Report{OK: false, Errors: []string{fmt.Sprintf("unknown kind: %s", kind)}, Message: "unknown kind"}
	}
	return Report{OK: true, Errors: []string{}}
}

// ImportAgents декодирует, валидирует и атомарно коммитит пачку
// агентов. При любой ошибке валидации не создаётся ничего.
func (p *Pipeline) ImportAgents(ctx context.Context, text []byte, f codec.Format) ([]domain.Agent, error) {
	agents, err := codec.DecodeAgents(text, f)
	if err != nil {
		return nil, err
	}
	if err := p.checkCount(len(agents)); err != nil {
		return nil, err
	}
	if errs := p.checkAgents(agents); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	batch := make([]*domain.Agent, len(agents))
	for i := range agents {
		resetAgentServerFields(&agents[i])
		batch[i] = &agents[i]
	}
	if err := p.agents.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("commit agents: %w", err)
	}
	return agents, nil
}

// ImportFlows декодирует, валидирует и атомарно коммитит пачку flows.
func (p *Pipeline) ImportFlows(ctx context.Context, text []byte, f codec.Format) ([]domain.Flow, error) {
	flows, err := codec.DecodeFlows(text, f)
	if err != nil {
		return nil, err
	}
	if err := p.checkCount(len(flows)); err != nil {
		return nil, err
	}
	errs, err := p.checkFlows(ctx, flows)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	batch := make([]*domain.Flow, len(flows))
	for i := range flows {
		resetFlowServerFields(&flows[i])
		batch[i] = &flows[i]
	}
	if err := p.flows.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("commit flows: %w", err)
	}
	return flows, nil
}

// ImportAgentsFile — как ImportAgents, но для загруженного файла:
// дополнительно проверяются размер и кодировка. Формат всегда
// объявляется явно, по расширению он не угадывается.
func (p *Pipeline) ImportAgentsFile(ctx context.Context, data []byte, f codec.Format) ([]domain.Agent, error) {
	if err := p.checkFile(data); err != nil {
		return nil, err
	}
	return p.ImportAgents(ctx, data, f)
}

// ImportFlowsFile — как ImportFlows, но для загруженного файла.
func (p *Pipeline) ImportFlowsFile(ctx context.Context, data []byte, f codec.Format) ([]domain.Flow, error) {
	if err := p.checkFile(data); err != nil {
		return nil, err
	}
	return p.ImportFlows(ctx, data, f)
}

// ExportAgents сериализует всех агентов. Только чтение.
func (p *Pipeline) ExportAgents(ctx context.Context, f codec.Format) ([]byte, error) {
	agents, err := p.agents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return codec.EncodeAgents(agents, f)
}

// ExportFlows сериализует все flows. Только чтение.
func (p *Pipeline) ExportFlows(ctx context.Context, f codec.Format) ([]byte, error) {
	flows, err := p.flows.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	return codec.EncodeFlows(flows, f)
}

// checkAgents валидирует каждого агента пачки, накапливая ошибки.
func (p *Pipeline) checkAgents(agents []domain.Agent) []string {
	var errs []string
	for i := range agents {
		for _, msg := range agents[i].Validate() {
			errs = append(errs, fmt.Sprintf("agents[%d]: %s", i, msg))
		}
	}
	return errs
}

// checkFlows валидирует каждый flow пачки: поля плюс структура
// графа против известных агентов.
func (p *Pipeline) checkFlows(ctx context.Context, flows []domain.Flow) ([]string, error) {
	known, err := p.knownAgentIDs(ctx)
	if err != nil {
		return nil, err
	}

	var errs []string
	for i := range flows {
		for _, msg := range flows[i].Validate() {
			errs = append(errs, fmt.Sprintf("flows[%d]: %s", i, msg))
		}
		if err := graph.ValidateForCommit(flows[i].Graph, known); err != nil {
			var vErr *graph.ValidationError
			if errors.As(err, &vErr) {
				for _, msg := range vErr.Messages() {
					errs = append(errs, fmt.Sprintf("flows[%d]: %s", i, msg))
				}
			} else {
				errs = append(errs, fmt.Sprintf("flows[%d]: %s", i, err))
			}
		}
	}
	return errs, nil
}

// knownAgentIDs собирает множество ID существующих агентов.
func (p *Pipeline) knownAgentIDs(ctx context.Context) (map[string]bool, error) {
	agents, err := p.agents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	known := make(map[string]bool, len(agents))
	for _, a := range agents {
		known[a.ID.String()] = true
	}
	return known, nil
}

// checkCount проверяет лимит размера пачки.
func (p *Pipeline) checkCount(n int) error {
	if p.limits.MaxItems > 0 && n > p.limits.MaxItems {
		return fmt.Errorf("%w: %d items, limit %d", ErrTooManyItems, n, p.limits.MaxItems)
	}
	return nil
}

// checkFile проверяет размер и кодировку загруженного файла.
func (p *Pipeline) checkFile(data []byte) error {
	if p.limits.MaxFileBytes > 0 && len(data) > p.limits.MaxFileBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), p.limits.MaxFileBytes)
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("%w: file must be utf-8 encoded", codec.ErrDecode)
	}
	return nil
}

// resetAgentServerFields очищает поля, которые назначает store.
// Импорт всегда создаёт новые записи: принесённые id и временные
// метки не переживают импорт.
func resetAgentServerFields(a *domain.Agent) {
	a.ID = uuid.Nil
	a.CreatedAt = time.Time{}
	a.UpdatedAt = time.Time{}
}

// resetFlowServerFields очищает поля, которые назначает store.
func resetFlowServerFields(f *domain.Flow) {
	f.ID = uuid.Nil
	f.CreatedAt = time.Time{}
	f.UpdatedAt = time.Time{}
}
