package api

import (
	"log/slog"

	"github.com/shaiso/Ensemble/internal/events"
	"github.com/shaiso/Ensemble/internal/orchestration"
	"github.com/shaiso/Ensemble/internal/store"
	"github.com/shaiso/Ensemble/internal/transfer"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	agents      store.Agents
	flows       store.Flows
	evaluations store.Evaluations
	pipeline    *transfer.Pipeline
	dispatcher  *orchestration.Dispatcher
	publisher   *events.Publisher
	logger      *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Agents      store.Agents
	Flows       store.Flows
	Evaluations store.Evaluations
	Pipeline    *transfer.Pipeline
	Dispatcher  *orchestration.Dispatcher

	// Publisher опционален: nil отключает публикацию событий.
	Publisher *events.Publisher

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		agents:      cfg.Agents,
		flows:       cfg.Flows,
		evaluations: cfg.Evaluations,
		pipeline:    cfg.Pipeline,
		dispatcher:  cfg.Dispatcher,
		publisher:   cfg.Publisher,
		logger:      logger,
	}
}
