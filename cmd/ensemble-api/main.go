package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Ensemble/internal/api"
	"github.com/shaiso/Ensemble/internal/events"
	"github.com/shaiso/Ensemble/internal/orchestration"
	"github.com/shaiso/Ensemble/internal/store"
	"github.com/shaiso/Ensemble/internal/telemetry"
	"github.com/shaiso/Ensemble/internal/transfer"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting ensemble-api")

	// Выбираем хранилище: memory по умолчанию, postgres при
	// ENSEMBLE_STORE=postgres (подключение через DB_URL).
	var (
		agents      store.Agents
		flows       store.Flows
		evaluations store.Evaluations
	)
	switch os.Getenv("ENSEMBLE_STORE") {
	case "postgres":
		pool, err := store.NewPool(context.Background())
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("connected to database")

		agents = store.NewPgAgents(pool)
		flows = store.NewPgFlows(pool)
		evaluations = store.NewPgEvaluations(pool)
	default:
		logger.Info("using in-memory store")
		agents = store.NewMemoryAgents()
		flows = store.NewMemoryFlows()
		evaluations = store.NewMemoryEvaluations()
	}

	// Publisher опционален: без RABBITMQ_URL события не публикуются.
	var publisher *events.Publisher
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		conn, err := events.NewConnection(url, logger)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		if err := events.SetupTopology(context.Background(), conn); err != nil {
			logger.Error("failed to set up topology", "error", err)
			os.Exit(1)
		}
		publisher = events.NewPublisher(conn, logger)
	}

	handler := api.NewHandler(api.Config{
		Agents:      agents,
		Flows:       flows,
		Evaluations: evaluations,
		Pipeline:    transfer.New(agents, flows, transfer.LimitsFromEnv()),
		Dispatcher:  orchestration.NewDispatcher(flows, agents, orchestration.DefaultRegistry(), logger),
		Publisher:   publisher,
		Logger:      logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	// HTTP сервер с graceful shutdown
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
