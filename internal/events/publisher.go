package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventType — тип события.
type EventType string

// Типы событий.
const (
	EventAgentsImported EventType = "agents.imported"
	EventFlowsImported  EventType = "flows.imported"
	EventRunCompleted   EventType = "run.completed"
)

// Event — событие для публикации.
type Event struct {
	// ID — уникальный идентификатор события.
	ID string `json:"id"`

	// Type — тип события.
	Type EventType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// ImportedPayload — payload событий *.imported.
type ImportedPayload struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// RunCompletedPayload — payload события run.completed.
type RunCompletedPayload struct {
	FlowID uuid.UUID `json:"flow_id"`
	Engine string    `json:"engine"`
	Kind   string    `json:"kind"`
}

// Publisher публикует события в RabbitMQ.
//
// nil-Publisher валиден: все методы публикации на nil-получателе
// молча возвращают nil. Это позволяет запускать приложение без
// брокера, не протаскивая проверки через вызывающий код.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// publish сериализует событие и публикует его в exchange.
func (p *Publisher) publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, event *Event) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // событие переживёт рестарт RabbitMQ
				MessageId:    event.ID,
				Timestamp:    event.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published event",
			"exchange", exchange,
			"routing_key", routingKey,
			"event_id", event.ID,
			"type", event.Type,
		)

		return nil
	})
}

// PublishAgentsImported публикует событие об импорте пачки агентов.
func (p *Publisher) PublishAgentsImported(ctx context.Context, ids []uuid.UUID) error {
	return p.publish(ctx, ExchangeEntities, RoutingKeyAgentsImported, newEvent(EventAgentsImported, importedPayload(ids)))
}

// PublishFlowsImported публикует событие об импорте пачки flows.
func (p *Publisher) PublishFlowsImported(ctx context.Context, ids []uuid.UUID) error {
	return p.publish(ctx, ExchangeEntities, RoutingKeyFlowsImported, newEvent(EventFlowsImported, importedPayload(ids)))
}

// PublishRunCompleted публикует событие о завершённом запуске.
func (p *Publisher) PublishRunCompleted(ctx context.Context, flowID uuid.UUID, engine, kind string) error {
	return p.publish(ctx, ExchangeRuns, RoutingKeyRunCompleted, newEvent(EventRunCompleted, RunCompletedPayload{
		FlowID: flowID,
		Engine: engine,
		Kind:   kind,
	}))
}

func newEvent(t EventType, payload any) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

func importedPayload(ids []uuid.UUID) ImportedPayload {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return ImportedPayload{Count: len(ids), IDs: strs}
}
