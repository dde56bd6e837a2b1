package domain

import (
	"time"

	"github.com/google/uuid"
)

// Evaluation — оценка прошедшего выполнения flow.
//
// Evaluations append-only: создаются, но никогда не изменяются
// и не удаляются.
type Evaluation struct {
	// ID — уникальный идентификатор оценки. Назначается store.
	ID uuid.UUID `json:"id,omitzero"`

	// FlowID — ссылка на оценённый flow.
	FlowID uuid.UUID `json:"flow_id"`

	// Score — числовая оценка. Ожидаемый диапазон 0–100,
	// но значение не ограничивается.
	Score float64 `json:"score"`

	// Feedback — текстовый комментарий.
	Feedback string `json:"feedback,omitempty"`

	// CreatedAt — время создания. Назначается store.
	CreatedAt time.Time `json:"created_at,omitzero"`
}
