package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Agent — именованная, переиспользуемая единица поведения.
//
// Агент описывает роль, цель и предысторию, опционально — набор
// инструментов и схемы входных/выходных артефактов. Агент сам по себе
// ничего не выполняет: его интерпретирует внешний движок оркестрации.
type Agent struct {
	// ID — уникальный идентификатор агента. Назначается store при
	// создании. Нулевой UUID означает черновик (ещё не сохранён).
	ID uuid.UUID `json:"id,omitzero"`

	// Name — имя агента. Обязательное.
	Name string `json:"name"`

	// Role — роль агента (например, "researcher", "writer"). Обязательное.
	Role string `json:"role"`

	// Goal — цель агента. Markdown. Обязательное.
	Goal string `json:"goal"`

	// Backstory — предыстория агента. Markdown. Обязательное.
	Backstory string `json:"backstory"`

	// Tools — упорядоченный список инструментов. Может быть пустым,
	// дубликаты допускаются.
	Tools []string `json:"tools,omitempty"`

	// InputArtifacts — произвольная схема входных артефактов.
	// nil означает "не задано" — в пустой объект не приводится.
	InputArtifacts map[string]any `json:"input_artifacts,omitempty"`

	// OutputArtifacts — произвольная схема выходных артефактов.
	OutputArtifacts map[string]any `json:"output_artifacts,omitempty"`

	// CreatedAt — время создания. Назначается store.
	CreatedAt time.Time `json:"created_at,omitzero"`

	// UpdatedAt — время последнего обновления. Назначается store.
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// IsDraft возвращает true, если агент ещё не сохранён (нет ID).
func (a *Agent) IsDraft() bool {
	return a.ID == uuid.Nil
}

// Validate проверяет обязательные поля агента.
// Возвращает список всех нарушений, а не только первое.
func (a *Agent) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(a.Role) == "" {
		errs = append(errs, "role is required")
	}
	if strings.TrimSpace(a.Goal) == "" {
		errs = append(errs, "goal is required")
	}
	if strings.TrimSpace(a.Backstory) == "" {
		errs = append(errs, "backstory is required")
	}
	return errs
}
