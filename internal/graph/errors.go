package graph

import (
	"errors"
	"strings"
)

// Ошибки валидации графа.
var (
	// ErrInvalidGraph — граф не прошёл валидацию.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrEmptyNodes — граф не содержит узлов.
	ErrEmptyNodes = errors.New("graph has no nodes")

	// ErrUnknownAgent — узел ссылается на несуществующего агента.
	ErrUnknownAgent = errors.New("node references unknown agent")

	// ErrDuplicateNode — несколько узлов с одинаковым ID.
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrDanglingEdge — ребро ссылается на несуществующий узел.
	ErrDanglingEdge = errors.New("edge references unknown node")
)

// Violation — одно нарушение структуры графа.
type Violation struct {
	// Message — человекочитаемое описание нарушения.
	Message string

	// Err — базовая ошибка (одна из сентинелей выше).
	Err error
}

// ValidationError — результат неуспешной валидации.
// Несёт все нарушения сразу, а не только первое: вызывающая
// сторона должна показать каждую проблему.
type ValidationError struct {
	Violations []Violation
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	msgs := e.Messages()
	return "invalid graph: " + strings.Join(msgs, "; ")
}

// Unwrap позволяет errors.Is(err, ErrInvalidGraph).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidGraph
}

// Messages возвращает описания всех нарушений.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return msgs
}

// Has проверяет, есть ли среди нарушений указанная базовая ошибка.
func (e *ValidationError) Has(target error) bool {
	for _, v := range e.Violations {
		if errors.Is(v.Err, target) {
			return true
		}
	}
	return false
}
