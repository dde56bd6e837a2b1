package transfer

import (
	"errors"
	"strings"
)

// Ошибки пайплайна импорта.
var (
	// ErrValidationFailed — хотя бы один элемент пачки не прошёл
	// валидацию; пачка не закоммичена.
	ErrValidationFailed = errors.New("validation failed")

	// ErrTooLarge — загруженный файл превышает лимит размера.
	ErrTooLarge = errors.New("payload too large")

	// ErrTooManyItems — пачка превышает лимит количества элементов.
	ErrTooManyItems = errors.New("too many items")
)

// ValidationError — полный список нарушений по пачке.
// Несёт каждую проблему, а не только первую: вызывающая сторона
// должна отобразить весь список.
type ValidationError struct {
	Errors []string
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// Unwrap позволяет errors.Is(err, ErrValidationFailed).
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
