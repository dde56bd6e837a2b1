package store

import "errors"

// Общие ошибки хранилища.
var (
	// ErrNotFound — запись с указанным id не найдена.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable — хранилище недоступно (проблема с соединением,
	// а не с данными).
	ErrUnavailable = errors.New("store unavailable")
)
