package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shaiso/Ensemble/internal/codec"
	"github.com/shaiso/Ensemble/internal/graph"
	"github.com/shaiso/Ensemble/internal/orchestration"
	"github.com/shaiso/Ensemble/internal/store"
	"github.com/shaiso/Ensemble/internal/transfer"
)

// ErrorCode — код ошибки API.
type ErrorCode string

const (
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidGraph     ErrorCode = "INVALID_GRAPH"
	ErrCodeUnsupportedEng   ErrorCode = "UNSUPPORTED_ENGINE"
	ErrCodeEngineError      ErrorCode = "ENGINE_ERROR"
	ErrCodeTooLarge         ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse — структура ответа с ошибкой.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail — детали ошибки. Errors заполняется для ошибок
// валидации: каждое нарушение отдельной строкой.
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Errors  []string  `json:"errors,omitempty"`
}

// DataResponse — структура успешного ответа.
type DataResponse struct {
	Data any `json:"data"`
}

// ListResponse — структура ответа со списком.
type ListResponse struct {
	Data  any `json:"data"`
	Total int `json:"total,omitempty"`
}

// JSON отправляет JSON ответ.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Success отправляет успешный ответ с данными.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, DataResponse{Data: data})
}

// Created отправляет ответ о создании ресурса.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, DataResponse{Data: data})
}

// NoContent отправляет ответ без тела (204).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// List отправляет ответ со списком.
func List(w http.ResponseWriter, data any, total int) {
	JSON(w, http.StatusOK, ListResponse{Data: data, Total: total})
}

// Error отправляет ответ с ошибкой.
func Error(w http.ResponseWriter, status int, code ErrorCode, message string) {
	JSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// ValidationFailed отправляет ошибку 422 со списком нарушений.
func ValidationFailed(w http.ResponseWriter, code ErrorCode, message string, errs []string) {
	JSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Errors:  errs,
		},
	})
}

// BadRequest отправляет ошибку 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound отправляет ошибку 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// InternalError отправляет ошибку 500.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// HandleStoreError преобразует ошибку store в HTTP ответ.
// Возвращает true, если ошибка обработана.
func HandleStoreError(w http.ResponseWriter, logger *slog.Logger, err error, notFoundMsg string) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, store.ErrNotFound) {
		NotFound(w, notFoundMsg)
		return true
	}

	if errors.Is(err, store.ErrUnavailable) {
		logger.Error("store unavailable", "error", err)
		Error(w, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "store unavailable")
		return true
	}

	InternalError(w, logger, err)
	return true
}

// HandleDomainError преобразует доменные ошибки пайплайнов и
// оркестрации в HTTP ответ. Возвращает true, если ошибка обработана.
func HandleDomainError(w http.ResponseWriter, logger *slog.Logger, err error) bool {
	if err == nil {
		return false
	}

	var gErr *graph.ValidationError
	if errors.As(err, &gErr) {
		ValidationFailed(w, ErrCodeInvalidGraph, "invalid graph", gErr.Messages())
		return true
	}

	var tErr *transfer.ValidationError
	if errors.As(err, &tErr) {
		ValidationFailed(w, ErrCodeValidationFailed, "validation failed", tErr.Errors)
		return true
	}

	switch {
	case errors.Is(err, codec.ErrDecode), errors.Is(err, codec.ErrUnsupportedFormat):
		BadRequest(w, err.Error())
	case errors.Is(err, transfer.ErrTooLarge):
		Error(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, err.Error())
	case errors.Is(err, transfer.ErrTooManyItems):
		Error(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, err.Error())
	case errors.Is(err, orchestration.ErrUnsupportedEngine):
		Error(w, http.StatusBadRequest, ErrCodeUnsupportedEng, err.Error())
	case errors.Is(err, orchestration.ErrEngineFailed):
		Error(w, http.StatusBadGateway, ErrCodeEngineError, err.Error())
	default:
		return HandleStoreError(w, logger, err, "not found")
	}
	return true
}
