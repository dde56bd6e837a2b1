// Package api реализует HTTP REST API.
//
// Структура:
//   - handler.go             — Handler и его зависимости
//   - routes.go              — регистрация маршрутов
//   - middleware.go          — Recovery, Logging, CORS
//   - response.go            — формат ответов и коды ошибок
//   - dto.go                 — request/response структуры
//   - agent_handler.go       — CRUD агентов
//   - flow_handler.go        — CRUD flows
//   - evaluation_handler.go  — создание и список оценок
//   - transfer_handler.go    — export / import / validate
//   - convert_handler.go     — конвертация Markdown в агента
//   - orchestrate_handler.go — запуск flow через движок
//
// Формат ответов: {"data": ...} для успеха,
// {"error": {"code": ..., "message": ...}} для ошибок.
package api
