// Package domain содержит основные сущности Ensemble.
//
// Включает:
//   - agent.go      — Agent (переиспользуемая единица поведения)
//   - flow.go       — Flow и Graph (граф ссылок на агентов)
//   - evaluation.go — Evaluation (append-only оценка выполнения)
//
// Сущности не содержат логики персистентности — за это отвечает
// internal/store. Поля структур — это wire-контракт API, имена
// JSON-тегов менять нельзя.
package domain
