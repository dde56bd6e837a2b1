// Package store содержит хранилище сущностей.
//
// Структура:
//   - store.go    — интерфейсы Agents, Flows, Evaluations и patch-типы
//   - errors.go   — общие ошибки хранилища
//   - memory.go   — in-memory реализация (тесты, локальная разработка)
//   - postgres.go — реализация на PostgreSQL (pgx)
//   - db.go       — создание пула соединений
//
// Store — единственный владелец идентификаторов и временных меток:
// Create назначает id, created_at, updated_at; Update обновляет
// только updated_at. Записи по одному id сериализуются (нет lost
// updates при конкурентных Update).
package store
