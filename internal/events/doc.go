// Package events публикует доменные события в RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация событий
//
// Типы событий:
//   - agents.imported — пачка агентов импортирована
//   - flows.imported  — пачка flows импортирована
//   - run.completed   — запуск flow завершён
//
// Exchanges:
//   - ensemble.entities — события над сущностями
//   - ensemble.runs     — события запусков
//
// Публикация — best effort: события уведомляют внешних потребителей,
// но ни одна операция API от них не зависит. Publisher допускает
// nil-получателя: без RABBITMQ_URL приложение работает молча.
package events
