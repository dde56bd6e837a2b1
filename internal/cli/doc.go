// Package cli реализует инструмент командной строки Ensemble.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Ensemble API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для управления агентами, flows и оценками,
// импорта/экспорта и запуска оркестрации.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Ensemble API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	agents, err := client.ListAgents()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: ensemble agent list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - agent: list, create, show, update, delete, convert
//   - flow: list, create, show, update, delete
//   - eval: list, create
//   - export / import / validate: перенос agents и flows
//   - run: запуск flow через движок оркестрации
//
// Каждая группа создаётся через фабричную функцию (NewAgentCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
