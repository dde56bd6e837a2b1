// Package orchestration направляет запрос выполнения flow во внешний
// движок и нормализует его ответ.
//
// Структура:
//   - dispatcher.go — Dispatcher: resolve flow/agents → движок → Result
//   - engine.go     — интерфейс Engine и реестр движков
//   - result.go     — конверт результата (tagged union) и разбор логов
//   - errors.go     — ошибки оркестрации
//   - crewai.go     — адаптер движка crewai
//   - robotgreen.go — адаптер движка robotgreen
//   - fake.go       — детерминированный движок для тестов и демо
//
// Dispatcher ничего не пишет в store: выполнение и персистентность
// разведены, медленный движок не блокирует операции над сущностями.
// Внутреннее планирование движков — вне зоны ответственности этого
// пакета: адаптер трактуется как чёрный ящик, возвращающий одну из
// двух форм результата.
package orchestration
