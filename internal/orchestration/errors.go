package orchestration

import "errors"

// Ошибки оркестрации.
var (
	// ErrUnsupportedEngine — движок не из фиксированного множества.
	ErrUnsupportedEngine = errors.New("unsupported engine")

	// ErrEngineFailed — внешний движок завершился с ошибкой.
	// Терминальная ошибка запроса: диспетчер не ретраит — повторные
	// попытки внутренних шагов принадлежат самому адаптеру.
	ErrEngineFailed = errors.New("engine failed")
)
