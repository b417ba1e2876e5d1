package domain

// StepStatus — статус выполнения шага workflow.
//
// Жизненный цикл:
//
//	PENDING → READY → RUNNING → SUCCESS
//	                          ↘ FAILED  (при исчерпании retry-бюджета)
//	                          ↘ PENDING (неудача с оставшимися retry)
//	PENDING/READY → SKIPPED (каскад от упавшей зависимости или ложное условие)
type StepStatus string

const (
	// StepStatusPending — шаг создан, зависимости ещё не удовлетворены.
	StepStatusPending StepStatus = "PENDING"

	// StepStatusReady — все зависимости выполнены, шаг в очереди на запуск.
	StepStatusReady StepStatus = "READY"

	// StepStatusRunning — команда шага выполняется.
	StepStatusRunning StepStatus = "RUNNING"

	// StepStatusSuccess — шаг успешно завершён.
	StepStatusSuccess StepStatus = "SUCCESS"

	// StepStatusFailed — шаг завершился с ошибкой после всех retry.
	StepStatusFailed StepStatus = "FAILED"

	// StepStatusSkipped — шаг пропущен: упала зависимость или условие ложно.
	StepStatusSkipped StepStatus = "SKIPPED"
)

// IsTerminal возвращает true, если статус финальный.
//
// FAILED здесь всегда финальный: шаг с оставшимся retry-бюджетом
// движок возвращает в PENDING, статус FAILED он не получает.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StepStatusSuccess, StepStatusFailed, StepStatusSkipped:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление статуса.
func (s StepStatus) String() string {
	return string(s)
}
