package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Step — один шаг workflow.
//
// Структура шага (ID, команда, зависимости, условие, retry-политика)
// создаётся парсером и после валидации не меняется. Движок мутирует
// только Status и RetryCount в процессе выполнения.
type Step struct {
	// ID — уникальный идентификатор шага в рамках workflow.
	// Используется в depends_on и в условиях (status_<id>).
	ID string

	// Command — команда для внешнего исполнителя. Для движка это
	// непрозрачная строка.
	Command string

	// DependsOn — ID шагов, от которых зависит этот шаг.
	// Шаг становится READY только когда все зависимости в SUCCESS.
	DependsOn []string

	// Condition — условие запуска вида "status_<id> == '<значение>'".
	// Пустая строка — шаг выполняется безусловно.
	Condition string

	// Retry — политика повторных попыток при неудаче.
	// nil — шаг падает с первой неудачной попытки.
	Retry *RetryPolicy

	// ParallelWith — подсказка из определения workflow о том, с какими
	// шагами этот может выполняться параллельно. На порядок выполнения
	// не влияет, порядок задают только зависимости.
	ParallelWith []string

	// Status — текущий статус шага.
	Status StepStatus

	// RetryCount — количество уже использованных повторных попыток.
	RetryCount int
}

// NewStep создаёт шаг в статусе PENDING.
func NewStep(id, command string) *Step {
	return &Step{
		ID:      id,
		Command: command,
		Status:  StepStatusPending,
	}
}

// MaxAttempts возвращает общее допустимое число попыток запуска шага.
func (s *Step) MaxAttempts() int {
	if s.Retry == nil {
		return 1
	}
	return s.Retry.MaxRetries + 1
}

// CanRetry проверяет, остались ли у шага повторные попытки.
func (s *Step) CanRetry() bool {
	return s.Retry != nil && s.RetryCount < s.Retry.MaxRetries
}

// RetryPolicy — политика повторных попыток шага.
type RetryPolicy struct {
	// MaxRetries — максимум автоматических повторов после первой
	// неудачной попытки. Всего шаг запускается не более MaxRetries+1 раз.
	MaxRetries int
}

// retryPrefix — префикс retry-политики в поле on_failure.
const retryPrefix = "retry:"

// ParseRetryPolicy разбирает значение on_failure из определения workflow.
//
// Формат: "retry: N" (пробелы вокруг N допустимы). Любое другое непустое
// значение не является retry-политикой и возвращает (nil, nil) — шаг
// падает с первой неудачи. Нечисловой счётчик повторов — ошибка разбора.
func ParseRetryPolicy(onFailure string) (*RetryPolicy, error) {
	if !strings.HasPrefix(onFailure, retryPrefix) {
		return nil, nil
	}

	raw := strings.TrimSpace(strings.TrimPrefix(onFailure, retryPrefix))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid retry count %q in on_failure", raw)
	}
	if n < 0 {
		return nil, fmt.Errorf("negative retry count %d in on_failure", n)
	}

	return &RetryPolicy{MaxRetries: n}, nil
}
