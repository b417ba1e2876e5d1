package engine

import (
	"strings"

	"github.com/kaskadlabs/kaskad/internal/domain"
)

// Префиксы ссылок в условиях. Обе формы разрешаются в статус шага:
// отдельного понятия "результат" в модели данных нет.
const (
	statusRefPrefix = "status_"
	resultRefPrefix = "result_"
)

// EvaluateCondition вычисляет условие запуска шага по текущему
// состоянию графа.
//
// Грамматика: "<ссылка> == <литерал>", где ссылка — status_<id> или
// result_<id>, а литерал — голый или взятый в кавычки токен. Сравнение
// текстового имени статуса регистронезависимое.
//
// Пустое условие истинно. Выражение, не разбирающееся ровно в такую
// двухоперандную проверку равенства (в том числе ссылка на
// несуществующий шаг), тоже считается истинным: некорректное условие
// намеренно не останавливает выполнение. Функция чистая — не меняет
// граф и при неизменном состоянии возвращает один и тот же результат.
func EvaluateCondition(condition string, wf *domain.Workflow) bool {
	if condition == "" {
		return true
	}

	// "status_a=='SUCCESS'" и "status_a == 'SUCCESS'" разбираются одинаково.
	normalized := strings.ReplaceAll(condition, "==", " == ")
	parts := strings.Fields(normalized)
	if len(parts) < 3 || parts[1] != "==" {
		return true
	}

	ref := parts[0]
	literal := strings.Trim(parts[2], `'"`)

	var stepID string
	switch {
	case strings.HasPrefix(ref, statusRefPrefix):
		stepID = strings.TrimPrefix(ref, statusRefPrefix)
	case strings.HasPrefix(ref, resultRefPrefix):
		stepID = strings.TrimPrefix(ref, resultRefPrefix)
	default:
		return true
	}

	step, ok := wf.Step(stepID)
	if !ok {
		return true
	}

	return strings.EqualFold(step.Status.String(), literal)
}
