package engine

import (
	"fmt"

	"github.com/kaskadlabs/kaskad/internal/domain"
)

// Validate выполняет полную валидацию workflow перед выполнением.
//
// Проверяет:
//   - наличие шагов
//   - отсутствие циклов в зависимостях
//
// Уникальность ID и существование зависимостей гарантирует сам граф
// (AddStep/AddDependency), поэтому здесь повторно не проверяются.
// Движок полагается на валидированный граф и циклы во время
// выполнения не ищет.
func Validate(wf *domain.Workflow) error {
	if wf == nil || wf.Size() == 0 {
		return ErrEmptySteps
	}
	return detectCycles(wf)
}

// Цвета обхода для поиска циклов.
type visitColor int

const (
	colorUnvisited visitColor = iota // шаг ещё не посещался
	colorInProgress                  // шаг в стеке текущего обхода
	colorDone                        // шаг полностью обработан
)

// detectCycles ищет цикл в отношении зависимостей обходом в глубину
// с трёхцветной раскраской. Повторный заход в шаг, который ещё в стеке
// текущего обхода, означает цикл.
//
// Обходятся все шаги, а не только достижимые из корней: граф может
// состоять из нескольких несвязанных подграфов.
func detectCycles(wf *domain.Workflow) error {
	colors := make(map[string]visitColor, wf.Size())

	var visit func(id string) error
	visit = func(id string) error {
		switch colors[id] {
		case colorDone:
			return nil
		case colorInProgress:
			return NewValidationError(id, "depends_on",
				fmt.Sprintf("cycle detected involving step %s", id), ErrCyclicDependency)
		}

		colors[id] = colorInProgress

		step, _ := wf.Step(id)
		for _, depID := range step.DependsOn {
			if err := visit(depID); err != nil {
				return err
			}
		}

		colors[id] = colorDone
		return nil
	}

	// Порядок StepIDs детерминирован, поэтому при нескольких циклах
	// ошибка всегда указывает на один и тот же шаг.
	for _, id := range wf.StepIDs() {
		if err := visit(id); err != nil {
			return err
		}
	}

	return nil
}
