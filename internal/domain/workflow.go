package domain

import (
	"errors"
	"fmt"
)

// Ошибки построения графа workflow.
var (
	// ErrDuplicateStep — шаг с таким ID уже есть в workflow.
	ErrDuplicateStep = errors.New("duplicate step ID")

	// ErrUnknownStep — ссылка на несуществующий шаг.
	ErrUnknownStep = errors.New("unknown step ID")
)

// Workflow — граф шагов: таблица шагов по ID плюс обратный индекс
// зависимостей (шаг → шаги, которые от него зависят).
//
// Шаги хранятся в таблице по ID, рёбра — отдельными списками ID,
// без указателей между шагами. Порядок вставки сохраняется: Steps()
// обходит шаги детерминированно, что даёт воспроизводимое планирование.
//
// Workflow сам по себе не потокобезопасен: в параллельном режиме
// единственным владельцем графа выступает движок и защищает его
// своим мьютексом.
type Workflow struct {
	// Name — имя workflow из определения.
	Name string

	steps      map[string]*Step
	order      []string            // ID шагов в порядке вставки
	dependents map[string][]string // обратный индекс: ID → зависимые ID
}

// NewWorkflow создаёт пустой workflow.
func NewWorkflow(name string) *Workflow {
	return &Workflow{
		Name:       name,
		steps:      make(map[string]*Step),
		dependents: make(map[string][]string),
	}
}

// AddStep добавляет шаг. Возвращает ошибку, если ID уже занят.
func (w *Workflow) AddStep(step *Step) error {
	if _, ok := w.steps[step.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateStep, step.ID)
	}

	w.steps[step.ID] = step
	w.order = append(w.order, step.ID)
	w.dependents[step.ID] = nil
	return nil
}

// AddDependency добавляет ребро: шаг dependentID зависит от dependencyID.
//
// Оба шага обязаны существовать — висячие ссылки в графе недопустимы,
// при отсутствии любого из концов возвращается ErrUnknownStep.
func (w *Workflow) AddDependency(dependentID, dependencyID string) error {
	dependent, ok := w.steps[dependentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, dependentID)
	}
	if _, ok := w.steps[dependencyID]; !ok {
		return fmt.Errorf("%w: step %s depends on %s", ErrUnknownStep, dependentID, dependencyID)
	}

	dependent.DependsOn = append(dependent.DependsOn, dependencyID)
	w.dependents[dependencyID] = append(w.dependents[dependencyID], dependentID)
	return nil
}

// Step возвращает шаг по ID.
func (w *Workflow) Step(id string) (*Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

// Steps возвращает все шаги в порядке вставки.
func (w *Workflow) Steps() []*Step {
	steps := make([]*Step, 0, len(w.order))
	for _, id := range w.order {
		steps = append(steps, w.steps[id])
	}
	return steps
}

// StepIDs возвращает ID всех шагов в порядке вставки.
func (w *Workflow) StepIDs() []string {
	ids := make([]string, len(w.order))
	copy(ids, w.order)
	return ids
}

// Dependents возвращает ID шагов, напрямую зависящих от данного.
func (w *Workflow) Dependents(id string) []string {
	return w.dependents[id]
}

// Size возвращает количество шагов.
func (w *Workflow) Size() int {
	return len(w.steps)
}
