package engine

import (
	"fmt"

	"github.com/kaskadlabs/kaskad/internal/domain"
)

// Strategy — политика выбора следующего шага из готовых к запуску.
//
// SelectNext получает текущий набор READY-шагов и возвращает один шаг
// для диспетчеризации или nil, если набор пуст. Стратегия не имеет
// побочных эффектов и из готового набора ничего не удаляет — этим
// занимается движок. Параллелизм достигается повторными вызовами
// SelectNext над сокращающимся набором, а не пакетной выдачей.
type Strategy interface {
	SelectNext(ready []*domain.Step) *domain.Step
}

// Имена стратегий в конфигурации запуска.
const (
	StrategyNone         = "none"
	StrategyBreadthFirst = "bfs"
	StrategyDepthFirst   = "dfs"
)

// NewStrategy создаёт стратегию по имени.
//
// Для "none" возвращает nil: движок в этом случае берёт шаги из
// очереди готовых в порядке FIFO. Уровни шагов вычисляются один раз
// при создании стратегии и при выполнении не пересчитываются.
func NewStrategy(name string, wf *domain.Workflow) (Strategy, error) {
	switch name {
	case StrategyNone, "":
		return nil, nil
	case StrategyBreadthFirst:
		return &breadthFirstStrategy{levels: computeLevels(wf)}, nil
	case StrategyDepthFirst:
		return &depthFirstStrategy{levels: computeLevels(wf)}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (expected none, bfs or dfs)", name)
	}
}

// breadthFirstStrategy выбирает готовый шаг с минимальным уровнем —
// самый мелкий в графе зависимостей.
type breadthFirstStrategy struct {
	levels map[string]int
}

func (s *breadthFirstStrategy) SelectNext(ready []*domain.Step) *domain.Step {
	var best *domain.Step
	for _, step := range ready {
		if best == nil {
			best = step
			continue
		}
		l, bl := s.levels[step.ID], s.levels[best.ID]
		if l < bl || (l == bl && step.ID < best.ID) {
			best = step
		}
	}
	return best
}

// depthFirstStrategy выбирает готовый шаг с максимальным уровнем —
// самый глубокий в графе зависимостей.
type depthFirstStrategy struct {
	levels map[string]int
}

func (s *depthFirstStrategy) SelectNext(ready []*domain.Step) *domain.Step {
	var best *domain.Step
	for _, step := range ready {
		if best == nil {
			best = step
			continue
		}
		l, bl := s.levels[step.ID], s.levels[best.ID]
		// При равных уровнях tie-break по меньшему ID, как и в bfs.
		if l > bl || (l == bl && step.ID < best.ID) {
			best = step
		}
	}
	return best
}

// computeLevels вычисляет уровень каждого шага: 0 для шагов без
// зависимостей, иначе 1 + максимум уровней зависимостей. Граф уже
// проверен на циклы, поэтому рекурсия конечна.
func computeLevels(wf *domain.Workflow) map[string]int {
	levels := make(map[string]int, wf.Size())
	visited := make(map[string]bool, wf.Size())

	var level func(id string) int
	level = func(id string) int {
		if visited[id] {
			return levels[id]
		}
		visited[id] = true

		step, _ := wf.Step(id)
		max := -1
		for _, depID := range step.DependsOn {
			if l := level(depID); l > max {
				max = l
			}
		}

		levels[id] = max + 1
		return levels[id]
	}

	for _, id := range wf.StepIDs() {
		level(id)
	}

	return levels
}
