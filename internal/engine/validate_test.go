package engine

import (
	"errors"
	"testing"

	"github.com/kaskadlabs/kaskad/internal/domain"
)

// buildGraph строит workflow из пар {id, зависимости}.
func buildGraph(t *testing.T, steps map[string][]string, order []string) *domain.Workflow {
	t.Helper()

	wf := domain.NewWorkflow("test")
	for _, id := range order {
		if err := wf.AddStep(domain.NewStep(id, "echo "+id)); err != nil {
			t.Fatalf("add step %s: %v", id, err)
		}
	}
	for _, id := range order {
		for _, dep := range steps[id] {
			if err := wf.AddDependency(id, dep); err != nil {
				t.Fatalf("add dependency %s -> %s: %v", id, dep, err)
			}
		}
	}
	return wf
}

func TestValidate_Acyclic(t *testing.T) {
	// Ромб: a → b → d, a → c → d.
	wf := buildGraph(t, map[string][]string{
		"b": {"a"},
		"c": {"a"},
		"d": {"b", "c"},
	}, []string{"a", "b", "c", "d"})

	if err := Validate(wf); err != nil {
		t.Errorf("diamond graph must validate, got %v", err)
	}
}

func TestValidate_Cycle(t *testing.T) {
	// a → b → c → a
	wf := buildGraph(t, map[string][]string{
		"a": {"c"},
		"b": {"a"},
		"c": {"b"},
	}, []string{"a", "b", "c"})

	err := Validate(wf)
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}

	// Ошибка должна указывать на шаг цикла.
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.StepID != "a" && verr.StepID != "b" && verr.StepID != "c" {
		t.Errorf("cycle error should name a step on the cycle, got %q", verr.StepID)
	}
}

func TestValidate_CycleInDisconnectedSubgraph(t *testing.T) {
	// Два несвязанных подграфа: ациклический и цикл x ↔ y.
	// Валидатор обязан обойти все шаги, не только достижимые из корней.
	wf := buildGraph(t, map[string][]string{
		"b": {"a"},
		"x": {"y"},
		"y": {"x"},
	}, []string{"a", "b", "x", "y"})

	if err := Validate(wf); !errors.Is(err, ErrCyclicDependency) {
		t.Errorf("expected ErrCyclicDependency in disconnected subgraph, got %v", err)
	}
}

func TestValidate_Empty(t *testing.T) {
	if err := Validate(domain.NewWorkflow("empty")); !errors.Is(err, ErrEmptySteps) {
		t.Error("empty workflow must not validate")
	}
	if err := Validate(nil); !errors.Is(err, ErrEmptySteps) {
		t.Error("nil workflow must not validate")
	}
}

func TestValidate_Deterministic(t *testing.T) {
	// При одном и том же графе с циклом ошибка стабильна между вызовами.
	wf := buildGraph(t, map[string][]string{
		"a": {"b"},
		"b": {"a"},
		"c": nil,
	}, []string{"a", "b", "c"})

	first := Validate(wf)
	for i := 0; i < 10; i++ {
		if got := Validate(wf); got.Error() != first.Error() {
			t.Fatalf("validation is not deterministic: %q vs %q", first, got)
		}
	}
}
