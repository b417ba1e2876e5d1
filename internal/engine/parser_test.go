package engine

import (
	"errors"
	"testing"

	"github.com/kaskadlabs/kaskad/internal/domain"
)

func TestParseJSON_ObjectForm(t *testing.T) {
	data := []byte(`{
		"workflow": "deploy",
		"steps": [
			{"step_id": "build", "run": "make build"},
			{"step_id": "test", "run": "make test", "depends_on": ["build"], "on_failure": "retry: 2"},
			{"step_id": "notify", "run": "notify.sh", "depends_on": ["test"], "if": "status_test == 'SUCCESS'"}
		]
	}`)

	wf, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wf.Name != "deploy" {
		t.Errorf("expected workflow name deploy, got %q", wf.Name)
	}
	if wf.Size() != 3 {
		t.Fatalf("expected 3 steps, got %d", wf.Size())
	}

	test, _ := wf.Step("test")
	if len(test.DependsOn) != 1 || test.DependsOn[0] != "build" {
		t.Errorf("test should depend on build, got %v", test.DependsOn)
	}
	if test.Retry == nil || test.Retry.MaxRetries != 2 {
		t.Errorf("test should have retry:2, got %+v", test.Retry)
	}

	notify, _ := wf.Step("notify")
	if notify.Condition != "status_test == 'SUCCESS'" {
		t.Errorf("condition not parsed: %q", notify.Condition)
	}

	// Обратный индекс строится при разборе.
	if deps := wf.Dependents("build"); len(deps) != 1 || deps[0] != "test" {
		t.Errorf("dependents of build: %v", deps)
	}
}

func TestParseJSON_BareArrayForm(t *testing.T) {
	data := []byte(`[
		{"step_id": "a", "run": "echo a", "parallel_with": ["b"]},
		{"step_id": "b", "run": "echo b"}
	]`)

	wf, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wf.Name != "default" {
		t.Errorf("bare array should produce workflow %q, got %q", "default", wf.Name)
	}

	a, _ := wf.Step("a")
	if len(a.ParallelWith) != 1 || a.ParallelWith[0] != "b" {
		t.Errorf("parallel_with hint not kept: %v", a.ParallelWith)
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
workflow: backup
steps:
  - step_id: dump
    run: pg_dump mydb > dump.sql
  - step_id: upload
    run: upload.sh dump.sql
    depends_on: [dump]
    on_failure: "retry: 1"
`)

	wf, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf.Name != "backup" || wf.Size() != 2 {
		t.Errorf("got workflow %q with %d steps", wf.Name, wf.Size())
	}

	upload, _ := wf.Step("upload")
	if upload.Retry == nil || upload.Retry.MaxRetries != 1 {
		t.Errorf("upload should have retry:1, got %+v", upload.Retry)
	}
}

func TestParseYAML_BareList(t *testing.T) {
	data := []byte(`
- step_id: a
  run: echo a
- step_id: b
  run: echo b
  depends_on: [a]
`)

	wf, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wf.Name != "default" || wf.Size() != 2 {
		t.Errorf("got workflow %q with %d steps", wf.Name, wf.Size())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{
			name: "no steps",
			data: `{"workflow": "w", "steps": []}`,
			want: ErrEmptySteps,
		},
		{
			name: "empty step id",
			data: `[{"step_id": "", "run": "echo"}]`,
			want: ErrEmptyStepID,
		},
		{
			name: "empty command",
			data: `[{"step_id": "a", "run": ""}]`,
			want: ErrEmptyCommand,
		},
		{
			name: "duplicate id",
			data: `[{"step_id": "a", "run": "echo"}, {"step_id": "a", "run": "echo"}]`,
			want: ErrDuplicateStepID,
		},
		{
			name: "dangling dependency",
			data: `[{"step_id": "a", "run": "echo", "depends_on": ["ghost"]}]`,
			want: ErrMissingDependency,
		},
		{
			name: "self dependency",
			data: `[{"step_id": "a", "run": "echo", "depends_on": ["a"]}]`,
			want: ErrSelfDependency,
		},
		{
			name: "bad retry count",
			data: `[{"step_id": "a", "run": "echo", "on_failure": "retry: many"}]`,
			want: ErrInvalidRetryPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParse_ForwardReference(t *testing.T) {
	// Зависимость на шаг, объявленный ниже по файлу, — валидна.
	data := []byte(`[
		{"step_id": "second", "run": "echo 2", "depends_on": ["first"]},
		{"step_id": "first", "run": "echo 1"}
	]`)

	wf, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, _ := wf.Step("second")
	if len(second.DependsOn) != 1 || second.DependsOn[0] != "first" {
		t.Errorf("forward reference not linked: %v", second.DependsOn)
	}
}

func TestParse_NewStepsArePending(t *testing.T) {
	wf, err := ParseJSON([]byte(`[{"step_id": "a", "run": "echo"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, _ := wf.Step("a")
	if a.Status != domain.StepStatusPending {
		t.Errorf("parsed step should be PENDING, got %s", a.Status)
	}
}
