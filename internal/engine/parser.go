package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kaskadlabs/kaskad/internal/domain"
)

// defaultWorkflowName — имя workflow, если определение его не задаёт.
const defaultWorkflowName = "default"

// workflowDef — определение workflow в файле.
//
// Поддерживаются две формы:
//
//	{"workflow": "name", "steps": [...]}
//	[...]
//
// Вторая форма — просто список шагов, имя workflow — "default".
type workflowDef struct {
	Workflow string    `json:"workflow" yaml:"workflow"`
	Steps    []stepDef `json:"steps" yaml:"steps"`
}

// stepDef — определение одного шага.
type stepDef struct {
	// StepID — уникальный идентификатор шага.
	StepID string `json:"step_id" yaml:"step_id"`

	// Run — команда шага.
	Run string `json:"run" yaml:"run"`

	// DependsOn — ID шагов-зависимостей.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// If — условие запуска ("status_<id> == '<значение>'").
	If string `json:"if,omitempty" yaml:"if,omitempty"`

	// OnFailure — поведение при неудаче ("retry: N").
	OnFailure string `json:"on_failure,omitempty" yaml:"on_failure,omitempty"`

	// ParallelWith — подсказка о параллельном выполнении.
	ParallelWith []string `json:"parallel_with,omitempty" yaml:"parallel_with,omitempty"`
}

// ParseFile читает определение workflow из файла и строит граф.
// Формат определяется расширением: .yaml/.yml — YAML, иначе JSON.
func ParseFile(path string) (*domain.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow definition: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON разбирает определение workflow из JSON.
func ParseJSON(data []byte) (*domain.Workflow, error) {
	def := workflowDef{Workflow: defaultWorkflowName}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		// Голый список шагов.
		if err := json.Unmarshal(data, &def.Steps); err != nil {
			return nil, fmt.Errorf("parse workflow definition: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parse workflow definition: %w", err)
		}
		if def.Workflow == "" {
			def.Workflow = defaultWorkflowName
		}
	}

	return buildWorkflow(&def)
}

// ParseYAML разбирает определение workflow из YAML.
// Принимает те же две формы, что и JSON.
func ParseYAML(data []byte) (*domain.Workflow, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse workflow definition: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, ErrEmptySteps
	}

	def := workflowDef{Workflow: defaultWorkflowName}

	doc := root.Content[0]
	if doc.Kind == yaml.SequenceNode {
		if err := doc.Decode(&def.Steps); err != nil {
			return nil, fmt.Errorf("parse workflow definition: %w", err)
		}
	} else {
		if err := doc.Decode(&def); err != nil {
			return nil, fmt.Errorf("parse workflow definition: %w", err)
		}
		if def.Workflow == "" {
			def.Workflow = defaultWorkflowName
		}
	}

	return buildWorkflow(&def)
}

// buildWorkflow строит граф из определения в два прохода:
// сначала все шаги, затем рёбра зависимостей. Двухпроходная схема
// позволяет ссылаться на шаги, объявленные ниже по файлу.
func buildWorkflow(def *workflowDef) (*domain.Workflow, error) {
	if len(def.Steps) == 0 {
		return nil, ErrEmptySteps
	}

	wf := domain.NewWorkflow(def.Workflow)

	// Первый проход: создаём шаги.
	for i := range def.Steps {
		sd := &def.Steps[i]

		if sd.StepID == "" {
			return nil, NewValidationError("", "step_id",
				fmt.Sprintf("step %d has empty step_id", i), ErrEmptyStepID)
		}
		if sd.Run == "" {
			return nil, NewValidationError(sd.StepID, "run",
				"step has empty run command", ErrEmptyCommand)
		}

		step := domain.NewStep(sd.StepID, sd.Run)
		step.Condition = sd.If
		step.ParallelWith = sd.ParallelWith

		if sd.OnFailure != "" {
			policy, err := domain.ParseRetryPolicy(sd.OnFailure)
			if err != nil {
				return nil, NewValidationError(sd.StepID, "on_failure",
					err.Error(), ErrInvalidRetryPolicy)
			}
			step.Retry = policy
		}

		if err := wf.AddStep(step); err != nil {
			return nil, NewValidationError(sd.StepID, "step_id",
				fmt.Sprintf("duplicate step ID: %s", sd.StepID), ErrDuplicateStepID)
		}
	}

	// Второй проход: связываем зависимости.
	for i := range def.Steps {
		sd := &def.Steps[i]

		for _, depID := range sd.DependsOn {
			if depID == sd.StepID {
				return nil, NewValidationError(sd.StepID, "depends_on",
					"step depends on itself", ErrSelfDependency)
			}
			if err := wf.AddDependency(sd.StepID, depID); err != nil {
				return nil, NewValidationError(sd.StepID, "depends_on",
					fmt.Sprintf("depends on unknown step: %s", depID), ErrMissingDependency)
			}
		}
	}

	return wf, nil
}
