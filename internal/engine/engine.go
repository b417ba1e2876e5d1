package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kaskadlabs/kaskad/internal/domain"
	"github.com/kaskadlabs/kaskad/internal/executor"
	"github.com/kaskadlabs/kaskad/internal/telemetry"
)

// LogEntry — запись журнала диспетчеризации.
//
// Журнал append-only: одна запись на каждую попытку запуска шага,
// включая повторные после неудач.
type LogEntry struct {
	// StepID — ID запущенного шага.
	StepID string `json:"step_id"`

	// Attempt — номер попытки, начиная с 1.
	Attempt int `json:"attempt"`
}

// StepInfo — строка итоговой таблицы статусов для наблюдателя.
type StepInfo struct {
	ID         string            `json:"id"`
	Status     domain.StepStatus `json:"status"`
	DependsOn  []string          `json:"depends_on,omitempty"`
	Command    string            `json:"command"`
	RetryCount int               `json:"retry_count"`
}

// Config — конфигурация движка для одного запуска.
type Config struct {
	// Workflow — валидированный граф шагов. Движок становится его
	// единственным владельцем на время запуска.
	Workflow *domain.Workflow

	// Executor — внешний исполнитель команд.
	Executor executor.Executor

	// Strategy — политика выбора следующего шага.
	// nil — FIFO-порядок очереди готовых.
	Strategy Strategy

	// MaxParallel — максимум одновременно выполняющихся шагов.
	// 1 (или меньше) — последовательный режим.
	MaxParallel int

	// Logger — логгер. nil — slog.Default().
	Logger *slog.Logger

	// Metrics — метрики выполнения. nil — без метрик.
	Metrics *telemetry.Metrics
}

// Engine — движок выполнения workflow.
//
// Владеет переходами статусов шагов, очередью готовых, retry-логикой
// и каскадом пропусков. Движок одноразовый: один Engine выполняет
// один граф один раз.
//
// В параллельном режиме всё разделяемое состояние (статусы шагов,
// очередь готовых, журнал) защищено одним мьютексом: применение
// результата, retry/каскад и пересчёт готовности выполняются в одной
// критической секции. В последовательном режиме движок — единственный
// владелец состояния, и цикл выполнения обходится без блокировок.
type Engine struct {
	wf          *domain.Workflow
	exec        executor.Executor
	strategy    Strategy
	maxParallel int
	logger      *slog.Logger
	metrics     *telemetry.Metrics
	runID       uuid.UUID

	mu    sync.Mutex
	ready []*domain.Step
	log   []LogEntry
}

// New создаёт движок для одного запуска workflow.
func New(cfg Config) *Engine {
	maxParallel := cfg.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runID := uuid.New()
	logger = telemetry.WithRunID(logger, runID.String())
	logger = telemetry.WithWorkflow(logger, cfg.Workflow.Name)

	return &Engine{
		wf:          cfg.Workflow,
		exec:        cfg.Executor,
		strategy:    cfg.Strategy,
		maxParallel: maxParallel,
		logger:      logger,
		metrics:     cfg.Metrics,
		runID:       runID,
	}
}

// RunID возвращает идентификатор запуска.
func (e *Engine) RunID() uuid.UUID {
	return e.runID
}

// Execute выполняет workflow до исчерпания графа: каждый шаг
// заканчивает в SUCCESS, FAILED или SKIPPED. Падение отдельного шага
// запуск не прерывает — оно локализуется retry и каскадом пропусков.
func (e *Engine) Execute(ctx context.Context) {
	e.logger.Info("starting workflow",
		"steps", e.wf.Size(),
		"max_parallel", e.maxParallel,
	)
	start := time.Now()

	e.updateReadyQueue()

	if e.maxParallel == 1 {
		e.runSequential(ctx)
	} else {
		e.runParallel(ctx)
	}

	failed := e.HasFailures()
	e.metrics.RunFinished(failed)
	e.logger.Info("workflow completed",
		"duration", time.Since(start),
		"failed", failed,
	)
}

// runSequential — последовательный цикл: пока очередь готовых не
// пуста, выбрать шаг, синхронно выполнить, применить результат,
// пересчитать готовность.
func (e *Engine) runSequential(ctx context.Context) {
	for len(e.ready) > 0 {
		step := e.nextStep()
		if step == nil {
			break
		}

		e.dispatch(step)
		success, output, took := e.invoke(ctx, step)
		e.applyResult(step, success, output, took)
		e.updateReadyQueue()
	}
}

// completion — результат одного выполненного шага в параллельном
// режиме, переданный воркером обратно в цикл движка.
type completion struct {
	step    *domain.Step
	success bool
	output  string
	took    time.Duration
}

// runParallel — ограниченно-параллельный цикл.
//
// Пока есть свободные слоты и готовые шаги, запускает их независимыми
// горутинами; завершения приходят по каналу, и каждый результат
// применяется вместе с пересчётом готовности в одной критической
// секции. Цикл — единственный получатель канала, поэтому результаты
// двух одновременных завершений никогда не применяются вперемешку.
// Завершается, когда очередь готовых пуста и ничего не выполняется.
func (e *Engine) runParallel(ctx context.Context) {
	results := make(chan completion)
	inFlight := 0

	for {
		e.mu.Lock()
		for inFlight < e.maxParallel {
			step := e.nextStep()
			if step == nil {
				break
			}
			e.dispatch(step)
			inFlight++

			go func(s *domain.Step) {
				success, output, took := e.invoke(ctx, s)
				results <- completion{step: s, success: success, output: output, took: took}
			}(step)
		}
		e.mu.Unlock()

		if inFlight == 0 {
			return
		}

		c := <-results
		inFlight--

		e.mu.Lock()
		e.applyResult(c.step, c.success, c.output, c.took)
		e.updateReadyQueue()
		e.mu.Unlock()
	}
}

// nextStep выбирает следующий шаг из очереди готовых и убирает его
// оттуда. При отсутствии стратегии — FIFO.
func (e *Engine) nextStep() *domain.Step {
	if len(e.ready) == 0 {
		return nil
	}

	if e.strategy == nil {
		step := e.ready[0]
		e.ready = e.ready[1:]
		return step
	}

	step := e.strategy.SelectNext(e.ready)
	e.removeFromReady(step.ID)
	return step
}

// dispatch переводит шаг READY → RUNNING и пишет попытку в журнал.
func (e *Engine) dispatch(step *domain.Step) {
	step.Status = domain.StepStatusRunning
	attempt := step.RetryCount + 1
	e.log = append(e.log, LogEntry{StepID: step.ID, Attempt: attempt})

	e.logger.Info("dispatching step",
		"step_id", step.ID,
		"attempt", attempt,
		"command", step.Command,
	)
}

// invoke выполняет команду шага через внешнего исполнителя.
// Любой аномальный исход трактуется как неудача.
func (e *Engine) invoke(ctx context.Context, step *domain.Step) (bool, string, time.Duration) {
	start := time.Now()
	result, err := e.exec.Execute(ctx, step.Command)
	took := time.Since(start)

	if err != nil {
		e.logger.Error("command execution error",
			"step_id", step.ID,
			"error", err,
		)
		output := ""
		if result != nil {
			output = result.Output
		}
		return false, output, took
	}

	return result.Success, result.Output, took
}

// applyResult применяет исход выполнения шага: SUCCESS, возврат в
// PENDING на повтор или терминальный FAILED с каскадом пропусков.
func (e *Engine) applyResult(step *domain.Step, success bool, output string, took time.Duration) {
	e.metrics.StepDuration(took)

	if success {
		step.Status = domain.StepStatusSuccess
		e.metrics.StepFinished(domain.StepStatusSuccess.String())
		e.logger.Info("step succeeded", "step_id", step.ID, "duration", took)
		if output != "" {
			e.logger.Debug("command output", "step_id", step.ID, "output", output)
		}
		return
	}

	if step.CanRetry() {
		// Неудача с оставшимся бюджетом — не терминальная: шаг
		// возвращается в PENDING и на следующем пересчёте готовности
		// снова встанет в очередь, без задержки. Каскад не запускается.
		step.RetryCount++
		step.Status = domain.StepStatusPending
		e.metrics.RetryScheduled()
		e.logger.Warn("step failed, retry scheduled",
			"step_id", step.ID,
			"retry", step.RetryCount,
			"max_retries", step.Retry.MaxRetries,
		)
		return
	}

	step.Status = domain.StepStatusFailed
	e.metrics.StepFinished(domain.StepStatusFailed.String())
	e.logger.Error("step failed", "step_id", step.ID, "retries_used", step.RetryCount)
	e.skipDependents(step.ID)
}

// updateReadyQueue пересчитывает готовность PENDING-шагов.
//
// Шаг становится READY, когда все его зависимости в SUCCESS и условие
// (если задано) истинно. При удовлетворённых зависимостях и ложном
// условии шаг сразу переходит в SKIPPED — без повторов и без
// собственного каскада. Обход шагов детерминирован (порядок вставки),
// поэтому при равных уровнях планирование воспроизводимо.
func (e *Engine) updateReadyQueue() {
	for _, step := range e.wf.Steps() {
		if step.Status != domain.StepStatusPending {
			continue
		}

		if !e.dependenciesSatisfied(step) {
			continue
		}

		if EvaluateCondition(step.Condition, e.wf) {
			step.Status = domain.StepStatusReady
			e.ready = append(e.ready, step)
			continue
		}

		step.Status = domain.StepStatusSkipped
		e.metrics.StepFinished(domain.StepStatusSkipped.String())
		e.logger.Info("step skipped by condition",
			"step_id", step.ID,
			"condition", step.Condition,
		)
	}
}

// dependenciesSatisfied проверяет, что все зависимости шага в SUCCESS.
func (e *Engine) dependenciesSatisfied(step *domain.Step) bool {
	for _, depID := range step.DependsOn {
		dep, ok := e.wf.Step(depID)
		if !ok || dep.Status != domain.StepStatusSuccess {
			return false
		}
	}
	return true
}

// skipDependents выполняет каскад пропусков от терминально упавшего
// шага: обход обратного индекса в ширину с дедупликацией. Пропускаются
// только шаги в PENDING или READY; уже завершённые не трогаются, и
// обход через них не продолжается. Условия при каскаде не
// перепроверяются.
func (e *Engine) skipDependents(failedID string) {
	queue := append([]string(nil), e.wf.Dependents(failedID)...)
	seen := make(map[string]bool)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if seen[id] {
			continue
		}
		seen[id] = true

		step, ok := e.wf.Step(id)
		if !ok {
			continue
		}

		switch step.Status {
		case domain.StepStatusPending, domain.StepStatusReady:
			if step.Status == domain.StepStatusReady {
				e.removeFromReady(id)
			}
			step.Status = domain.StepStatusSkipped
			e.metrics.StepFinished(domain.StepStatusSkipped.String())
			e.logger.Warn("step skipped due to upstream failure",
				"step_id", id,
				"failed_step", failedID,
			)
			queue = append(queue, e.wf.Dependents(id)...)
		}
	}
}

// removeFromReady убирает шаг из очереди готовых, сохраняя порядок
// остальных.
func (e *Engine) removeFromReady(id string) {
	for i, step := range e.ready {
		if step.ID == id {
			e.ready = append(e.ready[:i], e.ready[i+1:]...)
			return
		}
	}
}

// HasFailures возвращает true, если хотя бы один шаг в FAILED.
func (e *Engine) HasFailures() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, step := range e.wf.Steps() {
		if step.Status == domain.StepStatusFailed {
			return true
		}
	}
	return false
}

// Snapshot возвращает таблицу статусов всех шагов в порядке вставки.
// В параллельном режиме безопасен для вызова во время выполнения.
func (e *Engine) Snapshot() []StepInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	steps := e.wf.Steps()
	infos := make([]StepInfo, 0, len(steps))
	for _, step := range steps {
		infos = append(infos, StepInfo{
			ID:         step.ID,
			Status:     step.Status,
			DependsOn:  append([]string(nil), step.DependsOn...),
			Command:    step.Command,
			RetryCount: step.RetryCount,
		})
	}
	return infos
}

// ExecutionLog возвращает журнал попыток запуска в порядке
// диспетчеризации.
func (e *Engine) ExecutionLog() []LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]LogEntry(nil), e.log...)
}
