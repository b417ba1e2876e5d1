package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kaskadlabs/kaskad/internal/config"
	"github.com/kaskadlabs/kaskad/internal/engine"
	"github.com/kaskadlabs/kaskad/internal/executor"
	"github.com/kaskadlabs/kaskad/internal/telemetry"
)

// runReport — итог запуска для JSON-вывода.
type runReport struct {
	Workflow     string            `json:"workflow"`
	RunID        string            `json:"run_id"`
	Steps        []engine.StepInfo `json:"steps"`
	ExecutionLog []engine.LogEntry `json:"execution_log"`
}

// NewRunCmd создаёт команду `kaskad run FILE`.
func NewRunCmd(cfg *config.Config, logger *slog.Logger, metrics *telemetry.Metrics, outputFn func() *Output) *cobra.Command {
	var strategy string
	var maxParallel int

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute a workflow definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd.Context(), args[0], strategy, maxParallel, logger, metrics, outputFn())
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", cfg.Strategy, "Scheduling strategy: none, bfs or dfs")
	cmd.Flags().IntVar(&maxParallel, "max-parallel", cfg.MaxParallel, "Maximum concurrently running steps (1 = sequential)")

	return cmd
}

// runWorkflow выполняет один полный запуск: разбор, валидация,
// выполнение, вывод итоговой таблицы и журнала.
func runWorkflow(ctx context.Context, path, strategyName string, maxParallel int, logger *slog.Logger, metrics *telemetry.Metrics, out *Output) error {
	if maxParallel < 1 {
		return fmt.Errorf("max-parallel must be positive, got %d", maxParallel)
	}

	wf, err := engine.ParseFile(path)
	if err != nil {
		return err
	}

	if err := engine.Validate(wf); err != nil {
		return err
	}

	strategy, err := engine.NewStrategy(strategyName, wf)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Config{
		Workflow:    wf,
		Executor:    executor.NewShellExecutor(),
		Strategy:    strategy,
		MaxParallel: maxParallel,
		Logger:      logger,
		Metrics:     metrics,
	})

	eng.Execute(ctx)

	renderRun(out, wf.Name, eng)

	if eng.HasFailures() {
		return fmt.Errorf("workflow %q finished with failed steps", wf.Name)
	}
	return nil
}

// renderRun печатает итоговую таблицу статусов и порядок выполнения.
func renderRun(out *Output, name string, eng *engine.Engine) {
	steps := eng.Snapshot()
	log := eng.ExecutionLog()

	if out.JSONMode() {
		out.JSON(runReport{
			Workflow:     name,
			RunID:        eng.RunID().String(),
			Steps:        steps,
			ExecutionLog: log,
		})
		return
	}

	headers := []string{"STEP ID", "STATUS", "DEPENDENCIES", "COMMAND", "RETRIES"}
	rows := make([][]string, len(steps))
	for i, s := range steps {
		deps := "N/A"
		if len(s.DependsOn) > 0 {
			deps = strings.Join(s.DependsOn, ", ")
		}
		rows[i] = []string{s.ID, s.Status.String(), deps, s.Command, fmt.Sprintf("%d", s.RetryCount)}
	}
	out.Table(headers, rows)

	order := make([]string, len(log))
	for i, entry := range log {
		order[i] = entry.StepID
	}
	out.Line("Execution order: " + strings.Join(order, " -> "))
}
