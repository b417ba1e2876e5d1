package cli

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/kaskadlabs/kaskad/internal/config"
	"github.com/kaskadlabs/kaskad/internal/scheduler"
	"github.com/kaskadlabs/kaskad/internal/telemetry"
)

// NewScheduleCmd создаёт команду `kaskad schedule FILE`:
// повторный запуск workflow по cron-выражению или интервалу.
func NewScheduleCmd(cfg *config.Config, logger *slog.Logger, metrics *telemetry.Metrics, outputFn func() *Output) *cobra.Command {
	var cronExpr string
	var every time.Duration
	var strategy string
	var maxParallel int

	cmd := &cobra.Command{
		Use:   "schedule FILE",
		Short: "Run a workflow repeatedly on a schedule until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := outputFn()

			sched := &scheduler.Schedule{
				CronExpr: cronExpr,
				Interval: every,
			}

			// Определение перечитывается на каждом запуске: статусы
			// шагов мутируются движком, поэтому каждому запуску нужен
			// свежий граф. Упавшие шаги расписание не останавливают —
			// ошибку запуска scheduler только логирует.
			run := func(ctx context.Context) error {
				return runWorkflow(ctx, path, strategy, maxParallel, logger, metrics, out)
			}

			err := scheduler.New(sched, run, logger).Start(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression (standard 5 fields)")
	cmd.Flags().DurationVar(&every, "every", 0, "Fixed interval between runs (e.g. 30s, 5m)")
	cmd.Flags().StringVar(&strategy, "strategy", cfg.Strategy, "Scheduling strategy: none, bfs or dfs")
	cmd.Flags().IntVar(&maxParallel, "max-parallel", cfg.MaxParallel, "Maximum concurrently running steps (1 = sequential)")

	return cmd
}
