// kaskad — локальный исполнитель workflow.
//
// Выполняет направленный ациклический граф шагов-команд с учётом
// зависимостей, условий запуска, retry-политик и каскада пропусков,
// последовательно или ограниченно-параллельно.
//
// Использование:
//
//	kaskad [--json] <command> [flags] FILE
//
// Команды:
//
//	run       Выполнить workflow
//	validate  Проверить определение workflow
//	schedule  Выполнять workflow по расписанию
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kaskadlabs/kaskad/internal/cli"
	"github.com/kaskadlabs/kaskad/internal/config"
	"github.com/kaskadlabs/kaskad/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Метрики включаются, только если настроен адрес endpoint'а.
	var metrics *telemetry.Metrics
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = telemetry.NewMetrics(reg)

		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

		go func() {
			logger.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "kaskad",
		Short:         "kaskad — DAG workflow runner",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewRunCmd(cfg, logger, metrics, outputFn),
		cli.NewValidateCmd(outputFn),
		cli.NewScheduleCmd(cfg, logger, metrics, outputFn),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
