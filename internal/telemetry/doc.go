// Package telemetry — структурное логирование (slog) и метрики
// Prometheus для движка выполнения workflow.
package telemetry
