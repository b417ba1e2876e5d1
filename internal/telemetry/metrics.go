package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — счётчики выполнения workflow для Prometheus.
//
// Все методы безопасны на nil-приёмнике: движок работает и без
// метрик, когда endpoint /metrics не настроен.
type Metrics struct {
	runsTotal    *prometheus.CounterVec
	stepsTotal   *prometheus.CounterVec
	retriesTotal prometheus.Counter
	stepDuration prometheus.Histogram
}

// NewMetrics создаёт и регистрирует метрики в переданном Registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kaskad",
			Name:      "runs_total",
			Help:      "Workflow runs by result.",
		}, []string{"result"}),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kaskad",
			Name:      "steps_total",
			Help:      "Steps by final status.",
		}, []string{"status"}),
		retriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kaskad",
			Name:      "step_retries_total",
			Help:      "Scheduled step retries.",
		}),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kaskad",
			Name:      "step_duration_seconds",
			Help:      "Duration of step command execution.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.runsTotal, m.stepsTotal, m.retriesTotal, m.stepDuration)
	return m
}

// RunFinished учитывает завершённый run.
func (m *Metrics) RunFinished(failed bool) {
	if m == nil {
		return
	}
	result := "success"
	if failed {
		result = "failed"
	}
	m.runsTotal.WithLabelValues(result).Inc()
}

// StepFinished учитывает шаг, достигший финального статуса.
func (m *Metrics) StepFinished(status string) {
	if m == nil {
		return
	}
	m.stepsTotal.WithLabelValues(status).Inc()
}

// RetryScheduled учитывает запланированный повтор шага.
func (m *Metrics) RetryScheduled() {
	if m == nil {
		return
	}
	m.retriesTotal.Inc()
}

// StepDuration учитывает длительность выполнения команды шага.
func (m *Metrics) StepDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.stepDuration.Observe(d.Seconds())
}
