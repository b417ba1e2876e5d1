package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Config — конфигурация kaskad из переменных окружения.
// Флаги CLI имеют приоритет над значениями отсюда.
type Config struct {
	// LogLevel — уровень логирования: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogFormat — формат логов: text или json.
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Strategy — стратегия планирования по умолчанию: none, bfs, dfs.
	Strategy string `env:"KASKAD_STRATEGY" envDefault:"none"`

	// MaxParallel — число слотов параллельного выполнения по умолчанию.
	// 1 — последовательный режим.
	MaxParallel int `env:"KASKAD_MAX_PARALLEL" envDefault:"1"`

	// MetricsAddr — адрес HTTP-сервера /metrics и /healthz.
	// Пусто — сервер не запускается.
	MetricsAddr string `env:"KASKAD_METRICS_ADDR"`
}

// Load читает конфигурацию из переменных окружения.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.MaxParallel < 1 {
		return nil, fmt.Errorf("KASKAD_MAX_PARALLEL must be positive, got %d", cfg.MaxParallel)
	}

	return cfg, nil
}
