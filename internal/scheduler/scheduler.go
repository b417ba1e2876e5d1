package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser — парсер cron-выражений (стандартные 5 полей).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Schedule — расписание повторных запусков workflow:
// либо cron-выражение, либо фиксированный интервал.
type Schedule struct {
	// CronExpr — cron-выражение ("*/5 * * * *").
	CronExpr string

	// Interval — фиксированный интервал между запусками.
	Interval time.Duration
}

// IsCron возвращает true, если расписание задано cron-выражением.
func (s *Schedule) IsCron() bool {
	return s.CronExpr != ""
}

// Validate проверяет, что расписание задано ровно одним способом
// и корректно.
func (s *Schedule) Validate() error {
	if s.IsCron() && s.Interval > 0 {
		return fmt.Errorf("schedule has both cron expression and interval")
	}
	if s.IsCron() {
		return ValidateCronExpr(s.CronExpr)
	}
	if s.Interval <= 0 {
		return fmt.Errorf("schedule has neither cron expression nor interval")
	}
	return nil
}

// NextDue вычисляет следующее время запуска после from.
func (s *Schedule) NextDue(from time.Time) (time.Time, error) {
	if s.IsCron() {
		schedule, err := cronParser.Parse(s.CronExpr)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse cron expression %q: %w", s.CronExpr, err)
		}
		return schedule.Next(from), nil
	}
	return from.Add(s.Interval), nil
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}

// RunFunc — один запуск workflow по расписанию.
type RunFunc func(ctx context.Context) error

// Scheduler запускает workflow по расписанию до отмены контекста.
//
// Запуски не накладываются друг на друга: следующее время вычисляется
// после завершения предыдущего запуска.
type Scheduler struct {
	schedule *Schedule
	run      RunFunc
	logger   *slog.Logger
}

// New создаёт Scheduler.
func New(schedule *Schedule, run RunFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		schedule: schedule,
		run:      run,
		logger:   logger,
	}
}

// Start выполняет цикл расписания. Блокирует до отмены контекста.
// Начатый запуск не прерывается — отмена учитывается между запусками.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.schedule.Validate(); err != nil {
		return err
	}

	for {
		next, err := s.schedule.NextDue(time.Now())
		if err != nil {
			return err
		}

		s.logger.Info("next run scheduled", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
		}

		if err := s.run(ctx); err != nil {
			s.logger.Error("scheduled run failed", "error", err)
		}
	}
}
