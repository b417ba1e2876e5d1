package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedule_Validate(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		wantErr  bool
	}{
		{"interval only", Schedule{Interval: time.Minute}, false},
		{"cron only", Schedule{CronExpr: "*/5 * * * *"}, false},
		{"both modes", Schedule{CronExpr: "* * * * *", Interval: time.Minute}, true},
		{"neither mode", Schedule{}, true},
		{"negative interval", Schedule{Interval: -time.Second}, true},
		{"invalid cron", Schedule{CronExpr: "not a cron"}, true},
		{"six fields rejected", Schedule{CronExpr: "0 * * * * *"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schedule.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSchedule_NextDue_Interval(t *testing.T) {
	s := &Schedule{Interval: 15 * time.Minute}
	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	next, err := s.NextDue(from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := from.Add(15 * time.Minute)
	if !next.Equal(want) {
		t.Errorf("NextDue = %v, want %v", next, want)
	}
}

func TestSchedule_NextDue_Cron(t *testing.T) {
	s := &Schedule{CronExpr: "*/10 * * * *"}
	from := time.Date(2025, 6, 1, 12, 3, 0, 0, time.UTC)

	next, err := s.NextDue(from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextDue = %v, want %v", next, want)
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("0 3 * * 1"); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}
	if err := ValidateCronExpr("61 * * * *"); err == nil {
		t.Error("out-of-range minute must be rejected")
	}
}

func TestScheduler_Start_RunsAndStops(t *testing.T) {
	var runs atomic.Int32
	s := New(
		&Schedule{Interval: 10 * time.Millisecond},
		func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := s.Start(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context error, got %v", err)
	}
	if runs.Load() == 0 {
		t.Error("expected at least one scheduled run")
	}
}

// Ошибка запуска не останавливает расписание.
func TestScheduler_Start_ContinuesAfterRunError(t *testing.T) {
	var runs atomic.Int32
	s := New(
		&Schedule{Interval: 10 * time.Millisecond},
		func(ctx context.Context) error {
			runs.Add(1)
			return errors.New("boom")
		},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_ = s.Start(ctx)
	if runs.Load() < 2 {
		t.Errorf("scheduler must keep running after errors, got %d runs", runs.Load())
	}
}

func TestScheduler_Start_InvalidSchedule(t *testing.T) {
	s := New(&Schedule{}, func(ctx context.Context) error { return nil }, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Error("invalid schedule must fail Start")
	}
}
