package executor

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestShellExecutor_Success(t *testing.T) {
	exec := NewShellExecutor()

	res, err := exec.Execute(context.Background(), "echo hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Error("echo must succeed")
	}
	if res.Output != "hello" {
		t.Errorf("expected trimmed output %q, got %q", "hello", res.Output)
	}
}

// Ненулевой код выхода — не ошибка исполнителя, а неуспех команды.
func TestShellExecutor_NonZeroExit(t *testing.T) {
	exec := NewShellExecutor()

	res, err := exec.Execute(context.Background(), "exit 1")
	if err != nil {
		t.Fatalf("non-zero exit must not surface as error: %v", err)
	}
	if res.Success {
		t.Error("exit 1 must report failure")
	}
}

// stderr попадает в Output вместе со stdout.
func TestShellExecutor_CapturesStderr(t *testing.T) {
	exec := NewShellExecutor()

	res, err := exec.Execute(context.Background(), "echo boom 1>&2; exit 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Error("command must report failure")
	}
	if !strings.Contains(res.Output, "boom") {
		t.Errorf("stderr missing from output: %q", res.Output)
	}
}

func TestShellExecutor_ContextCancellation(t *testing.T) {
	exec := NewShellExecutor()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := exec.Execute(ctx, "sleep 10")
	if time.Since(start) > 5*time.Second {
		t.Fatal("command must be killed on context cancellation")
	}
	if err == nil && res.Success {
		t.Error("cancelled command must not succeed")
	}
}
