package executor

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Result — итог выполнения команды шага.
type Result struct {
	// Success — завершилась ли команда успешно.
	Success bool

	// Output — захваченный вывод команды (stdout и stderr).
	Output string
}

// Executor — интерфейс внешнего исполнителя команд шагов.
//
// Движок передаёт команду как непрозрачную строку и трактует любой
// ненулевой или аномальный исход одинаково — как неудачу шага.
// Инфраструктурные ошибки (команду не удалось даже запустить)
// возвращаются через error и для движка тоже означают неудачу.
type Executor interface {
	Execute(ctx context.Context, command string) (*Result, error)
}

// ShellExecutor выполняет команды через системный shell.
type ShellExecutor struct {
	// Shell — путь к shell. По умолчанию "sh".
	Shell string
}

// NewShellExecutor создаёт исполнитель с shell по умолчанию.
func NewShellExecutor() *ShellExecutor {
	return &ShellExecutor{Shell: "sh"}
}

// Execute запускает команду как "sh -c <command>" и ждёт её завершения.
// Таймаут движком не накладывается — команда выполняется до конца.
func (e *ShellExecutor) Execute(ctx context.Context, command string) (*Result, error) {
	shell := e.Shell
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	out, err := cmd.CombinedOutput()

	result := &Result{Output: strings.TrimSpace(string(out))}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Команда запустилась, но завершилась с ненулевым кодом.
			return result, nil
		}
		return result, err
	}

	result.Success = true
	return result, nil
}
