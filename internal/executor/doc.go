// Package executor выполняет команды шагов workflow.
//
// Для движка исполнитель — внешний коллаборатор: команда передаётся
// непрозрачной строкой, обратно приходит успех/неудача и захваченный
// вывод. ShellExecutor — реализация через системный shell.
package executor
