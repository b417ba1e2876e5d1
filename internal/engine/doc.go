// Package engine содержит ядро выполнения workflow.
//
// Включает:
//   - parser.go    — разбор определения workflow из JSON/YAML
//   - validate.go  — проверка графа зависимостей на циклы
//   - condition.go — вычисление условий запуска шагов
//   - strategy.go  — стратегии выбора следующего готового шага
//   - engine.go    — цикл выполнения: статусы, retry, каскад пропусков
//
// Движок получает уже валидированный граф, решает, в каком порядке и
// с какой степенью параллелизма запускать шаги, и доводит граф до
// исчерпания: каждый шаг заканчивает в SUCCESS, FAILED или SKIPPED.
package engine
