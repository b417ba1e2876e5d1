// Package cli содержит команды kaskad и форматирование вывода.
//
// Команды:
//   - run      — выполнить workflow и напечатать итоговую таблицу
//   - validate — разобрать и проверить определение без выполнения
//   - schedule — выполнять workflow по расписанию до прерывания
package cli
