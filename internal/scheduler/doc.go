// Package scheduler реализует повторный запуск workflow по расписанию:
// cron-выражение или фиксированный интервал. Следующее время запуска
// вычисляется после завершения предыдущего, поэтому запуски одного
// workflow никогда не пересекаются.
package scheduler
