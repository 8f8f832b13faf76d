// Package stats считает статистику смен статусов за день, месяц или год.
// Источник - журнал status_events, а не текущий статус пропозиций.
package stats

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"OrandaBot/internal/constants"
	"OrandaBot/internal/models"
)

// Period - тип периода статистики.
type Period string

const (
	Day   Period = constants.PERIOD_DAY
	Month Period = constants.PERIOD_MONTH
	Year  Period = constants.PERIOD_YEAR
)

// Periods - все периоды в порядке кнопок меню.
var Periods = []Period{Day, Month, Year}

// ParsePeriod строго разбирает название периода.
func ParsePeriod(raw string) (Period, error) {
	for _, p := range Periods {
		if string(p) == raw {
			return p, nil
		}
	}
	return "", fmt.Errorf("неизвестный период статистики %q", raw)
}

// Bounds возвращает полуинтервал [start, end) периода, содержащего now, в часовом поясе now.
func Bounds(p Period, now time.Time) (start, end time.Time, err error) {
	loc := now.Location()
	switch p {
	case Day:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		end = start.AddDate(0, 0, 1)
	case Month:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		// AddDate нормализует декабрь -> январь следующего года.
		end = start.AddDate(0, 1, 0)
	case Year:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0)
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("неизвестный период статистики %q", p)
	}
	return start, end, nil
}

// Report - результат агрегации за период.
type Report struct {
	Period Period
	Start  time.Time
	End    time.Time
	// Totals содержит все четыре статуса, включая нулевые.
	Totals map[models.Status]int
	// ByActor содержит только ненулевые счётчики.
	ByActor map[string]map[models.Status]int
}

// ActorTotal - сумма по всем статусам для одного актёра.
func (r Report) ActorTotal(name string) int {
	total := 0
	for _, n := range r.ByActor[name] {
		total += n
	}
	return total
}

// Actors возвращает имена актёров по убыванию общего числа событий, при равенстве - по имени.
func (r Report) Actors() []string {
	names := make([]string, 0, len(r.ByActor))
	for name := range r.ByActor {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ti, tj := r.ActorTotal(names[i]), r.ActorTotal(names[j])
		if ti != tj {
			return ti > tj
		}
		return names[i] < names[j]
	})
	return names
}

// Empty сообщает, что за период нет ни одного события.
func (r Report) Empty() bool {
	for _, n := range r.Totals {
		if n > 0 {
			return false
		}
	}
	return true
}

// Aggregate сворачивает сгруппированные строки журнала в отчёт. Чистая функция.
// Неизвестные статусы пропускаются, пустое имя актёра заменяется на constants.ANONYMOUS_ACTOR.
func Aggregate(p Period, start, end time.Time, rows []models.StatusCount) Report {
	r := Report{
		Period:  p,
		Start:   start,
		End:     end,
		Totals:  make(map[models.Status]int, len(models.Statuses)),
		ByActor: make(map[string]map[models.Status]int),
	}
	for _, st := range models.Statuses {
		r.Totals[st] = 0
	}
	for _, row := range rows {
		if !row.Status.Valid() || row.Count <= 0 {
			continue
		}
		name := row.Actor
		if name == "" {
			name = constants.ANONYMOUS_ACTOR
		}
		r.Totals[row.Status] += row.Count
		if r.ByActor[name] == nil {
			r.ByActor[name] = make(map[models.Status]int)
		}
		r.ByActor[name][row.Status] += row.Count
	}
	return r
}

// Source - источник сгруппированного журнала статусов (db.Store).
type Source interface {
	CountStatusEvents(ctx context.Context, start, end time.Time) ([]models.StatusCount, error)
}

// Compute вычисляет границы периода относительно now и агрегирует журнал.
func Compute(ctx context.Context, src Source, p Period, now time.Time) (Report, error) {
	start, end, err := Bounds(p, now)
	if err != nil {
		return Report{}, err
	}
	rows, err := src.CountStatusEvents(ctx, start, end)
	if err != nil {
		log.Printf("stats.Compute: Ошибка чтения журнала за период %s: %v", p, err)
		return Report{}, fmt.Errorf("статистика за период %s: %w", p, err)
	}
	return Aggregate(p, start, end, rows), nil
}
