package models

import (
	"fmt"
	"time"

	"todocal/internal/schedule"
)

// TaskFilter narrows a task listing. The zero value matches every task.
type TaskFilter struct {
	Year     int
	Month    int
	Date     string
	HideDone bool
}

// Match reports whether t passes the filter.
func (f TaskFilter) Match(t *Task) bool {
	if f.HideDone && t.Done {
		return false
	}
	if f.Date != "" && t.Date != f.Date {
		return false
	}
	if f.Year == 0 && f.Month == 0 {
		return true
	}

	d, ok := schedule.ParseDate(t.Date)
	if !ok {
		return false
	}
	if f.Year != 0 && d.Year() != f.Year {
		return false
	}
	if f.Month != 0 && int(d.Month()) != f.Month {
		return false
	}
	return true
}

// Stats counts tasks by completion.
type Stats struct {
	Total     int `json:"total"`
	Done      int `json:"done"`
	Remaining int `json:"remaining"`
}

// CountTasks returns completion totals for tasks.
func CountTasks(tasks []Task) Stats {
	var s Stats
	for i := range tasks {
		s.Total++
		if tasks[i].Done {
			s.Done++
		}
	}
	s.Remaining = s.Total - s.Done
	return s
}

// MonthSummary totals one month of a year view.
type MonthSummary struct {
	Month string `json:"month"`
	Label string `json:"label"`
	Stats
}

// MonthSummaries returns twelve summaries for year, January first.
func MonthSummaries(tasks []Task, year int) []MonthSummary {
	byMonth := make(map[string][]Task)
	for _, t := range tasks {
		if len(t.Date) >= 7 {
			byMonth[t.Date[:7]] = append(byMonth[t.Date[:7]], t)
		}
	}

	out := make([]MonthSummary, 0, 12)
	for m := time.January; m <= time.December; m++ {
		key := fmt.Sprintf("%04d-%02d", year, int(m))
		out = append(out, MonthSummary{
			Month: key,
			Label: m.String()[:3],
			Stats: CountTasks(byMonth[key]),
		})
	}
	return out
}

// DayGroup holds one day of a month view.
type DayGroup struct {
	Date string `json:"date"`
	Stats
	Tasks []Task `json:"tasks"`
}

// DayGroups groups tasks dated in year/month by day, in date order. Only
// days that have tasks are returned.
func DayGroups(tasks []Task, year, month int) []DayGroup {
	prefix := fmt.Sprintf("%04d-%02d-", year, month)

	var inMonth []Task
	for _, t := range tasks {
		if len(t.Date) == len(prefix)+2 && t.Date[:len(prefix)] == prefix {
			inMonth = append(inMonth, t)
		}
	}
	SortTasks(inMonth)

	groups := []DayGroup{}
	for _, t := range inMonth {
		if n := len(groups); n == 0 || groups[n-1].Date != t.Date {
			groups = append(groups, DayGroup{Date: t.Date, Tasks: []Task{}})
		}
		g := &groups[len(groups)-1]
		g.Tasks = append(g.Tasks, t)
		g.Stats = CountTasks(g.Tasks)
	}
	return groups
}
