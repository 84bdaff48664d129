package models

import (
	"sort"

	"golang.org/x/text/cases"
)

// SortTasks orders tasks by date, then priority (P0 first), then
// case-insensitive title, then id so that the order is total.
func SortTasks(tasks []Task) {
	keys := foldTitles(tasks)
	sort.SliceStable(tasks, func(i, j int) bool {
		return lessTask(&tasks[i], &tasks[j], keys)
	})
}

// SortBacklog orders tasks by sort_order, falling back to SortTasks order.
func SortBacklog(tasks []Task) {
	keys := foldTitles(tasks)
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].SortOrder != tasks[j].SortOrder {
			return tasks[i].SortOrder < tasks[j].SortOrder
		}
		return lessTask(&tasks[i], &tasks[j], keys)
	})
}

func lessTask(a, b *Task, folded map[string]string) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return ra < rb
	}
	if fa, fb := folded[a.Title], folded[b.Title]; fa != fb {
		return fa < fb
	}
	return a.ID < b.ID
}

// foldTitles case-folds every title once. A Caser is stateful, so each
// sort gets its own.
func foldTitles(tasks []Task) map[string]string {
	fold := cases.Fold()
	keys := make(map[string]string, len(tasks))
	for i := range tasks {
		if _, ok := keys[tasks[i].Title]; !ok {
			keys[tasks[i].Title] = fold.String(tasks[i].Title)
		}
	}
	return keys
}
