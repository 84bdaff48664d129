package models

import (
	"strings"
	"time"

	"todocal/internal/schedule"
)

// Placeholders substituted for empty titles.
const (
	DefaultTaskTitle    = "Untitled task"
	DefaultSubtaskTitle = "Untitled subtask"
)

// Subtask is a checklist item owned by a task.
type Subtask struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Task is a dated to-do item.
type Task struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Date       string              `json:"date"`
	Priority   Priority            `json:"priority"`
	Type       TaskType            `json:"type"`
	Done       bool                `json:"done"`
	Notes      string              `json:"notes"`
	Subtasks   []Subtask           `json:"subtasks"`
	Recurrence schedule.Recurrence `json:"recurrence"`
	SortOrder  int                 `json:"sort_order"`
	Amount     string              `json:"amount"`
	Currency   Currency            `json:"currency"`
}

// NewTask builds a task from a create payload. Missing or invalid fields
// take their defaults; id, subtasks and sort_order are never read from f.
// The returned names list the fields whose input was discarded.
func NewTask(f Fields, now time.Time) (Task, []string) {
	t := Task{
		ID:       NewID(),
		Title:    DefaultTaskTitle,
		Date:     schedule.Today(now),
		Priority: DefaultPriority,
		Type:     TypeTask,
		Currency: BaseCurrency,
		Subtasks: []Subtask{},
	}
	discarded := t.Apply(f, now)
	return t, discarded
}

// DecodeTask rebuilds a persisted task, additionally honoring id,
// sort_order and subtasks. A missing id is regenerated.
func DecodeTask(f Fields, now time.Time) Task {
	t, _ := NewTask(f, now)
	if id, ok := f.Text("id"); ok && strings.TrimSpace(id) != "" {
		t.ID = id
	}
	if n, ok := f.Int("sort_order"); ok {
		t.SortOrder = n
	}
	for _, sf := range f.Objects("subtasks") {
		st, _ := NewSubtask(sf)
		if id, ok := sf.Text("id"); ok && strings.TrimSpace(id) != "" {
			st.ID = id
		}
		t.Subtasks = append(t.Subtasks, st)
	}
	return t
}

// Apply changes the fields present in f. Each value is normalized with the
// creation rules; a value that fails normalization leaves the field as it
// is and its name is returned.
func (t *Task) Apply(f Fields, now time.Time) []string {
	var discarded []string
	reject := func(key string) { discarded = append(discarded, key) }

	if f.Has("title") {
		if s, ok := f.Text("title"); ok && strings.TrimSpace(s) != "" {
			t.Title = strings.TrimSpace(s)
		} else {
			reject("title")
		}
	}
	if f.Has("date") {
		s, _ := f.Text("date")
		if d, ok := schedule.NormalizeDate(strings.TrimSpace(s), now); ok {
			t.Date = d
		} else {
			reject("date")
		}
	}
	if f.Has("priority") {
		s, _ := f.Text("priority")
		if p, ok := ParsePriority(s); ok {
			t.Priority = p
		} else {
			reject("priority")
		}
	}
	if f.Has("type") {
		s, _ := f.Text("type")
		if tt, ok := ParseTaskType(s); ok {
			t.Type = tt
		} else {
			reject("type")
		}
	}
	if f.Has("done") {
		if b, ok := f.Bool("done"); ok {
			t.Done = b
		} else {
			reject("done")
		}
	}
	if f.Has("notes") {
		if s, ok := f.Text("notes"); ok {
			t.Notes = strings.TrimSpace(s)
		} else {
			reject("notes")
		}
	}
	if f.Has("recurrence") {
		if r, ok := schedule.ParseRecurrence(f["recurrence"]); ok {
			t.Recurrence = r
		} else {
			reject("recurrence")
		}
	}
	if f.Has("amount") {
		if s, ok := f.Text("amount"); ok {
			t.Amount = strings.TrimSpace(s)
		} else {
			reject("amount")
		}
	}
	if f.Has("currency") {
		s, _ := f.Text("currency")
		if c, ok := ParseCurrency(s); ok {
			t.Currency = c
		} else {
			reject("currency")
		}
	}

	return discarded
}

// CarriesOver returns true if the task should roll forward to today: it is
// not done, not recurring, not a payment, and dated before today.
func (t *Task) CarriesOver(today string) bool {
	if t.Done || t.Recurrence.IsSet() || t.Type == TypePayment {
		return false
	}
	return t.Date < today
}

// IsOverdue returns true if the task is not done and dated before today.
func (t *Task) IsOverdue(today string) bool {
	return !t.Done && t.Date < today
}

// Successor builds the next instance of a recurring task: fresh ids, not
// done, sort_order reset, dated at the rule's next occurrence.
func (t *Task) Successor(now time.Time) Task {
	next := Task{
		ID:         NewID(),
		Title:      t.Title,
		Date:       schedule.NextDate(t.Date, t.Recurrence, now),
		Priority:   t.Priority,
		Type:       t.Type,
		Notes:      t.Notes,
		Subtasks:   make([]Subtask, 0, len(t.Subtasks)),
		Recurrence: t.Recurrence,
		Amount:     t.Amount,
		Currency:   t.Currency,
	}
	for _, st := range t.Subtasks {
		next.Subtasks = append(next.Subtasks, Subtask{ID: NewID(), Title: st.Title})
	}
	return next
}

// Clone returns a copy that shares no mutable state with t.
func (t Task) Clone() Task {
	t.Subtasks = append([]Subtask{}, t.Subtasks...)
	return t
}

// SubtaskIndex returns the position of the subtask with id, or -1.
func (t *Task) SubtaskIndex(id string) int {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return i
		}
	}
	return -1
}

// ReorderSubtasks places subtasks named in ids first, in that order, then
// every remaining subtask in its previous relative order. Unknown and
// repeated ids are ignored; no subtask is ever dropped.
func (t *Task) ReorderSubtasks(ids []string) {
	placed := make(map[string]bool, len(ids))
	ordered := make([]Subtask, 0, len(t.Subtasks))
	for _, id := range ids {
		if placed[id] {
			continue
		}
		if i := t.SubtaskIndex(id); i >= 0 {
			ordered = append(ordered, t.Subtasks[i])
			placed[id] = true
		}
	}
	for _, st := range t.Subtasks {
		if !placed[st.ID] {
			ordered = append(ordered, st)
		}
	}
	t.Subtasks = ordered
}

// NewSubtask builds a subtask from a payload with {title, done}.
func NewSubtask(f Fields) (Subtask, []string) {
	st := Subtask{ID: NewID(), Title: DefaultSubtaskTitle}
	discarded := st.Apply(f)
	return st, discarded
}

// Apply changes the subtask's title and done flag when present in f.
func (st *Subtask) Apply(f Fields) []string {
	var discarded []string
	if f.Has("title") {
		if s, ok := f.Text("title"); ok && strings.TrimSpace(s) != "" {
			st.Title = strings.TrimSpace(s)
		} else {
			discarded = append(discarded, "title")
		}
	}
	if f.Has("done") {
		if b, ok := f.Bool("done"); ok {
			st.Done = b
		} else {
			discarded = append(discarded, "done")
		}
	}
	return discarded
}
