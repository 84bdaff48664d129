package store

import (
	"context"

	"todocal/internal/models"
)

// TaskList is the result of ListTasks.
type TaskList struct {
	Tasks       []models.Task `json:"tasks"`
	CarriedOver int           `json:"carried_over"`
	Stats       models.Stats  `json:"stats"`
}

// ListTasks carries overdue tasks over to today, persisting them in one
// write if any moved, and returns the sorted tasks that match filter.
func (s *Store) ListTasks(ctx context.Context, filter models.TaskFilter) (*TaskList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved, err := s.carryOver(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(s.tasks))
	for i := range s.tasks {
		if filter.Match(&s.tasks[i]) {
			tasks = append(tasks, s.tasks[i].Clone())
		}
	}
	models.SortTasks(tasks)

	return &TaskList{
		Tasks:       tasks,
		CarriedOver: moved,
		Stats:       models.CountTasks(tasks),
	}, nil
}

// Backlog returns open P3 tasks of type task, ordered by sort_order.
func (s *Store) Backlog(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.carryOver(ctx); err != nil {
		return nil, err
	}

	tasks := []models.Task{}
	for _, t := range s.tasks {
		if !t.Done && t.Type == models.TypeTask && t.Priority == models.PriorityP3 {
			tasks = append(tasks, t.Clone())
		}
	}
	models.SortBacklog(tasks)
	return tasks, nil
}

// carryOver moves every eligible overdue task to today. Callers hold mu.
func (s *Store) carryOver(ctx context.Context) (int, error) {
	today := s.today()

	moved := 0
	for i := range s.tasks {
		if s.tasks[i].CarriesOver(today) {
			s.tasks[i].Date = today
			moved++
		}
	}
	if moved == 0 {
		return 0, nil
	}

	s.logger.Info("carried over unfinished tasks", "count", moved, "date", today)
	if err := s.saveTasks(ctx); err != nil {
		return 0, err
	}
	return moved, nil
}

func (s *Store) taskIndex(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(_ context.Context, id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return models.Task{}, notFound("task", id)
	}
	return s.tasks[i].Clone(), nil
}

// CreateTask appends a task built from a partial payload.
func (s *Store) CreateTask(ctx context.Context, f models.Fields) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, discarded := models.NewTask(f, s.now())
	s.logDiscarded("task", task.ID, discarded)

	s.tasks = append(s.tasks, task)
	if err := s.saveTasks(ctx); err != nil {
		return models.Task{}, err
	}
	return task.Clone(), nil
}

// UpdateTask applies a partial payload. Completing a recurring task
// appends its successor; the updated task itself is returned.
func (s *Store) UpdateTask(ctx context.Context, id string, f models.Fields) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return models.Task{}, notFound("task", id)
	}

	now := s.now()
	task := &s.tasks[i]
	wasDone := task.Done
	s.logDiscarded("task", id, task.Apply(f, now))
	updated := task.Clone()

	if !wasDone && task.Done && task.Recurrence.IsSet() {
		next := task.Successor(now)
		s.logger.Info("scheduled next occurrence", "task", id, "next", next.ID, "date", next.Date)
		s.tasks = append(s.tasks, next)
	}

	if err := s.saveTasks(ctx); err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// DeleteTask removes a task and its subtasks.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return notFound("task", id)
	}

	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return s.saveTasks(ctx)
}

// ReorderTasks sets each listed task's sort_order to its position in ids.
// Unlisted tasks and unknown ids are left alone.
func (s *Store) ReorderTasks(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	position := make(map[string]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}
	for i := range s.tasks {
		if pos, ok := position[s.tasks[i].ID]; ok {
			s.tasks[i].SortOrder = pos
		}
	}

	return s.saveTasks(ctx)
}

// ClearDone removes every done task and returns how many were removed.
func (s *Store) ClearDone(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.Done {
			kept = append(kept, t)
		}
	}
	cleared := len(s.tasks) - len(kept)
	clear(s.tasks[len(kept):])
	s.tasks = kept

	if err := s.saveTasks(ctx); err != nil {
		return 0, err
	}
	return cleared, nil
}

// AddSubtask appends a subtask to a task.
func (s *Store) AddSubtask(ctx context.Context, taskID string, f models.Fields) (models.Subtask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(taskID)
	if i < 0 {
		return models.Subtask{}, notFound("task", taskID)
	}

	st, discarded := models.NewSubtask(f)
	s.logDiscarded("subtask", st.ID, discarded)
	s.tasks[i].Subtasks = append(s.tasks[i].Subtasks, st)

	if err := s.saveTasks(ctx); err != nil {
		return models.Subtask{}, err
	}
	return st, nil
}

// UpdateSubtask applies a partial {title, done} payload to a subtask.
func (s *Store) UpdateSubtask(ctx context.Context, taskID, subtaskID string, f models.Fields) (models.Subtask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(taskID)
	if i < 0 {
		return models.Subtask{}, notFound("task", taskID)
	}
	j := s.tasks[i].SubtaskIndex(subtaskID)
	if j < 0 {
		return models.Subtask{}, notFound("subtask", subtaskID)
	}

	st := &s.tasks[i].Subtasks[j]
	s.logDiscarded("subtask", subtaskID, st.Apply(f))
	updated := *st

	if err := s.saveTasks(ctx); err != nil {
		return models.Subtask{}, err
	}
	return updated, nil
}

// DeleteSubtask removes a subtask from its task.
func (s *Store) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(taskID)
	if i < 0 {
		return notFound("task", taskID)
	}
	j := s.tasks[i].SubtaskIndex(subtaskID)
	if j < 0 {
		return notFound("subtask", subtaskID)
	}

	subtasks := s.tasks[i].Subtasks
	s.tasks[i].Subtasks = append(subtasks[:j:j], subtasks[j+1:]...)
	return s.saveTasks(ctx)
}

// ReorderSubtasks puts the listed subtasks first, in order, followed by
// the rest in their previous order, and returns the full list.
func (s *Store) ReorderSubtasks(ctx context.Context, taskID string, ids []string) ([]models.Subtask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(taskID)
	if i < 0 {
		return nil, notFound("task", taskID)
	}

	s.tasks[i].ReorderSubtasks(ids)
	if err := s.saveTasks(ctx); err != nil {
		return nil, err
	}
	return append([]models.Subtask{}, s.tasks[i].Subtasks...), nil
}
