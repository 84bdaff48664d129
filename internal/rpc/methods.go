package rpc

import (
	"context"
	"fmt"
	"strings"

	"todocal/internal/models"
	"todocal/internal/schedule"
)

type method func(ctx context.Context, params models.Fields) (any, error)

type okResult struct {
	OK bool `json:"ok"`
}

func (s *Server) methodTable() map[string]method {
	return map[string]method{
		"list_tasks":        s.listTasks,
		"add_task":          s.addTask,
		"update_task":       s.updateTask,
		"delete_task":       s.deleteTask,
		"list_projects":     s.listProjects,
		"add_project_entry": s.addProjectEntry,
	}
}

// requireID returns the non-empty string id named key.
func requireID(params models.Fields, key string) (string, error) {
	id, ok := params.Text(key)
	if !ok || strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: %s is required", models.ErrInvalid, key)
	}
	return id, nil
}

// listTasks accepts optional year, month, date and include_done filters.
func (s *Server) listTasks(ctx context.Context, params models.Fields) (any, error) {
	var filter models.TaskFilter

	if params.Has("year") {
		year, ok := params.Int("year")
		if !ok || year < 1 || year > 9999 {
			return nil, fmt.Errorf("%w: invalid year", models.ErrInvalid)
		}
		filter.Year = year
	}
	if params.Has("month") {
		month, ok := params.Int("month")
		if !ok || month < 1 || month > 12 {
			return nil, fmt.Errorf("%w: month must be between 1 and 12", models.ErrInvalid)
		}
		filter.Month = month
	}
	if params.Has("date") {
		date, _ := params.Text("date")
		if _, ok := schedule.ParseDate(date); !ok {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", models.ErrInvalid)
		}
		filter.Date = date
	}
	if params.Has("include_done") {
		include, ok := params.Bool("include_done")
		if !ok {
			return nil, fmt.Errorf("%w: invalid include_done", models.ErrInvalid)
		}
		filter.HideDone = !include
	}

	return s.store.ListTasks(ctx, filter)
}

func (s *Server) addTask(ctx context.Context, params models.Fields) (any, error) {
	return s.store.CreateTask(ctx, params)
}

// updateTask takes the task id alongside the fields to change.
func (s *Server) updateTask(ctx context.Context, params models.Fields) (any, error) {
	id, err := requireID(params, "id")
	if err != nil {
		return nil, err
	}
	delete(params, "id")
	return s.store.UpdateTask(ctx, id, params)
}

func (s *Server) deleteTask(ctx context.Context, params models.Fields) (any, error) {
	id, err := requireID(params, "id")
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) listProjects(ctx context.Context, params models.Fields) (any, error) {
	var status models.Status
	if params.Has("status") {
		raw, _ := params.Text("status")
		st, ok := models.ParseStatus(raw)
		if !ok {
			return nil, fmt.Errorf("%w: invalid status", models.ErrInvalid)
		}
		status = st
	}
	return s.store.ListProjects(ctx, status)
}

// addProjectEntry takes project_id alongside the entry's date and summary.
func (s *Server) addProjectEntry(ctx context.Context, params models.Fields) (any, error) {
	projectID, err := requireID(params, "project_id")
	if err != nil {
		return nil, err
	}
	delete(params, "project_id")
	return s.store.AddEntry(ctx, projectID, params)
}
