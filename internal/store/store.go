package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"todocal/internal/models"
	"todocal/internal/schedule"
)

// Store owns the task and project collections. Every method holds one
// lock for its whole validate, mutate, persist sequence, so mutations
// never interleave. Values returned to callers are copies.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	logger   *log.Logger
	now      func() time.Time
	example  string
	tasks    []models.Task
	projects []models.Project
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the source of "now", which decides today's date.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithExampleFile names a task document used to seed the collection on
// first run, when no tasks document exists yet.
func WithExampleFile(path string) Option {
	return func(s *Store) { s.example = path }
}

// Open loads both collections from backend. Missing documents start empty
// (tasks may be seeded from the example file); malformed documents are
// logged and also start empty.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		logger:  log.New(io.Discard),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the backend. Every mutation is already durable.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) today() string {
	return schedule.Today(s.now())
}

func (s *Store) load(ctx context.Context) error {
	now := s.now()

	taskItems, err := s.loadDocument(ctx, TasksDocument)
	switch {
	case errors.Is(err, ErrNoDocument):
		taskItems = s.exampleTasks()
	case err != nil:
		return err
	}

	seen := make(map[string]bool, len(taskItems))
	s.tasks = make([]models.Task, 0, len(taskItems))
	for _, f := range taskItems {
		t := models.DecodeTask(f, now)
		if seen[t.ID] {
			t.ID = models.NewID()
		}
		seen[t.ID] = true
		s.tasks = append(s.tasks, t)
	}

	projectItems, err := s.loadDocument(ctx, ProjectsDocument)
	if err != nil && !errors.Is(err, ErrNoDocument) {
		return err
	}

	clear(seen)
	s.projects = make([]models.Project, 0, len(projectItems))
	for _, f := range projectItems {
		p := models.DecodeProject(f, now)
		if seen[p.ID] {
			p.ID = models.NewID()
		}
		seen[p.ID] = true
		s.projects = append(s.projects, p)
	}

	s.logger.Info("loaded collections", "tasks", len(s.tasks), "projects", len(s.projects))
	return nil
}

// loadDocument returns the objects of a persisted JSON array. A document
// that is not a JSON array is logged and treated as empty.
func (s *Store) loadDocument(ctx context.Context, name string) ([]models.Fields, error) {
	data, err := s.backend.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	items, ok := decodeArray(data)
	if !ok {
		s.logger.Warn("ignoring malformed document", "document", name)
		return nil, nil
	}
	return items, nil
}

func (s *Store) exampleTasks() []models.Fields {
	if s.example == "" {
		return nil
	}

	data, err := os.ReadFile(s.example)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("cannot read example tasks", "path", s.example, "err", err)
		}
		return nil
	}

	items, ok := decodeArray(data)
	if !ok {
		s.logger.Warn("ignoring malformed example tasks", "path", s.example)
		return nil
	}
	s.logger.Info("seeding tasks from example", "path", s.example, "count", len(items))
	return items
}

func decodeArray(data []byte) ([]models.Fields, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return models.ObjectList(data), true
}

func (s *Store) saveTasks(ctx context.Context) error {
	return s.save(ctx, TasksDocument, s.tasks)
}

func (s *Store) saveProjects(ctx context.Context) error {
	return s.save(ctx, ProjectsDocument, s.projects)
}

func (s *Store) save(ctx context.Context, name string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	if err := s.backend.Save(ctx, name, buf.Bytes()); err != nil {
		s.logger.Error("persist failed", "document", name, "err", err)
		return err
	}
	return nil
}

func (s *Store) logDiscarded(kind, id string, fields []string) {
	if len(fields) > 0 {
		s.logger.Debug("discarded invalid input", "entity", kind, "id", id, "fields", fields)
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q %w", kind, id, models.ErrNotFound)
}
