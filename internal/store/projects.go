package store

import (
	"context"

	"todocal/internal/models"
)

func (s *Store) projectIndex(id string) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

// ListProjects returns projects in creation order, optionally only those
// with the given status.
func (s *Store) ListProjects(_ context.Context, status models.Status) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if status != "" && p.Status != status {
			continue
		}
		projects = append(projects, p.Clone())
	}
	return projects, nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(_ context.Context, id string) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(id)
	if i < 0 {
		return models.Project{}, notFound("project", id)
	}
	return s.projects[i].Clone(), nil
}

// CreateProject appends a project built from a partial payload.
func (s *Store) CreateProject(ctx context.Context, f models.Fields) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, discarded := models.NewProject(f)
	s.logDiscarded("project", project.ID, discarded)

	s.projects = append(s.projects, project)
	if err := s.saveProjects(ctx); err != nil {
		return models.Project{}, err
	}
	return project.Clone(), nil
}

// UpdateProject applies a partial payload to a project.
func (s *Store) UpdateProject(ctx context.Context, id string, f models.Fields) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(id)
	if i < 0 {
		return models.Project{}, notFound("project", id)
	}

	s.logDiscarded("project", id, s.projects[i].Apply(f))
	if err := s.saveProjects(ctx); err != nil {
		return models.Project{}, err
	}
	return s.projects[i].Clone(), nil
}

// DeleteProject deletes a project and its entries.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(id)
	if i < 0 {
		return notFound("project", id)
	}

	s.projects = append(s.projects[:i], s.projects[i+1:]...)
	return s.saveProjects(ctx)
}

// AddEntry appends a log entry to a project.
func (s *Store) AddEntry(ctx context.Context, projectID string, f models.Fields) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(projectID)
	if i < 0 {
		return models.Entry{}, notFound("project", projectID)
	}

	entry, discarded := models.NewEntry(f, s.now())
	s.logDiscarded("entry", entry.ID, discarded)
	s.projects[i].Entries = append(s.projects[i].Entries, entry)

	if err := s.saveProjects(ctx); err != nil {
		return models.Entry{}, err
	}
	return entry, nil
}

// DeleteEntry removes a log entry from a project.
func (s *Store) DeleteEntry(ctx context.Context, projectID, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(projectID)
	if i < 0 {
		return notFound("project", projectID)
	}
	j := s.projects[i].EntryIndex(entryID)
	if j < 0 {
		return notFound("entry", entryID)
	}

	entries := s.projects[i].Entries
	s.projects[i].Entries = append(entries[:j:j], entries[j+1:]...)
	return s.saveProjects(ctx)
}
