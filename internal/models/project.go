package models

import (
	"strings"
	"time"

	"todocal/internal/schedule"
)

// Placeholders substituted for empty names and summaries.
const (
	DefaultProjectName  = "Untitled project"
	DefaultEntrySummary = "No summary"
)

// Entry is a dated log line owned by a project.
type Entry struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Summary string `json:"summary"`
}

// Project groups a repository link and a running log of entries.
type Project struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Repo        string  `json:"repo"`
	Status      Status  `json:"status"`
	Description string  `json:"description"`
	Entries     []Entry `json:"entries"`
}

// NewProject builds a project from a create payload; entries start empty.
func NewProject(f Fields) (Project, []string) {
	p := Project{
		ID:      NewID(),
		Name:    DefaultProjectName,
		Status:  StatusActive,
		Entries: []Entry{},
	}
	discarded := p.Apply(f)
	return p, discarded
}

// DecodeProject rebuilds a persisted project including its id and entries.
func DecodeProject(f Fields, now time.Time) Project {
	p, _ := NewProject(f)
	if id, ok := f.Text("id"); ok && strings.TrimSpace(id) != "" {
		p.ID = id
	}
	for _, ef := range f.Objects("entries") {
		e, _ := NewEntry(ef, now)
		if id, ok := ef.Text("id"); ok && strings.TrimSpace(id) != "" {
			e.ID = id
		}
		p.Entries = append(p.Entries, e)
	}
	return p
}

// Apply changes the fields present in f. An invalid status or empty name
// leaves the field unchanged; an invalid repo clears it.
func (p *Project) Apply(f Fields) []string {
	var discarded []string
	reject := func(key string) { discarded = append(discarded, key) }

	if f.Has("name") {
		if s, ok := f.Text("name"); ok && strings.TrimSpace(s) != "" {
			p.Name = strings.TrimSpace(s)
		} else {
			reject("name")
		}
	}
	if f.Has("repo") {
		s, _ := f.Text("repo")
		repo, ok := NormalizeRepo(s)
		p.Repo = repo
		if !ok {
			reject("repo")
		}
	}
	if f.Has("status") {
		s, _ := f.Text("status")
		if st, ok := ParseStatus(s); ok {
			p.Status = st
		} else {
			reject("status")
		}
	}
	if f.Has("description") {
		if s, ok := f.Text("description"); ok {
			p.Description = strings.TrimSpace(s)
		} else {
			reject("description")
		}
	}

	return discarded
}

// EntryIndex returns the position of the entry with id, or -1.
func (p *Project) EntryIndex(id string) int {
	for i := range p.Entries {
		if p.Entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no mutable state with p.
func (p Project) Clone() Project {
	p.Entries = append([]Entry{}, p.Entries...)
	return p
}

// NewEntry builds an entry from {date, summary}; the date falls back to
// today and the summary to a placeholder.
func NewEntry(f Fields, now time.Time) (Entry, []string) {
	var discarded []string

	raw, _ := f.Text("date")
	date, ok := schedule.NormalizeDate(strings.TrimSpace(raw), now)
	if !ok && f.Has("date") {
		discarded = append(discarded, "date")
	}

	summary, _ := f.Text("summary")
	summary = strings.TrimSpace(summary)
	if summary == "" {
		summary = DefaultEntrySummary
		if f.Has("summary") {
			discarded = append(discarded, "summary")
		}
	}

	return Entry{ID: NewID(), Date: date, Summary: summary}, discarded
}
