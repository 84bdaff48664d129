package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"todocal/internal/models"
)

func TestCreateProjectHandler_Success(t *testing.T) {
	h, _, _ := setupTestHandlers(t)

	body := `{"name":"New Project","repo":"https://github.com/me/new","description":"A new project"}`
	rec := httptest.NewRecorder()
	h.CreateProject(rec, httptest.NewRequest("POST", "/api/projects", strings.NewReader(body)))

	expectStatus(t, rec, http.StatusOK)
	p := decode[models.Project](t, rec)
	if p.Name != "New Project" || p.Status != models.StatusActive {
		t.Errorf("unexpected project %+v", p)
	}
	if p.Entries == nil || len(p.Entries) != 0 {
		t.Errorf("expected empty entries, got %v", p.Entries)
	}
}

func TestUpdateProjectHandler_InvalidRepoCleared(t *testing.T) {
	h, s, _ := setupTestHandlers(t)
	project := mustCreateProject(t, s, `{"name":"Original","repo":"https://example.com/r"}`)

	req := withURLParams(httptest.NewRequest("PUT", "/api/projects/"+project.ID, strings.NewReader(`{"repo":"javascript:alert(1)","status":"unknown"}`)), "id", project.ID)
	rec := httptest.NewRecorder()
	h.UpdateProject(rec, req)

	expectStatus(t, rec, http.StatusOK)
	updated := decode[models.Project](t, rec)
	if updated.Repo != "" {
		t.Errorf("expected repo cleared, got %q", updated.Repo)
	}
	if updated.Status != models.StatusActive {
		t.Errorf("expected status unchanged, got %s", updated.Status)
	}
}

func TestListProjectsHandler_StatusFilter(t *testing.T) {
	h, s, _ := setupTestHandlers(t)
	mustCreateProject(t, s, `{"name":"a"}`)
	mustCreateProject(t, s, `{"name":"b","status":"paused"}`)

	rec := httptest.NewRecorder()
	h.ListProjects(rec, httptest.NewRequest("GET", "/api/projects?status=paused", nil))
	expectStatus(t, rec, http.StatusOK)
	if projects := decode[[]models.Project](t, rec); len(projects) != 1 || projects[0].Name != "b" {
		t.Errorf("unexpected projects %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ListProjects(rec, httptest.NewRequest("GET", "/api/projects", nil))
	if projects := decode[[]models.Project](t, rec); len(projects) != 2 {
		t.Errorf("expected 2 projects, got %d", len(projects))
	}

	rec = httptest.NewRecorder()
	h.ListProjects(rec, httptest.NewRequest("GET", "/api/projects?status=bogus", nil))
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestEntryHandlers(t *testing.T) {
	h, s, _ := setupTestHandlers(t)
	project := mustCreateProject(t, s, `{"name":"Log"}`)

	req := withURLParams(httptest.NewRequest("POST", "/", strings.NewReader(`{"summary":""}`)), "id", project.ID)
	rec := httptest.NewRecorder()
	h.AddEntry(rec, req)

	expectStatus(t, rec, http.StatusOK)
	entry := decode[models.Entry](t, rec)
	if entry.Summary != models.DefaultEntrySummary || entry.Date != "2026-03-10" {
		t.Errorf("unexpected entry %+v", entry)
	}

	req = withURLParams(httptest.NewRequest("DELETE", "/", nil), "id", project.ID, "eid", entry.ID)
	rec = httptest.NewRecorder()
	h.DeleteEntry(rec, req)
	expectStatus(t, rec, http.StatusOK)

	req = withURLParams(httptest.NewRequest("DELETE", "/", nil), "id", project.ID, "eid", entry.ID)
	rec = httptest.NewRecorder()
	h.DeleteEntry(rec, req)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestDeleteProjectHandler_Success(t *testing.T) {
	h, s, _ := setupTestHandlers(t)
	project := mustCreateProject(t, s, `{"name":"Test"}`)

	req := withURLParams(httptest.NewRequest("DELETE", "/api/projects/"+project.ID, nil), "id", project.ID)
	rec := httptest.NewRecorder()
	h.DeleteProject(rec, req)
	expectStatus(t, rec, http.StatusOK)

	if _, err := s.GetProject(context.Background(), project.ID); err == nil {
		t.Error("expected project to be deleted")
	}

	rec = httptest.NewRecorder()
	h.DeleteProject(rec, req)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestGetProjectHandler_NotFound(t *testing.T) {
	h, _, _ := setupTestHandlers(t)

	req := withURLParams(httptest.NewRequest("GET", "/api/projects/999", nil), "id", "999")
	rec := httptest.NewRecorder()
	h.GetProject(rec, req)

	expectStatus(t, rec, http.StatusNotFound)
	expectDetail(t, rec)
}
