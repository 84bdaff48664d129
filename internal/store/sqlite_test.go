package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todocal/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteBackend {
	t.Helper()
	backend, err := NewSQLiteBackend(":memory:")
	require.NoError(t, err, "failed to create test backend")
	t.Cleanup(func() { backend.Close() })
	return backend
}

func TestSQLiteBackend_LoadMissing(t *testing.T) {
	backend := setupTestDB(t)

	_, err := backend.Load(context.Background(), TasksDocument)
	assert.ErrorIs(t, err, ErrNoDocument)

	rev, err := backend.Revision(context.Background(), TasksDocument)
	require.NoError(t, err)
	assert.Zero(t, rev)
}

func TestSQLiteBackend_SaveBumpsRevision(t *testing.T) {
	backend := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, TasksDocument, []byte(`[]`)))
	require.NoError(t, backend.Save(ctx, TasksDocument, []byte(`[{"id":"a"}]`)))

	data, err := backend.Load(ctx, TasksDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(data))

	rev, err := backend.Revision(ctx, TasksDocument)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rev)

	rev, err = backend.Revision(ctx, ProjectsDocument)
	require.NoError(t, err)
	assert.Zero(t, rev)
}

func TestSQLiteBackend_MigrationsRecorded(t *testing.T) {
	backend := setupTestDB(t)

	var count int
	err := backend.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count)
	require.NoError(t, err)

	migrations, err := loadMigrations()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
	assert.NoError(t, runMigrations(backend.db), "rerunning migrations is a no-op")
}

func TestParseMigrationFilename(t *testing.T) {
	version, name, err := parseMigrationFilename("0002_add_document_revision.sql")
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.Equal(t, "add_document_revision", name)

	_, _, err = parseMigrationFilename("nounderscore.sql")
	assert.Error(t, err)
	_, _, err = parseMigrationFilename("abc_name.sql")
	assert.Error(t, err)
}

func TestSQLiteBackend_StoreReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "todocal.db")
	ctx := context.Background()

	backend, err := NewSQLiteBackend(dbPath)
	require.NoError(t, err)
	s, err := Open(ctx, backend, WithClock(testClock))
	require.NoError(t, err)

	task, err := s.CreateTask(ctx, fields(t, `{"title":"in sqlite","priority":"P0"}`))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	backend, err = NewSQLiteBackend(dbPath)
	require.NoError(t, err)
	s, err = Open(ctx, backend, WithClock(testClock))
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "in sqlite", got.Title)
	assert.Equal(t, models.PriorityP0, got.Priority)
}
