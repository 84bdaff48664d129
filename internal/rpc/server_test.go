package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todocal/internal/models"
	"todocal/internal/store"
)

func setupTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	backend, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	s, err := store.Open(context.Background(), backend, store.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewServer(s, nil), s
}

type rawResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// roundTrip feeds lines to the server and returns its responses in order.
func roundTrip(t *testing.T, srv *Server, lines ...string) []rawResponse {
	t.Helper()
	var out strings.Builder
	err := srv.Serve(context.Background(), strings.NewReader(strings.Join(lines, "\n")), &out)
	require.NoError(t, err)

	var responses []rawResponse
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var resp rawResponse
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp), scanner.Text())
		assert.Equal(t, "2.0", resp.JSONRPC)
		responses = append(responses, resp)
	}
	return responses
}

func TestServe_TaskLifecycle(t *testing.T) {
	srv, s := setupTestServer(t)

	responses := roundTrip(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"add_task","params":{"title":"Call bank","priority":"p1","date":"2026-03-01"}}`,
		`{"jsonrpc":"2.0","id":2,"method":"list_tasks"}`,
	)
	require.Len(t, responses, 2)
	require.Nil(t, responses[0].Error)

	var task models.Task
	require.NoError(t, json.Unmarshal(responses[0].Result, &task))
	assert.Equal(t, "Call bank", task.Title)
	assert.Equal(t, models.PriorityP1, task.Priority)
	assert.JSONEq(t, "1", string(responses[0].ID))

	var list store.TaskList
	require.NoError(t, json.Unmarshal(responses[1].Result, &list))
	assert.Equal(t, 1, list.CarriedOver)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "2026-03-10", list.Tasks[0].Date)

	responses = roundTrip(t, srv,
		`{"jsonrpc":"2.0","id":"u","method":"update_task","params":{"id":"`+task.ID+`","done":true,"notes":"done by agent"}}`,
		`{"jsonrpc":"2.0","id":"d","method":"delete_task","params":{"id":"`+task.ID+`"}}`,
	)
	require.Len(t, responses, 2)
	require.Nil(t, responses[0].Error)

	var updated models.Task
	require.NoError(t, json.Unmarshal(responses[0].Result, &updated))
	assert.True(t, updated.Done)
	assert.Equal(t, "done by agent", updated.Notes)
	assert.Equal(t, task.ID, updated.ID)

	assert.JSONEq(t, `{"ok":true}`, string(responses[1].Result))
	_, err := s.GetTask(context.Background(), task.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestServe_ListTasksFilters(t *testing.T) {
	srv, s := setupTestServer(t)
	for _, body := range []string{
		`{"title":"a","date":"2026-03-12"}`,
		`{"title":"b","date":"2026-03-12","done":true}`,
		`{"title":"c","date":"2026-04-01"}`,
	} {
		f, err := models.ParseFields([]byte(body))
		require.NoError(t, err)
		_, err = s.CreateTask(context.Background(), f)
		require.NoError(t, err)
	}

	responses := roundTrip(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"list_tasks","params":{"date":"2026-03-12","include_done":false}}`,
		`{"jsonrpc":"2.0","id":2,"method":"list_tasks","params":{"year":2026,"month":4}}`,
		`{"jsonrpc":"2.0","id":3,"method":"list_tasks","params":{"month":13}}`,
	)
	require.Len(t, responses, 3)

	var list store.TaskList
	require.NoError(t, json.Unmarshal(responses[0].Result, &list))
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "a", list.Tasks[0].Title)

	require.NoError(t, json.Unmarshal(responses[1].Result, &list))
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "c", list.Tasks[0].Title)

	require.NotNil(t, responses[2].Error)
	assert.Equal(t, CodeInvalidParams, responses[2].Error.Code)
}

func TestServe_Projects(t *testing.T) {
	srv, s := setupTestServer(t)
	f, err := models.ParseFields([]byte(`{"name":"Agent tools","status":"paused"}`))
	require.NoError(t, err)
	project, err := s.CreateProject(context.Background(), f)
	require.NoError(t, err)

	responses := roundTrip(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"add_project_entry","params":{"project_id":"`+project.ID+`","summary":"wired rpc"}}`,
		`{"jsonrpc":"2.0","id":2,"method":"list_projects","params":{"status":"paused"}}`,
		`{"jsonrpc":"2.0","id":3,"method":"list_projects","params":{"status":"active"}}`,
	)
	require.Len(t, responses, 3)

	var entry models.Entry
	require.NoError(t, json.Unmarshal(responses[0].Result, &entry))
	assert.Equal(t, "wired rpc", entry.Summary)
	assert.Equal(t, "2026-03-10", entry.Date)

	var projects []models.Project
	require.NoError(t, json.Unmarshal(responses[1].Result, &projects))
	require.Len(t, projects, 1)
	require.Len(t, projects[0].Entries, 1)

	require.NoError(t, json.Unmarshal(responses[2].Result, &projects))
	assert.Empty(t, projects)
}

func TestServe_Errors(t *testing.T) {
	srv, _ := setupTestServer(t)

	tests := []struct {
		name string
		line string
		code int
	}{
		{"parse error", `{"jsonrpc":"2.0","id":1,`, CodeParseError},
		{"not an object", `[1,2]`, CodeInvalidRequest},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"list_tasks"}`, CodeInvalidRequest},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, CodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"drop_tables"}`, CodeMethodNotFound},
		{"params not an object", `{"jsonrpc":"2.0","id":1,"method":"add_task","params":["x"]}`, CodeInvalidParams},
		{"missing id", `{"jsonrpc":"2.0","id":1,"method":"delete_task","params":{}}`, CodeInvalidParams},
		{"unknown task", `{"jsonrpc":"2.0","id":1,"method":"update_task","params":{"id":"nope"}}`, CodeNotFound},
		{"unknown project", `{"jsonrpc":"2.0","id":1,"method":"add_project_entry","params":{"project_id":"nope"}}`, CodeNotFound},
		{"invalid status", `{"jsonrpc":"2.0","id":1,"method":"list_projects","params":{"status":"gone"}}`, CodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := roundTrip(t, srv, tt.line)
			require.Len(t, responses, 1)
			require.NotNil(t, responses[0].Error)
			assert.Equal(t, tt.code, responses[0].Error.Code)
			assert.NotEmpty(t, responses[0].Error.Message)
		})
	}
}

func TestServe_NotificationsAndBlankLines(t *testing.T) {
	srv, s := setupTestServer(t)

	responses := roundTrip(t, srv,
		``,
		`{"jsonrpc":"2.0","method":"add_task","params":{"title":"silent"}}`,
		`   `,
		`{"jsonrpc":"2.0","id":7,"method":"list_tasks"}`,
	)
	require.Len(t, responses, 1)
	assert.JSONEq(t, "7", string(responses[0].ID))

	list, err := s.ListTasks(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "silent", list.Tasks[0].Title)
}

func TestServe_ParseErrorHasNullID(t *testing.T) {
	srv, _ := setupTestServer(t)

	var out strings.Builder
	require.NoError(t, srv.Serve(context.Background(), strings.NewReader("nope\n"), &out))
	assert.Contains(t, out.String(), `"id":null`)
}

func TestServe_StopsOnCancelledContext(t *testing.T) {
	srv, _ := setupTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out strings.Builder
	err := srv.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"list_tasks"}`+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
