package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	for _, key := range []string{"PORT", "DATA_DIR", "TODOCAL_CONFIG", "TODOCAL_DATA_DIR", "TODOCAL_STORAGE", "TODOCAL_EXAMPLE_FILE",
		"TODOCAL_ADDR", "TODOCAL_PORT", "TODOCAL_LOG_LEVEL", "TODOCAL_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "todocal", cmd.Use)
	assert.NotNil(t, cmd.RunE, "root runs the server by default")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, cmdName := range []string{"serve", "rpc"} {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for flag, def := range map[string]string{
		"config":     "",
		"addr":       "127.0.0.1",
		"port":       "8080",
		"data-dir":   "./data",
		"storage":    "json",
		"log-level":  "info",
		"log-format": "text",
	} {
		f := cmd.PersistentFlags().Lookup(flag)
		require.NotNil(t, f, flag)
		assert.Equal(t, def, f.DefValue, flag)
	}
}

func runRPC(t *testing.T, input string, args ...string) []map[string]any {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"rpc"}, args...))

	require.NoError(t, cmd.Execute(), stderr.String())

	var responses []map[string]any
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		var resp map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestRPCCommand_JSONStorage(t *testing.T) {
	dir := isolate(t)
	dataDir := filepath.Join(dir, "data")

	responses := runRPC(t,
		`{"jsonrpc":"2.0","id":1,"method":"add_task","params":{"title":"from agent"}}`+"\n",
		"--data-dir", dataDir, "--log-level", "error",
	)
	require.Len(t, responses, 1)
	assert.Nil(t, responses[0]["error"])
	assert.FileExists(t, filepath.Join(dataDir, "tasks.json"))

	responses = runRPC(t,
		`{"jsonrpc":"2.0","id":2,"method":"list_tasks"}`+"\n",
		"--data-dir", dataDir,
	)
	require.Len(t, responses, 1)
	result := responses[0]["result"].(map[string]any)
	tasks := result["tasks"].([]any)
	require.Len(t, tasks, 1)
	assert.Equal(t, "from agent", tasks[0].(map[string]any)["title"])
}

func TestRPCCommand_SQLiteStorage(t *testing.T) {
	dir := isolate(t)
	dataDir := filepath.Join(dir, "db")

	runRPC(t,
		`{"jsonrpc":"2.0","id":1,"method":"add_task","params":{"title":"in sqlite"}}`+"\n",
		"--data-dir", dataDir, "--storage", "sqlite",
	)
	assert.FileExists(t, filepath.Join(dataDir, "todocal.db"))
	assert.NoFileExists(t, filepath.Join(dataDir, "tasks.json"))

	responses := runRPC(t,
		`{"jsonrpc":"2.0","id":2,"method":"list_tasks"}`+"\n",
		"--data-dir", dataDir, "--storage", "sqlite",
	)
	require.Len(t, responses, 1)
	tasks := responses[0]["result"].(map[string]any)["tasks"].([]any)
	assert.Len(t, tasks, 1)
}

func TestRPCCommand_SeedsFromExampleFile(t *testing.T) {
	dir := isolate(t)
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "tasks.example.json"),
		[]byte(`[{"title":"Welcome","date":"2099-01-01"}]`), 0644))

	responses := runRPC(t,
		`{"jsonrpc":"2.0","id":1,"method":"list_tasks"}`+"\n",
		"--data-dir", dataDir,
	)
	require.Len(t, responses, 1)
	tasks := responses[0]["result"].(map[string]any)["tasks"].([]any)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Welcome", tasks[0].(map[string]any)["title"])
}

func TestCommand_InvalidConfig(t *testing.T) {
	isolate(t)

	cmd := NewRootCommand()
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"rpc", "--storage", "mongo"})

	assert.Error(t, cmd.Execute())
}
