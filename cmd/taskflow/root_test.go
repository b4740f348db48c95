package main

import (
	"bytes"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/db"
	"github.com/tgienger/taskflow/internal/testutil"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv(passwordEnv, "")

	logger := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(logger)
		log.SetOutput(os.Stderr)
	})
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	isolate(t)
	backend := testutil.NewBackend(t)
	backend.AddUser(testutil.User{Email: "ada@example.com", Password: "secret", FullName: "Ada Lovelace"})
	api := "--api-url=" + backend.URL()

	out, err := execute(t, "", "whoami", api)
	require.NoError(t, err)
	assert.Equal(t, "Not logged in\n", out)

	out, err = execute(t, "secret\n", "login", "--email", "ada@example.com", "--password-stdin", api)
	require.NoError(t, err)
	assert.Equal(t, "Logged in as Ada Lovelace <ada@example.com>\n", out)

	out, err = execute(t, "", "whoami", api)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace <ada@example.com>\n", out)

	out, err = execute(t, "", "logout", api)
	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)

	out, err = execute(t, "", "whoami", api)
	require.NoError(t, err)
	assert.Equal(t, "Not logged in\n", out)
}

func TestWhoamiDiscardsUnreadableToken(t *testing.T) {
	dir := isolate(t)
	dataDir := filepath.Join(dir, "data", "taskflow")

	store, err := db.New(dataDir)
	require.NoError(t, err)
	require.NoError(t, store.SetToken("not-a-token"))
	require.NoError(t, store.Close())

	out, err := execute(t, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in\n", out)

	store, err = db.New(dataDir)
	require.NoError(t, err)
	defer store.Close()
	token, err := store.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	help, err := execute(t, "", "whoami", "--help")
	require.NoError(t, err)
	assert.Contains(t, help, "signs you out")
}

func TestLoginWrongPassword(t *testing.T) {
	isolate(t)
	backend := testutil.NewBackend(t)
	backend.AddUser(testutil.User{Email: "ada@example.com", Password: "secret"})

	_, err := execute(t, "nope\n", "login", "-e", "ada@example.com", "--password-stdin", "--api-url", backend.URL())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")

	out, err := execute(t, "", "whoami", "--api-url", backend.URL())
	require.NoError(t, err)
	assert.Equal(t, "Not logged in\n", out)
}

func TestLoginPasswordFromEnv(t *testing.T) {
	isolate(t)
	backend := testutil.NewBackend(t)
	backend.AddUser(testutil.User{Email: "ada@example.com", Password: "secret"})
	t.Setenv(passwordEnv, "secret")

	out, err := execute(t, "", "login", "-e", "ada@example.com", "--api-url", backend.URL())
	require.NoError(t, err)
	assert.Equal(t, "Logged in as ada@example.com\n", out)
}

func TestLoginNeedsPassword(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "login", "-e", "ada@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), passwordEnv)
}

func TestConfigInitAndShow(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "taskflow.yaml")

	out, err := execute(t, "", "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = execute(t, "", "config", "init", "--config", path)
	assert.Error(t, err, "init must not clobber an existing file")

	_, err = execute(t, "", "config", "init", "--force", "--config", path)
	assert.NoError(t, err)

	t.Setenv("TASKFLOW_LOG_LEVEL", "debug")
	out, err = execute(t, "", "config", "show", "--config", path, "--api-url", "http://example.test/api")
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: debug")
	assert.Contains(t, out, "api_url: http://example.test/api")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "taskflow dev (commit: none, built: unknown)\n", out)
}
