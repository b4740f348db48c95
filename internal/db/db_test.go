package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestTokenRoundTrip(t *testing.T) {
	database := openTestDB(t)

	token, err := database.Token()
	require.NoError(t, err)
	assert.Empty(t, token, "fresh database has no token")

	require.NoError(t, database.SetToken("abc.def.ghi"))
	token, err = database.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, database.SetToken("second"))
	token, _ = database.Token()
	assert.Equal(t, "second", token, "SetToken overwrites")

	require.NoError(t, database.ClearToken())
	token, err = database.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestClearTokenWhenAbsent(t *testing.T) {
	database := openTestDB(t)
	assert.NoError(t, database.ClearToken())
}

func TestTokenSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.SetToken("persisted"))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	token, err := second.Token()
	require.NoError(t, err)
	assert.Equal(t, "persisted", token)
}

func TestLastProjectID(t *testing.T) {
	database := openTestDB(t)

	assert.Equal(t, int64(0), database.LastProjectID())

	require.NoError(t, database.SetLastProjectID(42))
	assert.Equal(t, int64(42), database.LastProjectID())

	require.NoError(t, database.SetLastProjectID(0))
	assert.Equal(t, int64(0), database.LastProjectID())

	require.NoError(t, database.SetSetting(lastProjectKey, "not-a-number"))
	assert.Equal(t, int64(0), database.LastProjectID())
}

func TestNewCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "taskflow")

	database, err := New(dir)
	require.NoError(t, err)
	defer database.Close()

	_, err = os.Stat(filepath.Join(dir, FileName))
	assert.NoError(t, err)
}

func TestDefaultDataDirUsesXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	dir, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg-data", "taskflow"), dir)
}
