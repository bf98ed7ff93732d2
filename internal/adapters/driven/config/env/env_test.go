package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_SetsUnsetVariables(t *testing.T) {
	path := writeEnv(t, "REPODOC_TEST_TOKEN=from-file\n# comment\nREPODOC_TEST_QUOTED=\"a b\"\n")
	t.Setenv("REPODOC_TEST_TOKEN", "")
	require.NoError(t, os.Unsetenv("REPODOC_TEST_TOKEN"))
	t.Setenv("REPODOC_TEST_QUOTED", "")
	require.NoError(t, os.Unsetenv("REPODOC_TEST_QUOTED"))

	require.NoError(t, Load(path, true))

	assert.Equal(t, "from-file", os.Getenv("REPODOC_TEST_TOKEN"))
	assert.Equal(t, "a b", os.Getenv("REPODOC_TEST_QUOTED"))
}

func TestLoad_NeverOverrides(t *testing.T) {
	path := writeEnv(t, "REPODOC_TEST_TOKEN=from-file\n")
	t.Setenv("REPODOC_TEST_TOKEN", "from-env")

	require.NoError(t, Load(path, true))

	assert.Equal(t, "from-env", os.Getenv("REPODOC_TEST_TOKEN"))
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.env")

	assert.NoError(t, Load(missing, false))
	assert.Error(t, Load(missing, true))
}

func TestLoad_DefaultFileOptional(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.NoError(t, Load("", false))
}

func TestLookup_EmptyIsUnset(t *testing.T) {
	t.Setenv("REPODOC_TEST_EMPTY", "")
	t.Setenv("REPODOC_TEST_SET", "x")

	_, ok := Lookup("REPODOC_TEST_EMPTY")
	assert.False(t, ok)

	v, ok := Lookup("REPODOC_TEST_SET")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}
