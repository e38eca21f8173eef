package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBundle(t *testing.T) Bundle {
	t.Helper()
	return Bundle{
		Path: filepath.Join(t.TempDir(), ".env"),
		Values: map[string]string{
			"GEMINI_API_KEY":  "gem-123",
			"USDA_API_KEY":    "usda-456",
			"WEATHER_API_KEY": "wthr-789",
		},
	}
}

func TestWrite_PermissionsAndContent(t *testing.T) {
	bundle := testBundle(t)
	require.NoError(t, Write(bundle))

	info, err := os.Stat(bundle.Path)
	require.NoError(t, err)
	assert.Equal(t, FileMode, info.Mode().Perm(), "secrets file must be owner read/write only")

	raw, err := os.ReadFile(bundle.Path)
	require.NoError(t, err)
	content := string(raw)

	for key, value := range bundle.Values {
		line := key + `="` + value + `"`
		assert.Equal(t, 1, strings.Count(content, line), "each key appears exactly once")
	}
}

func TestWrite_OverwritesExistingFile(t *testing.T) {
	bundle := testBundle(t)
	require.NoError(t, os.WriteFile(bundle.Path, []byte(`GEMINI_API_KEY="stale"`+"\n"), 0o644))

	require.NoError(t, Write(bundle))

	raw, err := os.ReadFile(bundle.Path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `GEMINI_API_KEY="gem-123"`)
	assert.NotContains(t, string(raw), "stale")

	info, err := os.Stat(bundle.Path)
	require.NoError(t, err)
	assert.Equal(t, FileMode, info.Mode().Perm(), "permissions are tightened on overwrite")
}

func TestWrite_UnwritableDirFails(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { os.Chmod(dir, 0o700) })

	bundle := Bundle{
		Path:   filepath.Join(dir, ".env"),
		Values: map[string]string{"GEMINI_API_KEY": "x"},
	}
	err := Write(bundle)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSecretWrite)

	_, statErr := os.Stat(bundle.Path)
	assert.True(t, os.IsNotExist(statErr), "no partial file is left behind")
}
