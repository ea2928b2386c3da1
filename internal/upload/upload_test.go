package upload

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

var filenamePattern = regexp.MustCompile(`^upload_\d{8}_\d{6}_[0-9a-f]{4}\.json$`)

func TestStore(t *testing.T) {
	t.Run("persist", func(t *testing.T) {
		dir := t.TempDir()
		store := New(dir)
		store.now = func() time.Time {
			return time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)
		}

		value := map[string]any{"name": "test", "items": []any{1.0, 2.0}}
		public, err := store.PersistJSON(value)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(public, URLPrefix+"upload_20240102_150405_"))

		name := strings.TrimPrefix(public, URLPrefix)
		require.Regexp(t, filenamePattern, name)

		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		require.Contains(t, string(data), "\n  \"")

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Equal(t, value, decoded)
	})

	t.Run("unique names", func(t *testing.T) {
		store := New(t.TempDir())
		first, err := store.PersistJSON([]any{})
		require.NoError(t, err)
		second, err := store.PersistJSON([]any{})
		require.NoError(t, err)
		// same second, so only the random suffix differs
		if first == second {
			t.Skip("suffix collision")
		}

		entries, err := os.ReadDir(store.Dir())
		require.NoError(t, err)
		require.Len(t, entries, 2)
	})

	t.Run("write fault", func(t *testing.T) {
		store := New(filepath.Join(t.TempDir(), "absent"))
		_, err := store.PersistJSON(map[string]any{})
		require.Error(t, err)
	})

	t.Run("unencodable", func(t *testing.T) {
		store := New(t.TempDir())
		_, err := store.PersistJSON(map[string]any{"ch": make(chan int)})
		require.Error(t, err)
	})
}
