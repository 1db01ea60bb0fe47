package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	l := Default("/repo")
	assert.Equal(t, filepath.Join("/repo", "plan"), l.PlanDir())
	assert.Equal(t, filepath.Join("/repo", "contracts"), l.ContractsDir())
	assert.Equal(t, filepath.Join("/repo", "telemetry"), l.TelemetryDir())
	assert.Equal(t, filepath.Join("/repo", "supabase"), l.DatabaseDir())
	assert.Equal(t, filepath.Join("/repo", "supabase", "migrations"), l.MigrationsDir())
	assert.Equal(t, filepath.Join("/repo", "python", "trains"), l.TrainsDir())
	assert.Equal(t, filepath.Join("/repo", "plan", "_trains"), l.TrainSpecsDir())
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		l, err := Load(filepath.Join(t.TempDir(), "urntrace.yaml"))
		require.NoError(t, err)
		assert.Equal(t, ".", l.Root)
		assert.Equal(t, "plan", l.Dirs.Plan)
	})

	t.Run("file overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "urntrace.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
root: /scanned
dirs:
  database: db
`), 0o644))

		l, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/scanned", l.Root)
		assert.Equal(t, filepath.Join("/scanned", "db"), l.DatabaseDir())
		assert.Equal(t, "plan", l.Dirs.Plan, "unset fields keep defaults")
	})

	t.Run("environment wins over file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "urntrace.yaml")
		require.NoError(t, os.WriteFile(path, []byte("root: /from-file\n"), 0o644))
		t.Setenv("URNTRACE_ROOT", "/from-env")

		l, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/from-env", l.Root)
	})

	t.Run("malformed yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "urntrace.yaml")
		require.NoError(t, os.WriteFile(path, []byte("dirs: ["), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
