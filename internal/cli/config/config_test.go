package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/gosass/internal/compiler/output"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(oldWd)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nested", cfg.Style)
	assert.Equal(t, output.Nested, cfg.OutputStyle())
	assert.Equal(t, 5, cfg.Precision)
	assert.Equal(t, "scss", cfg.InputDir)
	assert.Equal(t, "css", cfg.OutputDir)
	assert.Equal(t, 256, cfg.Cache.Size)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, []string{"*.scss", "*.sass"}, cfg.Watch.Patterns)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoadWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
style: compressed
precision: 3
include_paths:
  - vendor
  - lib
output_dir: public/css
cache:
  size: 16
  ttl: 1h
server:
  port: 8080
  host: 0.0.0.0
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "gosass.yml"), []byte(configContent), 0644))

	cfg, err := LoadFrom(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, output.Compressed, cfg.OutputStyle())
	assert.Equal(t, 3, cfg.Precision)
	assert.Equal(t, []string{"vendor", "lib"}, cfg.IncludePaths)
	assert.Equal(t, "public/css", cfg.OutputDir)
	assert.Equal(t, "scss", cfg.InputDir)
	assert.Equal(t, 16, cfg.Cache.Size)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "gosass.yml"), []byte("style: compact\n"), 0644))
	t.Setenv("GOSASS_STYLE", "expanded")
	t.Setenv("GOSASS_SERVER_PORT", "9000")

	cfg, err := LoadFrom(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, output.Expanded, cfg.OutputStyle())
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown style", "style: pretty\n", "style"},
		{"negative precision", "precision: -1\n", "precision"},
		{"port range", "server:\n  port: 70000\n", "server.port"},
		{"redis scheme", "cache:\n  redis_url: http://localhost\n", "cache.redis_url"},
		{"malformed yaml", "style: [\n", "failed to read config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "gosass.yml"), []byte(tt.content), 0644))
			_, err := LoadFrom(tmpDir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Defaults()
	require.NoError(t, err)
	cfg.Style = "expanded"
	cfg.IncludePaths = []string{"vendor"}
	cfg.Cache.RedisURL = "redis://localhost:6379/0"
	cfg.Server.Port = 4000

	require.NoError(t, Write(filepath.Join(tmpDir, "gosass.yml"), cfg))
	assert.True(t, Exists(tmpDir))

	loaded, err := LoadFrom(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefaultsReportsBadEnvironment(t *testing.T) {
	t.Setenv("GOSASS_PRECISION", "lots")
	_, err := Defaults()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config")
}

func TestWriteRejectsInvalidConfig(t *testing.T) {
	cfg, err := Defaults()
	require.NoError(t, err)
	cfg.Style = "fancy"
	assert.Error(t, Write(filepath.Join(t.TempDir(), "gosass.yml"), cfg))
}

func TestGetProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "gosass.yaml"), []byte("style: nested\n"), 0644))

	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(nested))
	defer os.Chdir(oldWd)

	got, err := GetProjectRoot()
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, want, gotResolved)
}
