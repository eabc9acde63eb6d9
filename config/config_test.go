package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	vtypes "img2svg/type"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":9090"
  mode: release
redis:
  ttl: 2h
convert:
  max_concurrent: 8
  preset: potrace
  boundary_order: moore
storage:
  s3_bucket: vectors
defaults:
  complexity: 0.9
  path_smoothing: 0.1
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Port)
	require.Equal(t, "release", cfg.Server.Mode)
	require.Equal(t, 2*time.Hour, cfg.Redis.TTL)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 8, cfg.Convert.MaxConcurrent)
	require.Equal(t, 30, cfg.Convert.QueueTimeout)
	require.Equal(t, "potrace", cfg.Convert.Preset)
	require.Equal(t, "moore", cfg.Convert.BoundaryOrder)
	require.Equal(t, "vectors", cfg.Storage.S3Bucket)
	require.Equal(t, vtypes.Settings{Complexity: 0.9, ColorSimplification: 0.5, PathSmoothing: 0.1}, cfg.Defaults)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("IMG2SVG_CONVERT_MAX_CONCURRENT", "7")
	t.Setenv("IMG2SVG_SERVER_PORT", ":7000")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Convert.MaxConcurrent)
	require.Equal(t, ":7000", cfg.Server.Port)
}

func TestInvalidDefaults(t *testing.T) {
	path := writeConfig(t, "defaults:\n  complexity: 3\n")
	_, err := Load(path)
	require.ErrorIs(t, err, vtypes.ErrInvalidInput)

	// New 退回默认值
	cfg := New(path)
	require.Equal(t, vtypes.DefaultSettings(), cfg.Defaults)
}

func TestMissingFileFallsBack(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	cfg := New(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Equal(t, Default(), cfg)
	require.Equal(t, 3, cfg.Convert.MaxConcurrent)
	require.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	require.Equal(t, int64(10*1024*1024), cfg.Upload.MaxSize)
}
