package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"addr: localhost:9000\nsecure: true\ninterval: 250ms\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", cfg.Addr)
	assert.True(t, cfg.Secure)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval.Duration)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "/events", cfg.SSEPath)
	assert.Equal(t, "/ws", cfg.WSPath)
}

func TestLoadConfigBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interval: soon\n"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDurationRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(Duration{2 * time.Second})
	require.NoError(t, err)
	var d Duration
	require.NoError(t, yaml.Unmarshal(out, &d))
	assert.Equal(t, 2*time.Second, d.Duration)
}
