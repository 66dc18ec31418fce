package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNodeConfigParsesBasicFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bpnode.yaml")
	yamlContent := `
node_number: 42
pool_capacity: 256
max_routes: 16
cache:
  enabled: true
admin:
  addr: "127.0.0.1:7070"
metrics:
  interval_seconds: 15
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))

	cfg, err := loadNodeConfig(path)
	require.NoError(t, err)

	assert.EqualValues(t, 42, cfg.NodeNumber)
	assert.Equal(t, 256, cfg.PoolCapacity)
	assert.Equal(t, 16, cfg.MaxRoutes)
	assert.True(t, cfg.EnableCache)
	assert.Equal(t, "127.0.0.1:7070", cfg.AdminAddr)
	assert.Equal(t, int64(15), cfg.MetricsInterval.Milliseconds()/1000)
}

func TestLoadNodeConfigRejectsBadEncryptionKeyHex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bpnode.yaml")
	yamlContent := `
node_number: 1
cache:
  enabled: true
  offload_encryption_key_hex: "not-hex"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))

	_, err := loadNodeConfig(path)
	assert.Error(t, err)
}

func TestLoadNodeConfigMissingFile(t *testing.T) {
	_, err := loadNodeConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
