package taskctx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 0.7, cfg.Memory.HostFraction)
	assert.Equal(t, 1, cfg.Executor.DistributorParallelism)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
		errors []string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name: "aggregated",
			mutate: func(c *Config) {
				c.Memory.HostFraction = 2
				c.Executor.DistributorParallelism = 0
				c.Logging.Level = "loud"
			},
			errors: []string{"memory.hostFraction", "executor.distributorParallelism", "logging.level"},
		},
		{
			name:   "negative task bytes",
			mutate: func(c *Config) { c.Memory.TaskBytes = -1 },
			errors: []string{"memory.taskBytes"},
		},
		{
			name: "fixed task bytes ignores fraction",
			mutate: func(c *Config) {
				c.Memory.TaskBytes = 1 << 20
				c.Memory.HostFraction = 0
			},
		},
		{
			name: "tracing without name",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.ServiceName = ""
			},
			errors: []string{"tracing.serviceName"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if len(tc.errors) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, expect := range tc.errors {
				assert.Contains(t, err.Error(), expect)
			}
		})
	}
}

func TestConfig_TaskMemory(t *testing.T) {
	prev := hostMemory
	defer func() { hostMemory = prev }()
	hostMemory = func() (uint64, error) { return 1000, nil }

	cfg := DefaultConfig()
	size, err := cfg.TaskMemory()
	require.NoError(t, err)
	assert.Equal(t, int64(700), size)

	cfg.Memory.TaskBytes = 1024
	size, err = cfg.TaskMemory()
	require.NoError(t, err)
	assert.Equal(t, int64(1024), size)

	hostMemory = func() (uint64, error) { return 0, errors.New("no host") }
	cfg.Memory.TaskBytes = 0
	_, err = cfg.TaskMemory()
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	location := filepath.Join(dir, "worker.yaml")
	require.NoError(t, os.WriteFile(location, []byte(`
memory:
  taskBytes: 2048
executor:
  distributorParallelism: 2
umbilical:
  journalURL: /tmp/journal
logging:
  level: debug
`), 0o644))

	cfg, err := LoadConfig(context.Background(), location)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), cfg.Memory.TaskBytes)
	assert.Equal(t, 2, cfg.Executor.DistributorParallelism)
	assert.Equal(t, 64, cfg.Executor.QueueBuffer)
	assert.Equal(t, "/tmp/journal", cfg.Umbilical.JournalURL)
	assert.Equal(t, 100, cfg.Umbilical.QueueBuffer)
	assert.Equal(t, "debug", cfg.Logging.Level)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("executor:\n  distributorParallelism: -1\n"), 0o644))
	_, err = LoadConfig(context.Background(), invalid)
	assert.ErrorContains(t, err, "executor.distributorParallelism")

	_, err = LoadConfig(context.Background(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
