package taskctx

import (
	"context"
	"fmt"

	"github.com/elastic/go-sysinfo"
	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the worker configuration. It is
// usually loaded from YAML with LoadConfig; missing fields keep their defaults.
type Config struct {
	Memory    MemoryConfig    `json:"memory" yaml:"memory"`
	Executor  ExecutorConfig  `json:"executor" yaml:"executor"`
	Umbilical UmbilicalConfig `json:"umbilical" yaml:"umbilical"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
}

// MemoryConfig sets the memory ceiling of a task. When TaskBytes is zero the
// ceiling is HostFraction of the total host memory.
type MemoryConfig struct {
	TaskBytes    int64   `json:"taskBytes" yaml:"taskBytes"`
	HostFraction float64 `json:"hostFraction" yaml:"hostFraction"`
}

type ExecutorConfig struct {
	QueueBuffer            int `json:"queueBuffer" yaml:"queueBuffer"`
	DistributorParallelism int `json:"distributorParallelism" yaml:"distributorParallelism"`
}

type UmbilicalConfig struct {
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`
	// JournalURL, when set, receives every reported event as JSON.
	JournalURL string `json:"journalURL" yaml:"journalURL"`
}

type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	OutputFile     string `json:"outputFile" yaml:"outputFile"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// DefaultConfig returns a Config populated with the defaults used when no
// configuration is supplied.
func DefaultConfig() *Config {
	return &Config{
		Memory: MemoryConfig{
			HostFraction: 0.7,
		},
		Executor: ExecutorConfig{
			QueueBuffer:            64,
			DistributorParallelism: 1,
		},
		Umbilical: UmbilicalConfig{
			QueueBuffer: 100,
		},
		Tracing: TracingConfig{
			ServiceName:    "taskctx",
			ServiceVersion: "0.1.0",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs *multierror.Error
	if c.Memory.TaskBytes < 0 {
		errs = multierror.Append(errs, fmt.Errorf("memory.taskBytes must be >= 0"))
	}
	if c.Memory.TaskBytes == 0 && (c.Memory.HostFraction <= 0 || c.Memory.HostFraction > 1) {
		errs = multierror.Append(errs, fmt.Errorf("memory.hostFraction must be in (0, 1]"))
	}
	if c.Executor.QueueBuffer < 0 {
		errs = multierror.Append(errs, fmt.Errorf("executor.queueBuffer must be >= 0"))
	}
	if c.Executor.DistributorParallelism <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("executor.distributorParallelism must be > 0"))
	}
	if c.Umbilical.QueueBuffer < 0 {
		errs = multierror.Append(errs, fmt.Errorf("umbilical.queueBuffer must be >= 0"))
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		errs = multierror.Append(errs, fmt.Errorf("tracing.serviceName is required when tracing is enabled"))
	}
	if _, err := logging.LevelFromString(c.Logging.Level); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errs.ErrorOrNil()
}

// hostMemory returns the total host memory; tests override it.
var hostMemory = func() (uint64, error) {
	host, err := sysinfo.Host()
	if err != nil {
		return 0, err
	}
	mem, err := host.Memory()
	if err != nil {
		return 0, err
	}
	return mem.Total, nil
}

// TaskMemory returns the memory ceiling handed to every task context.
func (c *Config) TaskMemory() (int64, error) {
	if c.Memory.TaskBytes > 0 {
		return c.Memory.TaskBytes, nil
	}
	total, err := hostMemory()
	if err != nil {
		return 0, fmt.Errorf("failed to read host memory: %w", err)
	}
	return int64(float64(total) * c.Memory.HostFraction), nil
}

// LoadConfig downloads the YAML document at URL and decodes it over DefaultConfig.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	return loadConfig(ctx, afs.New(), URL)
}

func loadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
