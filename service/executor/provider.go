package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/taskctx/metrics"
	"golang.org/x/sync/errgroup"
)

var log = logging.Logger("taskctx/executor")

// Config represents provider configuration.
type Config struct {
	// QueueBuffer is the number of functions a pool accepts before Submit blocks.
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`
}

// DefaultConfig returns the default provider configuration.
func DefaultConfig() Config {
	return Config{QueueBuffer: 64}
}

// Provider hands out framework pools shared across the process.
type Provider struct {
	config  Config
	metrics *metrics.Metrics
	mux     sync.Mutex
	pools   []*Pool
	closed  bool
}

// NewExecutor creates a pool with parallelism workers named after nameFormat,
// which must contain a %d verb for the worker index.
func (p *Provider) NewExecutor(parallelism int, nameFormat string) (*Pool, error) {
	if parallelism <= 0 {
		return nil, fmt.Errorf("%w: parallelism must be > 0, got %d", ErrInvalidArgument, parallelism)
	}
	if !strings.Contains(nameFormat, "%d") {
		return nil, fmt.Errorf("%w: name format %q must contain %%d", ErrInvalidArgument, nameFormat)
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	if p.closed {
		return nil, ErrShutdown
	}
	pool := newPool(parallelism, nameFormat, p.config.QueueBuffer)
	pool.onStop = p.metrics.PoolStopped
	pool.start()
	p.pools = append(p.pools, pool)
	p.metrics.PoolStarted()
	log.Debugw("started framework executor", "name", nameFormat, "parallelism", parallelism)
	return pool, nil
}

// Pools returns the number of pools handed out.
func (p *Provider) Pools() int {
	p.mux.Lock()
	defer p.mux.Unlock()
	return len(p.pools)
}

// Shutdown stops every pool concurrently and aggregates their errors.
// Subsequent NewExecutor calls fail with ErrShutdown.
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mux.Lock()
	if p.closed {
		p.mux.Unlock()
		return nil
	}
	p.closed = true
	pools := p.pools
	p.mux.Unlock()

	var (
		errs   *multierror.Error
		errMux sync.Mutex
	)
	group := errgroup.Group{}
	for _, pool := range pools {
		pool := pool
		group.Go(func() error {
			if err := pool.Shutdown(ctx); err != nil {
				errMux.Lock()
				errs = multierror.Append(errs, err)
				errMux.Unlock()
			}
			return nil
		})
	}
	_ = group.Wait()
	return errs.ErrorOrNil()
}

// New creates a provider.
func New(options ...Option) *Provider {
	ret := &Provider{config: DefaultConfig()}
	for _, opt := range options {
		opt(ret)
	}
	if ret.config.QueueBuffer < 0 {
		ret.config.QueueBuffer = 0
	}
	return ret
}
