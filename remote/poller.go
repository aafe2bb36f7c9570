package remote

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yacchi/kasane/format"
	"github.com/yacchi/kasane/layer"
)

// ErrTooManyFailures is returned by Run when the configured number of
// consecutive polls has failed.
var ErrTooManyFailures = errors.New("remote: too many consecutive poll failures")

// Poller copies the property set of one Fetcher into one settable layer.
//
// Each successful poll replaces the layer contents in a single atomic swap.
// A poll that returns the same properties as the last applied one leaves the
// layer untouched. A failed poll is logged and counted and keeps the last good
// contents in place.
type Poller struct {
	name    string
	fetcher Fetcher
	target  *layer.Settable
	opts    options
	logger  *zap.Logger
	trigger chan struct{}

	mu       sync.Mutex // serialises polls
	last     format.Bag
	hasLast  bool
	failures int
}

// NewPoller creates a poller that writes the properties fetched by f into target.
func NewPoller(name string, f Fetcher, target *layer.Settable, opts ...Option) *Poller {
	o := options{interval: DefaultInterval, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.interval <= 0 {
		o.interval = DefaultInterval
	}

	return &Poller{
		name:    name,
		fetcher: f,
		target:  target,
		opts:    o,
		logger:  o.logger.With(zap.String("component", "remote"), zap.String("source", name)),
		trigger: make(chan struct{}, 1),
	}
}

// Name returns the source name.
func (p *Poller) Name() string {
	return p.name
}

// Interval returns the time between polls.
func (p *Poller) Interval() time.Duration {
	return p.opts.interval
}

// PollOnce fetches once and applies the result. It reports whether the layer
// contents were replaced.
func (p *Poller) PollOnce(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	bag, err := p.fetcher.Fetch(ctx)
	p.opts.metrics.observePoll(p.name, time.Since(start), err)
	if err != nil {
		p.failures++
		p.logger.Warn("poll failed", zap.Error(err), zap.Int("consecutive_failures", p.failures))
		return false, fmt.Errorf("poll %s: %w", p.name, err)
	}
	p.failures = 0

	if p.hasLast && reflect.DeepEqual(p.last, bag) {
		p.logger.Debug("poll unchanged", zap.Int("keys", len(bag)))
		return false, nil
	}

	p.target.Replace(bag)
	p.last = maps.Clone(bag)
	p.hasLast = true
	p.opts.metrics.observeUpdate(p.name, len(bag))
	p.logger.Info("properties updated", zap.Int("keys", len(bag)))
	return true, nil
}

// Trigger requests an immediate poll from a running Run loop. It never blocks;
// requests made while one is pending are coalesced.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Run polls immediately and then at every interval until ctx is done.
// If the fetcher implements Notifier, its change notifications trigger
// extra polls. Run returns nil when ctx is cancelled, or ErrTooManyFailures
// when WithMaxFailures is exceeded.
func (p *Poller) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if n, ok := p.fetcher.(Notifier); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := n.Watch(ctx, p.Trigger); err != nil && ctx.Err() == nil {
				p.logger.Warn("watch stopped", zap.Error(err))
			}
		}()
	}
	defer wg.Wait()

	ticker := time.NewTicker(p.opts.interval)
	defer ticker.Stop()

	for {
		if _, err := p.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if p.opts.maxFailures > 0 && p.consecutiveFailures() >= p.opts.maxFailures {
				return fmt.Errorf("%s: %w: %w", p.name, ErrTooManyFailures, err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-p.trigger:
		}
	}
}

func (p *Poller) consecutiveFailures() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}
