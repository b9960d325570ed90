package build

import (
	"context"
	"sync"
	"time"

	"github.com/conneroisu/thematic/internal/logging"
)

// DefaultMinPurgeInterval collapses purge triggers closer together than this.
const DefaultMinPurgeInterval = time.Second

// Invalidator is a cache that can be dropped wholesale.
type Invalidator interface {
	InvalidateAll()
}

// Purger invalidates every derived cache and rebuilds the compiled output.
// Triggers that arrive within the minimum interval of the last purge are
// collapsed into it.
type Purger struct {
	output       *OutputCache
	invalidators []Invalidator
	minInterval  time.Duration
	logger       logging.Logger
	now          func() time.Time

	mu        sync.Mutex
	lastPurge time.Time
	purges    int
}

// NewPurger creates a purger.
func NewPurger(output *OutputCache, minInterval time.Duration, logger logging.Logger, invalidators ...Invalidator) *Purger {
	if minInterval < 0 {
		minInterval = 0
	}
	return &Purger{
		output:       output,
		invalidators: invalidators,
		minInterval:  minInterval,
		logger:       logging.OrNop(logger).WithComponent("purger"),
		now:          time.Now,
	}
}

// Purge invalidates and rebuilds unless a purge ran within the minimum
// interval. It reports whether a purge ran and blocks until the rebuild is
// done.
func (p *Purger) Purge(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if !p.lastPurge.IsZero() && now.Sub(p.lastPurge) < p.minInterval {
		p.logger.Debug(ctx, "Purge skipped", "since_last", now.Sub(p.lastPurge).String())
		return false, nil
	}
	return true, p.purge(ctx, now)
}

// ForcePurge purges regardless of the minimum interval.
func (p *Purger) ForcePurge(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.purge(ctx, p.now())
}

// Purges returns how many purges have run.
func (p *Purger) Purges() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.purges
}

func (p *Purger) purge(ctx context.Context, now time.Time) error {
	p.lastPurge = now
	p.purges++

	for _, inv := range p.invalidators {
		inv.InvalidateAll()
	}
	if err := p.output.Clear(ctx); err != nil {
		p.logger.Error(ctx, err, "Clearing compiled output failed")
		return err
	}
	_, err := p.output.BuildAll(ctx)
	if err != nil {
		p.logger.Error(ctx, err, "Rebuild after purge failed")
		return err
	}
	p.logger.Info(ctx, "Caches purged and rebuilt")
	return nil
}
