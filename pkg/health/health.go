// Package health reports whether the document store is reachable.
//
// Results are kept in an expiring cache so that frequent callers, such as a
// CLI loop or a readiness endpoint, ping the store at most once per TTL.
package health

import (
	"context"
	"time"

	"github.com/goliatone/go-document-cache/cache"
	"github.com/goliatone/go-document-cache/pkg/logging"
)

// Pinger is satisfied by *store.Gateway.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// Status is the outcome of one store ping.
type Status struct {
	Collection string    `json:"collection"`
	Healthy    bool      `json:"healthy"`
	Error      string    `json:"error,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Checker pings a store and remembers the result for the configured TTL.
type Checker struct {
	pinger Pinger
	cache  cache.Service[Status]
	logger *logging.Logger
	now    func() time.Time
}

// NewChecker creates a Checker for p.
func NewChecker(p Pinger, cfg cache.TTLConfig, logger *logging.Logger) (*Checker, error) {
	logger = logging.OrNoop(logger)

	svc, err := cache.NewTTLService[Status](cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Checker{
		pinger: p,
		cache:  svc,
		logger: logger.With("component", "health").WithCollection(p.Name()),
		now:    time.Now,
	}, nil
}

// Check returns the store status. cached reports whether it came from a
// previous ping that has not expired yet.
func (c *Checker) Check(ctx context.Context) (Status, bool) {
	return c.cache.GetOrFetch(ctx, c.pinger.Name(), c.ping)
}

// Stats returns the counters of the status cache.
func (c *Checker) Stats() cache.Stats {
	return c.cache.Stats()
}

func (c *Checker) ping(ctx context.Context) Status {
	status := Status{
		Collection: c.pinger.Name(),
		Healthy:    true,
		CheckedAt:  c.now().UTC(),
	}
	if err := c.pinger.Ping(ctx); err != nil {
		status.Healthy = false
		status.Error = err.Error()
		c.logger.WarnContext(ctx, "store unhealthy", "error", err)
		return status
	}
	c.logger.DebugContext(ctx, "store healthy")
	return status
}
