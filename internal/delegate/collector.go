package delegate

import (
	"context"
	"sync"
)

// Collector accumulates delegation errors for one request. Sibling
// delegations dispatch concurrently, so recording is mutex-guarded; the
// collector is per-request and never shared across requests.
type Collector struct {
	mu     sync.Mutex
	errors []FieldError
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends field errors in arrival order.
func (c *Collector) Record(errs ...FieldError) {
	if len(errs) == 0 {
		return
	}
	c.mu.Lock()
	c.errors = append(c.errors, errs...)
	c.mu.Unlock()
}

// Errors returns a copy of everything recorded so far.
func (c *Collector) Errors() []FieldError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]FieldError, len(c.errors))
	copy(out, c.errors)
	return out
}

type collectorContextKey struct{}

// WithCollector stores the request's collector in context.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, collectorContextKey{}, c)
}

// CollectorFromContext retrieves the request's collector, or nil when the
// query runs outside the engine entry point.
func CollectorFromContext(ctx context.Context) *Collector {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(collectorContextKey{}).(*Collector)
	return c
}
