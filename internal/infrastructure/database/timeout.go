package database

import (
	"context"
	"time"
)

// DefaultTimeout bounds each store call made by the repositories.
const DefaultTimeout = 2 * time.Second

// Option configures a repository.
type Option func(*bound)

// WithTimeout sets the deadline of each store call. Non-positive values keep
// the default.
func WithTimeout(d time.Duration) Option {
	return func(b *bound) {
		if d > 0 {
			b.timeout = d
		}
	}
}

type bound struct {
	timeout time.Duration
}

func newBound(opts []Option) bound {
	b := bound{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// call derives the context of one store call from ctx.
func (b bound) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}
