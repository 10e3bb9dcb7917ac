package scheduler

import (
	"time"

	"github.com/rs/zerolog"
)

const defaultSliceSize = 5 * time.Millisecond

type options struct {
	sliceSize time.Duration
	logger    zerolog.Logger
}

type Option func(*options)

// WithSliceSize sets how long a single host callback may run before
// ShouldYield reports true.
func WithSliceSize(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.sliceSize = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func resolveOptions(opts []Option) options {
	o := options{
		sliceSize: defaultSliceSize,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
