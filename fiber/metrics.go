package fiber

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "fiberparty"

type metrics struct {
	renders        prometheus.Counter
	commits        prometheus.Counter
	yields         prometheus.Counter
	suspensions    prometheus.Counter
	renderErrors   prometheus.Counter
	commitDuration prometheus.Histogram
}

// newMetrics registers on reg when it is non-nil. Reconcilers sharing a
// registry share the collectors.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		renders:      counter(reg, "renders_total", "Render passes started from a fresh stack."),
		commits:      counter(reg, "commits_total", "Finished trees committed to the host."),
		yields:       counter(reg, "yields_total", "Render passes that yielded to the host before finishing."),
		suspensions:  counter(reg, "suspensions_total", "Renders that suspended on a pending thenable."),
		renderErrors: counter(reg, "render_errors_total", "Render passes aborted by an error."),
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "commit_duration_seconds",
		Help:      "Time spent applying a finished tree to the host.",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
	})
	m.commitDuration = register(reg, h)
	return m
}

func counter(reg prometheus.Registerer, name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      name,
		Help:      help,
	})
	return register(reg, c)
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
