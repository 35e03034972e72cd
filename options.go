package gram

import (
	"log/slog"
	"slices"

	"github.com/hashicorp/go-metrics"
)

type config struct {
	logHandler   slog.Handler
	metricSink   metrics.MetricSink
	metricLabels []metrics.Label
}

// Option to pass to `New`.
type Option func(*config) error

// WithLog specifies which `slog.Handler` to use.
func WithLog(handler slog.Handler) Option {
	return func(c *config) error {
		c.logHandler = handler
		return nil
	}
}

// WithMetricSink allows you to chose how to collect the metrics emitted by
// the adapter. A nil sink discards them.
func WithMetricSink(ms metrics.MetricSink) Option {
	return func(c *config) error {
		if ms == nil {
			ms = &metrics.BlackholeSink{}
		}
		c.metricSink = ms
		return nil
	}
}

// WithMetricLabels adds static labels to all metrics produced by the
// adapter. The slice is copied with its capacity clipped: later caller
// mutations are not observed, and the per-emission label appends always
// allocate instead of writing into shared spare capacity.
func WithMetricLabels(labels []metrics.Label) Option {
	return func(c *config) error {
		c.metricLabels = slices.Clip(slices.Clone(labels))
		return nil
	}
}
