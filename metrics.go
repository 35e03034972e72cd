package gram

import (
	"log/slog"

	"github.com/hashicorp/go-metrics"
)

var (
	// MetricGramFrameInBytes represents how much bytes have been received
	// and decoded as frames.
	MetricGramFrameInBytes       = []string{"gram", "frame", "in", "bytes"}
	MetricGramFrameInErrorCount  = []string{"gram", "frame", "in", "error", "count"}
	MetricGramFrameOutBytes      = []string{"gram", "frame", "out", "bytes"}
	MetricGramFrameOutErrorCount = []string{"gram", "frame", "out", "error", "count"}
	MetricGramFrameRejectedCount = []string{"gram", "frame", "rejected", "count"}
)

type TelemetryLabel string

var (
	LabelError    TelemetryLabel = "error"
	LabelPeerAddr TelemetryLabel = "peer_addr"
)

func (lab TelemetryLabel) M(val string) metrics.Label {
	return metrics.Label{Name: string(lab), Value: val}
}

func (lab TelemetryLabel) L(val any) slog.Attr {
	return slog.Attr{
		Key:   string(lab),
		Value: slog.AnyValue(val),
	}
}
