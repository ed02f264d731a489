// Package observe provides application-wide observability primitives for
// ayahsync: OpenTelemetry metrics and the Prometheus exporter bridge.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all ayahsync metrics.
const meterName = "github.com/qariapp/ayahsync"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// AlignDuration tracks end-to-end alignment latency per recitation run.
	AlignDuration metric.Float64Histogram

	// MatchScore tracks the partial-ratio score distribution of accepted
	// matches (0–100).
	MatchScore metric.Float64Histogram

	// SegmentsMatched counts segments that produced a timeline entry.
	SegmentsMatched metric.Int64Counter

	// SegmentsDropped counts segments that never reached the timeline.
	// Use with attribute: attribute.String("reason", "too_short"|"no_match").
	SegmentsDropped metric.Int64Counter

	// CollaboratorRequests counts collaborator API calls. Use with attributes:
	//   attribute.String("collaborator", "corpus"|"search"),
	//   attribute.String("status", "ok"|"no_match"|"unavailable")
	CollaboratorRequests metric.Int64Counter

	// Runs counts completed alignment runs. Use with attribute:
	//   attribute.String("status", "ok"|"unidentified"|"unavailable"|"error")
	Runs metric.Int64Counter
}

// alignBuckets defines histogram bucket boundaries (in seconds) for
// per-recitation alignment latency, dominated by collaborator round-trips.
var alignBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// scoreBuckets covers the 0–100 partial-ratio scale around the match floor.
var scoreBuckets = []float64{
	50, 60, 70, 75, 80, 85, 90, 95, 100,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AlignDuration, err = m.Float64Histogram("ayahsync.align.duration",
		metric.WithDescription("End-to-end latency of one alignment run."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(alignBuckets...),
	); err != nil {
		return nil, err
	}
	if met.MatchScore, err = m.Float64Histogram("ayahsync.match.score",
		metric.WithDescription("Partial-ratio score of accepted segment matches."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SegmentsMatched, err = m.Int64Counter("ayahsync.segments.matched",
		metric.WithDescription("Segments that produced a timeline entry."),
	); err != nil {
		return nil, err
	}
	if met.SegmentsDropped, err = m.Int64Counter("ayahsync.segments.dropped",
		metric.WithDescription("Segments dropped before or during matching."),
	); err != nil {
		return nil, err
	}
	if met.CollaboratorRequests, err = m.Int64Counter("ayahsync.collaborator.requests",
		metric.WithDescription("Collaborator API calls by outcome."),
	); err != nil {
		return nil, err
	}
	if met.Runs, err = m.Int64Counter("ayahsync.runs",
		metric.WithDescription("Completed alignment runs by status."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: default metrics init: " + err.Error())
		}
	})
	return defaultMetrics
}
