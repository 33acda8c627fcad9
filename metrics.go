package sapling

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	recalculations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sapling",
			Subsystem: "engine",
			Name:      "recalculations_total",
			Help:      "Recalculation passes by outcome.",
		},
		[]string{"success"},
	)
	recalcDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sapling",
			Subsystem: "engine",
			Name:      "recalculation_duration_seconds",
			Help:      "Recalculation pass duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	parkedCalcs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sapling",
			Subsystem: "engine",
			Name:      "parked_calcs_total",
			Help:      "Calc requests deferred until their session became current.",
		},
	)
	omittedLayers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sapling",
			Subsystem: "engine",
			Name:      "omitted_layers_total",
			Help:      "Layers that produced no computed output.",
		},
	)
	fontFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sapling",
			Subsystem: "fonts",
			Name:      "load_failures_total",
			Help:      "Fonts that could not be fetched or parsed.",
		},
	)
	cloneDepthFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sapling",
			Subsystem: "clone",
			Name:      "depth_failures_total",
			Help:      "Clones aborted at the depth limit.",
		},
	)
)

// Collectors returns every sapling metric.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		recalculations, recalcDuration, parkedCalcs,
		omittedLayers, fontFailures, cloneDepthFailures,
	}
}

// RegisterMetrics registers the sapling metrics with r. Metrics are recorded
// whether or not they are registered.
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func recordRecalculation(success bool, duration time.Duration) {
	recalculations.WithLabelValues(strconv.FormatBool(success)).Inc()
	recalcDuration.Observe(duration.Seconds())
}

func recordParked()            { parkedCalcs.Inc() }
func recordOmitted()           { omittedLayers.Inc() }
func recordFontFailure()       { fontFailures.Inc() }
func recordCloneDepthFailure() { cloneDepthFailures.Inc() }
