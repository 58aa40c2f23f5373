package service

import "github.com/prometheus/client_golang/prometheus"

var (
	collectorInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "online_judge_engine",
		Subsystem: "resultcollector",
		Name:      "results_in_flight",
		Help:      "Judge results currently being written back.",
	})

	// outcome: stored / failed; reason narrows a failure or names a judge error
	collectorResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "online_judge_engine",
		Subsystem: "resultcollector",
		Name:      "results_total",
		Help:      "Judge results consumed, by outcome.",
	}, []string{"outcome", "reason"})

	collectorVerdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "online_judge_engine",
		Subsystem: "resultcollector",
		Name:      "stored_verdicts_total",
		Help:      "Verdicts written onto submissions.",
	}, []string{"verdict"})

	collectorWriteSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "online_judge_engine",
		Subsystem: "resultcollector",
		Name:      "write_duration_seconds",
		Help:      "Time from consuming a judge result to its submission update.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(collectorInFlight, collectorResultsTotal, collectorVerdictsTotal, collectorWriteSeconds)
}
