package executor

import "github.com/prometheus/client_golang/prometheus"

var (
	judgeInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "online_judge",
		Subsystem: "engine",
		Name:      "judge_in_flight",
		Help:      "Current number of submissions being judged.",
	})

	judgeVerdictTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "online_judge",
		Subsystem: "engine",
		Name:      "judge_verdict_total",
		Help:      "Total number of verdicts produced, by language and verdict.",
	}, []string{"language", "verdict"})

	judgeErrorTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "online_judge",
		Subsystem: "engine",
		Name:      "judge_error_total",
		Help:      "Total number of judge requests that ended in an error instead of a verdict.",
	}, []string{"language", "reason"})

	judgeDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "online_judge",
		Subsystem: "engine",
		Name:      "judge_duration_seconds",
		Help:      "Wall time of a whole judge request in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"language"})
)

func init() {
	prometheus.MustRegister(
		judgeInFlight,
		judgeVerdictTotal,
		judgeErrorTotal,
		judgeDurationSeconds,
	)
}
