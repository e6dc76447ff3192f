// Package metrics provides prometheus instrumentation for deployment
// attempts.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements deploy.Observer over prometheus collectors.
type Recorder struct {
	attemptsStarted  prometheus.Counter
	attemptsFinished *prometheus.CounterVec
	attemptDuration  prometheus.Histogram
}

// New registers deployment metrics on reg and returns a Recorder.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		attemptsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "inkdeploy_attempts_started_total",
			Help: "Total number of deployment attempts started",
		}),
		attemptsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkdeploy_attempts_finished_total",
			Help: "Total number of deployment attempts finished, by outcome",
		}, []string{"outcome"}),
		attemptDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "inkdeploy_attempt_duration_seconds",
			Help:    "Wall time from request build to terminal result",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

// AttemptStarted implements deploy.Observer.
func (r *Recorder) AttemptStarted() {
	r.attemptsStarted.Inc()
}

// AttemptFinished implements deploy.Observer.
func (r *Recorder) AttemptFinished(outcome string, elapsed time.Duration) {
	r.attemptsFinished.WithLabelValues(outcome).Inc()
	r.attemptDuration.Observe(elapsed.Seconds())
}
