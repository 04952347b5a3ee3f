package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "slscljs"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration      *prom.HistogramVec
	stageResults       *prom.CounterVec
	invocationDuration *prom.HistogramVec
	invocationOutcome  *prom.CounterVec
	functionsBuilt     prom.Gauge
}

// Build durations are dominated by JVM startup and ClojureScript compilation.
var buildBuckets = []float64{0.1, 1, 5, 15, 30, 60, 120, 300, 600}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual hook stages",
			Buckets:   buildBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		invocationDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Total duration of a lifecycle hook invocation",
			Buckets:   buildBuckets,
		}, []string{"event"}),
		invocationOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Lifecycle hook invocations by outcome",
		}, []string{"event", "result"}),
		functionsBuilt: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "functions_built",
			Help:      "Number of functions in the last build descriptor",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.invocationDuration, pr.invocationOutcome, pr.functionsBuilt)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveInvocationDuration(event string, d time.Duration) {
	if p == nil {
		return
	}
	p.invocationDuration.WithLabelValues(event).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncInvocationOutcome(event string, result ResultLabel) {
	if p == nil {
		return
	}
	p.invocationOutcome.WithLabelValues(event, string(result)).Inc()
}

func (p *PrometheusRecorder) SetFunctionsBuilt(n int) {
	if p == nil {
		return
	}
	p.functionsBuilt.Set(float64(n))
}
