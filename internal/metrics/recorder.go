package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for hook invocations and their stages.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveInvocationDuration(event string, d time.Duration)
	IncInvocationOutcome(event string, result ResultLabel)
	SetFunctionsBuilt(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)      {}
func (NoopRecorder) IncStageResult(string, ResultLabel)              {}
func (NoopRecorder) ObserveInvocationDuration(string, time.Duration) {}
func (NoopRecorder) IncInvocationOutcome(string, ResultLabel)        {}
func (NoopRecorder) SetFunctionsBuilt(int)                           {}
