// Package metrics records build invocation metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	p := plugin.New(svc, opts) // NoopRecorder
//	p := plugin.New(svc, opts, plugin.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// slscljs is a short-lived process, so metrics are not scraped over HTTP.
// WriteTextfile dumps a registry in the Prometheus text exposition format for
// the node_exporter textfile collector (`slscljs --metrics-file ...`).
package metrics
