// Package metrics records build metrics.
//
// Components receive a Recorder through injection and default to
// NoopRecorder, so call sites never check for nil:
//
//	orchestrator := build.New(cfg, build.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The CLI exports the Prometheus registry to a node_exporter textfile after
// each build when metrics.textfile or --metrics-file is set.
package metrics
