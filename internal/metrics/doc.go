// Package metrics provides observability hooks for extraction and export.
//
// Components receive a Recorder and default to NoopRecorder, so metrics stay
// optional and never need nil checks at call sites:
//
//	extractor := markdown.NewExtractor(opts).WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The CLI has no long-running server. When a textfile path is configured it
// gathers the registry once per run and writes it with WriteTextfile, for
// node_exporter's textfile collector to pick up.
package metrics
