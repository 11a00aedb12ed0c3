// Package metrics defines interfaces for recording planning outcomes. Sinks
// such as PromSink and InfluxSink in infra/metrics record solve results,
// fallbacks and run summaries and can be combined with NewMultiSink. The
// factory helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics
