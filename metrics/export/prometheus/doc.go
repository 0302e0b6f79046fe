// Package prometheus renders gatekeep metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts a [gatekeep.Engine] and exposes an
// [net/http.Handler] that renders all counters and histograms. Counter names
// are prefixed gatekeep_*_total; the single histogram is
// gatekeep_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
