// Package prometheus exposes Guard metrics through client_golang.
//
// [Collector] implements prometheus.Collector and reads
// [goGuard.Guard.MetricsSnapshot] on every scrape. Counter names are
// goguard_*_total; the single histogram is goguard_decide_latency_seconds.
// [Handler] wraps a private registry with promhttp.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate guard state.
package prometheus
