// Package otel binds Guard metrics to OpenTelemetry observable instruments.
//
// [NewOTelExporter] registers an Int64ObservableCounter per guard counter and
// an Int64ObservableGauge per latency bucket. A single callback reads
// [goGuard.Guard.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate guard state.
package otel
