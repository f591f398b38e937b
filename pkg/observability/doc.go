/*
Package observability provides tools for monitoring switchyard machines.

Every tool is a domain.LifecycleHooks value: Metrics exports Prometheus
counters and histograms, Log writes structured slog records and Recorder keeps
an in-memory trace of the steps a machine took. Combine them with
LifecycleHooks.Combine.
*/
package observability
