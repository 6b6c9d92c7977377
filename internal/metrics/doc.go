// Package metrics defines the Prometheus metrics exported by the probe's
// monitoring endpoint.
package metrics
