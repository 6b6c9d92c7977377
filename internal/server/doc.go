// Package server implements the optional HTTP monitoring API: session
// statistics, active configuration, and the Prometheus metrics endpoint.
package server
