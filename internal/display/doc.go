// Package display renders the probe's console output: the live level meter
// line, per-packet debug lines, and the final session summary.
package display
