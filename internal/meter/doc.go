// Package meter implements the streaming audio level estimator. It tracks a
// decaying peak over decoded float32 samples and converts it to decibels for
// the console level display.
package meter
