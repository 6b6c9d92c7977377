// Package monitor implements the probe session: the UDP receive loop, the
// per-packet pipeline of frame decoding, sequence continuity tracking and
// level estimation, and the session statistics it exposes to the display and
// monitoring layers.
package monitor
