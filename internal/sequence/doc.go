// Package sequence tracks frame delivery continuity. It infers lost packets
// from forward gaps in the sender-assigned monotonic sequence numbers.
package sequence
