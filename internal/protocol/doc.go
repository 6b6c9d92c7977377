// Package protocol implements parsing and validation of Mix2Go audio frames.
// It handles the fixed 26-byte little-endian header, magic validation, and
// decoding of the float32 sample payload that follows it.
package protocol
