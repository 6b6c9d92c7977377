package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Protocol constants for the Mix2Go wire format
const (
	// Magic is the frame sentinel, ASCII "M2G0" read as a little-endian uint32.
	Magic = 0x4D324730

	// HeaderSize is the fixed header length in bytes.
	// Layout: [Magic:4][SampleRate:4][NumChannels:2][NumSamples:4][Timestamp:8][Sequence:4]
	HeaderSize = 26

	// SampleSize is the size of one payload sample (32-bit IEEE-754 float).
	SampleSize = 4
)

// Sentinel decode errors. Callers branch on these with errors.Is; neither is
// fatal to a receive loop.
var (
	ErrTooShort = errors.New("datagram shorter than frame header")
	ErrBadMagic = errors.New("frame magic mismatch")
)

// Header represents the 26-byte little-endian Mix2Go frame header.
type Header struct {
	Magic       uint32 // Must equal Magic ("M2G0")
	SampleRate  uint32 // Sender-declared sample rate in Hz
	NumChannels uint16 // Sender-declared channel count
	NumSamples  uint32 // Sender-declared samples per channel
	Timestamp   uint64 // Sender clock, microseconds since stream start
	Sequence    int32  // Sender-assigned, expected to increment by 1 per frame
}

// Frame represents a fully decoded Mix2Go frame: header metadata plus the
// trailing audio payload bytes.
type Frame struct {
	Header  Header
	Payload []byte // Raw bytes after the header, interleaved float32 samples
}

// ParseFrame decodes a raw datagram into a Frame.
//
// It returns ErrTooShort when the buffer cannot hold a header and ErrBadMagic
// when the magic sentinel does not match; the BadMagic error carries the
// observed value for logging. Header fields are trusted sender-declared
// values and are not range-checked against the payload length. The payload
// slice aliases the input buffer; ParseFrame has no side effects.
func ParseFrame(data []byte) (*Frame, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrTooShort, HeaderSize, len(data))
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != Magic {
		return nil, fmt.Errorf("%w: got 0x%08X, expected 0x%08X", ErrBadMagic, magic, uint32(Magic))
	}

	frame := &Frame{
		Header: Header{
			Magic:       magic,
			SampleRate:  binary.LittleEndian.Uint32(data[4:8]),
			NumChannels: binary.LittleEndian.Uint16(data[8:10]),
			NumSamples:  binary.LittleEndian.Uint32(data[10:14]),
			Timestamp:   binary.LittleEndian.Uint64(data[14:22]),
			Sequence:    int32(binary.LittleEndian.Uint32(data[22:26])),
		},
		Payload: data[HeaderSize:],
	}

	return frame, nil
}

// Samples decodes the payload as little-endian 32-bit floats. The sample
// count is floor(len(payload)/4); trailing bytes that do not form a complete
// float are ignored. An empty or sub-sample payload yields nil.
func (f *Frame) Samples() []float32 {
	numFloats := len(f.Payload) / SampleSize
	if numFloats == 0 {
		return nil
	}

	samples := make([]float32, numFloats)
	for i := 0; i < numFloats; i++ {
		bits := binary.LittleEndian.Uint32(f.Payload[i*SampleSize : (i+1)*SampleSize])
		samples[i] = math.Float32frombits(bits)
	}

	return samples
}

// MarshalBinary serializes the frame into the wire layout. Used by the test
// signal generator; the receive path never re-encodes frames.
func (f *Frame) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize+len(f.Payload))

	binary.LittleEndian.PutUint32(buf[0:4], f.Header.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], f.Header.SampleRate)
	binary.LittleEndian.PutUint16(buf[8:10], f.Header.NumChannels)
	binary.LittleEndian.PutUint32(buf[10:14], f.Header.NumSamples)
	binary.LittleEndian.PutUint64(buf[14:22], f.Header.Timestamp)
	binary.LittleEndian.PutUint32(buf[22:26], uint32(f.Header.Sequence))
	copy(buf[HeaderSize:], f.Payload)

	return buf, nil
}

// EncodeSamples converts float32 samples into little-endian payload bytes,
// the inverse of Frame.Samples.
func EncodeSamples(samples []float32) []byte {
	buf := make([]byte, len(samples)*SampleSize)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*SampleSize:], math.Float32bits(s))
	}
	return buf
}
