// Command sendgen emits well-formed Mix2Go frames carrying a sine wave, so
// the probe can be exercised without the audio plugin. It can simulate
// packet loss by skipping sequence numbers.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eenness/Mix2Go/internal/protocol"
)

func main() {
	target := flag.String("target", "127.0.0.1:12345", "Probe address to send to")
	sampleRate := flag.Int("rate", 44100, "Sample rate in Hz")
	channels := flag.Int("channels", 2, "Channel count")
	blockSize := flag.Int("block", 512, "Samples per channel per packet")
	freq := flag.Float64("freq", 440, "Sine frequency in Hz")
	amplitude := flag.Float64("amp", 0.5, "Sine amplitude (0..1)")
	dropRate := flag.Float64("drop", 0, "Fraction of sequence numbers to skip (0..1)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	addr, err := net.ResolveUDPAddr("udp", *target)
	if err != nil {
		logger.Error("Failed to resolve target", slog.String("error", err.Error()))
		os.Exit(1)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		logger.Error("Failed to dial target", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer conn.Close()

	logger.Info("Sending test signal",
		slog.String("target", *target),
		slog.Int("sample_rate", *sampleRate),
		slog.Int("channels", *channels),
		slog.Int("block_size", *blockSize),
		slog.Float64("freq", *freq),
		slog.Float64("drop_rate", *dropRate),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// One packet per audio block, paced to real time.
	interval := time.Duration(float64(*blockSize) / float64(*sampleRate) * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	rate, chans, block := *sampleRate, *channels, *blockSize

	start := time.Now()
	var seq int32
	var phase float64
	var sent uint64
	phaseStep := 2 * math.Pi * *freq / float64(rate)

	for {
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\nSent %d packets in %.1fs\n", sent, time.Since(start).Seconds())
			return
		case <-ticker.C:
		}

		// Interleaved samples, the same value on every channel.
		samples := make([]float32, block*chans)
		for i := 0; i < block; i++ {
			v := float32(*amplitude * math.Sin(phase))
			phase += phaseStep
			for ch := 0; ch < chans; ch++ {
				samples[i*chans+ch] = v
			}
		}

		// Simulated loss: consume the sequence number without sending.
		if *dropRate > 0 && rand.Float64() < *dropRate {
			seq++
			continue
		}

		frame := &protocol.Frame{
			Header: protocol.Header{
				Magic:       protocol.Magic,
				SampleRate:  uint32(rate),
				NumChannels: uint16(chans),
				NumSamples:  uint32(block),
				Timestamp:   uint64(time.Since(start).Microseconds()),
				Sequence:    seq,
			},
			Payload: protocol.EncodeSamples(samples),
		}
		seq++

		buf, err := frame.MarshalBinary()
		if err != nil {
			logger.Error("Failed to marshal frame", slog.String("error", err.Error()))
			continue
		}

		if _, err := conn.Write(buf); err != nil {
			logger.Error("Failed to send packet", slog.String("error", err.Error()))
			continue
		}
		sent++
	}
}
