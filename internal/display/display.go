package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Printer renders the live status line, debug lines, and the session summary
// to a console writer. It holds no packet state of its own; the session loop
// passes in a stats snapshot for each render.
type Printer struct {
	w          io.Writer
	meterWidth int
	dbFloor    float64
}

// StatsSnapshot is the per-render view of session state.
type StatsSnapshot struct {
	PacketsReceived uint64
	PacketsValid    uint64
	PacketsLost     int64
	BytesReceived   uint64
	Elapsed         time.Duration
	LevelDB         float64
}

// NewPrinter creates a console printer. meterWidth is the level bar width in
// cells; dbFloor is the level mapped to an empty bar.
func NewPrinter(w io.Writer, meterWidth int, dbFloor float64) *Printer {
	return &Printer{
		w:          w,
		meterWidth: meterWidth,
		dbFloor:    dbFloor,
	}
}

// Banner prints the listening banner at session start.
func (p *Printer) Banner(port int) {
	fmt.Fprintf(p.w, "Mix2Go stream probe - listening on :%d\n", port)
	fmt.Fprintln(p.w, "Waiting for packets...")
}

// FirstPacket announces the source of the first received datagram.
func (p *Printer) FirstPacket(remote string) {
	fmt.Fprintf(p.w, "First packet from %s\n", remote)
}

// StatusLine renders the single-line live meter, overwriting the previous
// line with a carriage return.
func (p *Printer) StatusLine(s StatsSnapshot) {
	rate := float64(0)
	if s.Elapsed > 0 {
		rate = float64(s.BytesReceived) / s.Elapsed.Seconds()
	}

	fmt.Fprintf(p.w, "\r| Pkts: %6d | Lost: %3d | Rate: %9s/s | Level: [%s] %+.1fdB ",
		s.PacketsValid, s.PacketsLost,
		humanize.IBytes(uint64(rate)),
		p.Meter(s.LevelDB),
		s.LevelDB,
	)
}

// Meter renders the level bar for a dB value, normalized from the floor up
// to 0 dBFS.
func (p *Printer) Meter(levelDB float64) string {
	normalized := (levelDB - p.dbFloor) / -p.dbFloor
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	filled := int(normalized * float64(p.meterWidth))
	return strings.Repeat("#", filled) + strings.Repeat(".", p.meterWidth-filled)
}

// DebugLine prints the instantaneous peak and the first few samples of a
// packet, used on the first packet and on a configurable packet cadence.
func (p *Printer) DebugLine(packetNum uint64, instantPeak float64, samples []float32) {
	head := samples
	if len(head) > 4 {
		head = head[:4]
	}
	fmt.Fprintf(p.w, "\npkt %d: peak=%.6f first samples: %v\n", packetNum, instantPeak, head)
}

// Summary prints the end-of-session report.
func (p *Printer) Summary(s StatsSnapshot) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, strings.Repeat("=", 50))
	fmt.Fprintln(p.w, "Session summary:")
	fmt.Fprintf(p.w, "  Packets received: %d\n", s.PacketsReceived)
	fmt.Fprintf(p.w, "  Packets lost:     %d\n", s.PacketsLost)
	fmt.Fprintf(p.w, "  Total data:       %s\n", humanize.IBytes(s.BytesReceived))
	if s.Elapsed > 0 {
		fmt.Fprintf(p.w, "  Duration:         %.1f seconds\n", s.Elapsed.Seconds())
		fmt.Fprintf(p.w, "  Average rate:     %s/s\n",
			humanize.IBytes(uint64(float64(s.BytesReceived)/s.Elapsed.Seconds())))
	}
	fmt.Fprintln(p.w, strings.Repeat("=", 50))
}
