package display

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMeterBar(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{}, 30, -60)

	tests := []struct {
		name    string
		levelDB float64
		filled  int
	}{
		{name: "silence is empty", levelDB: -60, filled: 0},
		{name: "full scale is full", levelDB: 0, filled: 30},
		{name: "half way", levelDB: -30, filled: 15},
		{name: "below floor clamps empty", levelDB: -90, filled: 0},
		{name: "above full scale clamps full", levelDB: 6, filled: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := p.Meter(tt.levelDB)
			if len(bar) != 30 {
				t.Fatalf("Expected bar width 30, got %d", len(bar))
			}
			if got := strings.Count(bar, "#"); got != tt.filled {
				t.Errorf("Expected %d filled cells, got %d (%q)", tt.filled, got, bar)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewPrinter(out, 30, -60)

	p.Summary(StatsSnapshot{
		PacketsReceived: 1000,
		PacketsValid:    990,
		PacketsLost:     10,
		BytesReceived:   2 * 1024 * 1024,
		Elapsed:         10 * time.Second,
	})

	text := out.String()
	for _, want := range []string{
		"Packets received: 1000",
		"Packets lost:     10",
		"2.0 MiB",
		"10.0 seconds",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected summary to contain %q, got:\n%s", want, text)
		}
	}
}

func TestSummaryZeroDurationOmitsRate(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewPrinter(out, 30, -60)

	p.Summary(StatsSnapshot{PacketsReceived: 1})

	if strings.Contains(out.String(), "Average rate") {
		t.Error("Expected no rate line for zero duration")
	}
}

func TestStatusLineContents(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewPrinter(out, 10, -60)

	p.StatusLine(StatsSnapshot{
		PacketsValid:  42,
		PacketsLost:   3,
		BytesReceived: 1024,
		Elapsed:       time.Second,
		LevelDB:       -6,
	})

	text := out.String()
	if !strings.Contains(text, "42") || !strings.Contains(text, "-6.0dB") {
		t.Errorf("Unexpected status line: %q", text)
	}
}

func TestDebugLineTruncatesSamples(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewPrinter(out, 30, -60)

	p.DebugLine(1, 0.9, []float32{1, 2, 3, 4, 5, 6})

	text := out.String()
	if strings.Contains(text, "5") && strings.Contains(text, "6") {
		t.Errorf("Expected only the first four samples, got %q", text)
	}
}
