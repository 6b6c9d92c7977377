package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/eenness/Mix2Go/internal/config"
	"github.com/eenness/Mix2Go/internal/display"
	"github.com/eenness/Mix2Go/internal/meter"
	"github.com/eenness/Mix2Go/internal/metrics"
	"github.com/eenness/Mix2Go/internal/protocol"
	"github.com/eenness/Mix2Go/internal/sequence"
)

// maxDatagramSize covers the largest UDP payload a sender can produce.
const maxDatagramSize = 65535

// SessionStats holds the per-session counters. One instance is created at
// session start, mutated once per datagram by the receive loop, read by the
// display and monitoring layers, and discarded at process end.
type SessionStats struct {
	PacketsReceived uint64    // All datagrams, including rejected ones
	PacketsValid    uint64    // Frames that passed header and magic checks
	TooShort        uint64    // Datagrams shorter than a frame header
	BadMagic        uint64    // Frames with a magic mismatch
	BytesReceived   uint64    // Cumulative size of all datagrams
	FirstPacketAt   time.Time // Zero until the first datagram arrives
	FirstRemote     string    // Source address of the first datagram
}

// StatsSnapshot is a point-in-time view of session state for the monitoring
// API and the final summary.
type StatsSnapshot struct {
	PacketsReceived uint64  `json:"packets_received"`
	PacketsValid    uint64  `json:"packets_valid"`
	TooShort        uint64  `json:"too_short"`
	BadMagic        uint64  `json:"bad_magic"`
	PacketsLost     int64   `json:"packets_lost"`
	BytesReceived   uint64  `json:"bytes_received"`
	LastSequence    int32   `json:"last_sequence"`
	HasSequence     bool    `json:"has_sequence"`
	RunningPeak     float64 `json:"running_peak"`
	LevelDB         float64 `json:"level_db"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
	FirstRemote     string  `json:"first_remote,omitempty"`
}

// Session owns the UDP socket and drives the per-packet pipeline:
// decode, continuity tracking, level estimation, display.
//
// Packet processing is strictly sequential: one receive-loop goroutine fully
// handles each datagram before accepting the next. The mutex only exists so
// the HTTP monitoring API can take consistent snapshots; the packet path has
// no internal concurrency.
type Session struct {
	cfg     *config.Config
	logger  *slog.Logger
	printer *display.Printer
	metrics *metrics.Metrics // nil disables metrics recording

	conn *net.UDPConn

	stats     SessionStats
	tracker   *sequence.Tracker
	estimator *meter.Estimator

	lastPrint time.Time

	done    chan struct{}
	fatalCh chan error
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// NewSession creates a session with fresh stats, tracker, and estimator.
// m may be nil when Prometheus export is disabled.
func NewSession(cfg *config.Config, logger *slog.Logger, printer *display.Printer, m *metrics.Metrics) *Session {
	return &Session{
		cfg:     cfg,
		logger:  logger,
		printer: printer,
		metrics: m,
		tracker: sequence.NewTracker(),
		estimator: meter.NewEstimator(meter.Config{
			Decay:       cfg.Meter.Decay,
			DecayFactor: cfg.Meter.DecayFactor,
			DBFloor:     cfg.Meter.DBFloor,
		}),
		done:    make(chan struct{}),
		fatalCh: make(chan error, 1),
	}
}

// Start binds the UDP socket and launches the receive loop.
func (s *Session) Start() error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", s.cfg.Server.BindAddress, s.cfg.Server.UDPPort))
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP: %w", err)
	}

	s.conn = conn

	if err := s.conn.SetReadBuffer(s.cfg.Server.BufferSize); err != nil {
		s.logger.Warn("Failed to set UDP read buffer size",
			slog.Int("buffer_size", s.cfg.Server.BufferSize),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("Probe listening",
		slog.String("address", addr.String()),
		slog.Int("buffer_size", s.cfg.Server.BufferSize),
	)
	s.printer.Banner(s.cfg.Server.UDPPort)

	s.wg.Add(1)
	go s.receiveLoop()

	return nil
}

// LocalAddr returns the bound socket address, or nil before Start.
func (s *Session) LocalAddr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Fatal reports unrecoverable socket errors from the receive loop. Per-packet
// decode failures never appear here.
func (s *Session) Fatal() <-chan error {
	return s.fatalCh
}

// Stop shuts down the receive loop, waits for it to drain, and prints the
// session summary.
func (s *Session) Stop() {
	close(s.done)

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.logger.Warn("Error closing UDP connection", slog.String("error", err.Error()))
		}
	}

	s.wg.Wait()

	snap := s.Stats()
	s.printer.Summary(display.StatsSnapshot{
		PacketsReceived: snap.PacketsReceived,
		PacketsValid:    snap.PacketsValid,
		PacketsLost:     snap.PacketsLost,
		BytesReceived:   snap.BytesReceived,
		Elapsed:         time.Duration(snap.ElapsedSeconds * float64(time.Second)),
		LevelDB:         snap.LevelDB,
	})

	s.logger.Info("Session finished",
		slog.Uint64("packets_received", snap.PacketsReceived),
		slog.Uint64("packets_valid", snap.PacketsValid),
		slog.Int64("packets_lost", snap.PacketsLost),
		slog.Uint64("too_short", snap.TooShort),
		slog.Uint64("bad_magic", snap.BadMagic),
		slog.Uint64("bytes_received", snap.BytesReceived),
	)
}

// receiveLoop blocks on the socket and hands each datagram to
// ProcessDatagram. Read deadlines tick once per second so shutdown is
// observed promptly; every other per-packet step runs to completion before
// the next read.
func (s *Session) receiveLoop() {
	defer s.wg.Done()

	buffer := make([]byte, maxDatagramSize)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(1 * time.Second)); err != nil {
			s.logger.Error("Failed to set read deadline", slog.String("error", err.Error()))
			s.fail(err)
			return
		}

		n, remoteAddr, err := s.conn.ReadFromUDP(buffer)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			select {
			case <-s.done:
				return
			default:
				// Socket faults are not part of normal operation; escalate.
				s.logger.Error("Failed to read UDP packet", slog.String("error", err.Error()))
				s.fail(err)
				return
			}
		}

		s.ProcessDatagram(buffer[:n], remoteAddr.String())
	}
}

func (s *Session) fail(err error) {
	select {
	case s.fatalCh <- err:
	default:
	}
}

// ProcessDatagram runs the full per-packet pipeline on one raw datagram.
// Rejected datagrams are counted and logged; they never abort the session.
func (s *Session) ProcessDatagram(data []byte, remote string) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stats.PacketsReceived == 0 {
		s.stats.FirstPacketAt = now
		s.stats.FirstRemote = remote
		s.lastPrint = now
		s.printer.FirstPacket(remote)
		s.logger.Info("First packet received", slog.String("remote_addr", remote))
	}

	s.stats.PacketsReceived++
	s.stats.BytesReceived += uint64(len(data))
	if s.metrics != nil {
		s.metrics.RecordDatagram(len(data))
	}

	frame, err := protocol.ParseFrame(data)
	switch {
	case errors.Is(err, protocol.ErrTooShort):
		s.stats.TooShort++
		if s.metrics != nil {
			s.metrics.RecordTooShort()
		}
		s.logger.Warn("Packet too small",
			slog.Int("packet_size", len(data)),
			slog.String("remote_addr", remote),
		)
		return

	case errors.Is(err, protocol.ErrBadMagic):
		s.stats.BadMagic++
		if s.metrics != nil {
			s.metrics.RecordBadMagic()
		}
		s.logger.Warn("Invalid frame magic",
			slog.String("error", err.Error()),
			slog.String("remote_addr", remote),
		)
		return

	case err != nil:
		// No other decode failure exists today; treated like a rejection.
		s.logger.Warn("Failed to decode frame", slog.String("error", err.Error()))
		return
	}

	s.stats.PacketsValid++
	if s.metrics != nil {
		s.metrics.RecordValidFrame(len(frame.Payload))
	}

	lost := s.tracker.Observe(frame.Header.Sequence)
	if lost > 0 {
		if s.metrics != nil {
			s.metrics.RecordLost(lost)
		}
		s.logger.Debug("Sequence gap detected",
			slog.Int("sequence", int(frame.Header.Sequence)),
			slog.Int64("newly_lost", lost),
			slog.Int64("total_lost", s.tracker.Lost()),
		)
	}

	samples := frame.Samples()
	instant := s.estimator.Update(samples)
	if s.metrics != nil {
		s.metrics.SetLevelDB(s.estimator.DB())
	}

	if n := s.cfg.Display.DebugEvery; n > 0 && len(samples) > 0 {
		if s.stats.PacketsValid == 1 || s.stats.PacketsValid%uint64(n) == 0 {
			s.printer.DebugLine(s.stats.PacketsValid, instant, samples)
		}
	}

	s.maybeDisplay(now)
}

// maybeDisplay applies the configured display cadence. Caller holds s.mu.
func (s *Session) maybeDisplay(now time.Time) {
	switch s.cfg.Display.Policy {
	case config.DisplayPolicyModulo:
		if s.stats.PacketsValid%uint64(s.cfg.Display.Modulo) != 0 {
			return
		}
	default: // interval
		if now.Sub(s.lastPrint) < s.cfg.Display.GetInterval() {
			return
		}
		s.lastPrint = now
	}

	s.printer.StatusLine(display.StatsSnapshot{
		PacketsReceived: s.stats.PacketsReceived,
		PacketsValid:    s.stats.PacketsValid,
		PacketsLost:     s.tracker.Lost(),
		BytesReceived:   s.stats.BytesReceived,
		Elapsed:         now.Sub(s.stats.FirstPacketAt),
		LevelDB:         s.estimator.DB(),
	})
}

// Stats returns a consistent snapshot of session state.
func (s *Session) Stats() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, hasSeq := s.tracker.Last()

	var elapsed float64
	if !s.stats.FirstPacketAt.IsZero() {
		elapsed = time.Since(s.stats.FirstPacketAt).Seconds()
	}

	return StatsSnapshot{
		PacketsReceived: s.stats.PacketsReceived,
		PacketsValid:    s.stats.PacketsValid,
		TooShort:        s.stats.TooShort,
		BadMagic:        s.stats.BadMagic,
		PacketsLost:     s.tracker.Lost(),
		BytesReceived:   s.stats.BytesReceived,
		LastSequence:    last,
		HasSequence:     hasSeq,
		RunningPeak:     s.estimator.RunningPeak(),
		LevelDB:         s.estimator.DB(),
		ElapsedSeconds:  elapsed,
		FirstRemote:     s.stats.FirstRemote,
	}
}
