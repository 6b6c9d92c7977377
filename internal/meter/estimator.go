package meter

import (
	"math"
	"time"
)

// Default estimator parameters, matching the sender-side display tool.
const (
	DefaultDecayFactor = 0.95
	DefaultDBFloor     = -60.0

	// dbEpsilon keeps the log10 out of its domain error when the peak is
	// denormal-small but nonzero.
	dbEpsilon = 1e-10
)

// Config controls the peak estimator.
type Config struct {
	// Decay enables the slowly-decaying running peak. When false the running
	// peak only ever rises (instantaneous-maximum profile).
	Decay bool

	// DecayFactor is applied to the running peak once per update, so the
	// effective decay rate depends on packet arrival frequency.
	DecayFactor float64

	// DBFloor is the level reported for silence, in dB.
	DBFloor float64
}

// DefaultConfig returns the decaying-meter profile.
func DefaultConfig() Config {
	return Config{
		Decay:       true,
		DecayFactor: DefaultDecayFactor,
		DBFloor:     DefaultDBFloor,
	}
}

// Estimator maintains a running peak level over a stream of float32 sample
// batches. It is a single aggregate peak across all interleaved channel
// samples; no RMS, no clipping detection, no per-channel separation.
//
// Estimator is not safe for concurrent use. The session loop owns it
// exclusively, so no locking is needed.
type Estimator struct {
	cfg         Config
	runningPeak float64

	// Lightweight stats for the monitoring API
	updates    uint64
	lastUpdate time.Time
}

// EstimatorStats is a snapshot of estimator state for monitoring.
type EstimatorStats struct {
	RunningPeak float64   `json:"running_peak"`
	LevelDB     float64   `json:"level_db"`
	Updates     uint64    `json:"updates"`
	LastUpdate  time.Time `json:"last_update"`
}

// NewEstimator creates an estimator with the running peak at 0.
func NewEstimator(cfg Config) *Estimator {
	if cfg.DecayFactor == 0 {
		cfg.DecayFactor = DefaultDecayFactor
	}
	if cfg.DBFloor == 0 {
		cfg.DBFloor = DefaultDBFloor
	}
	return &Estimator{cfg: cfg}
}

// Update merges a batch of samples into the running peak and returns the
// instantaneous absolute peak of the batch. An empty batch is a no-op: the
// running peak neither rises nor decays.
func (e *Estimator) Update(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}

	var instant float64
	for _, s := range samples {
		if abs := math.Abs(float64(s)); abs > instant {
			instant = abs
		}
	}

	prior := e.runningPeak
	if e.cfg.Decay {
		prior *= e.cfg.DecayFactor
	}
	e.runningPeak = math.Max(prior, instant)

	e.updates++
	e.lastUpdate = time.Now()

	return instant
}

// RunningPeak returns the current running peak in linear sample units.
func (e *Estimator) RunningPeak() float64 {
	return e.runningPeak
}

// DB returns the running peak as decibels full scale. Exact silence reports
// the configured floor directly rather than evaluating the logarithm, and
// any computed level below the floor is clamped to it.
func (e *Estimator) DB() float64 {
	if e.runningPeak == 0 {
		return e.cfg.DBFloor
	}
	db := 20 * math.Log10(e.runningPeak+dbEpsilon)
	if db < e.cfg.DBFloor {
		return e.cfg.DBFloor
	}
	return db
}

// Stats returns a snapshot of the estimator state.
func (e *Estimator) Stats() EstimatorStats {
	return EstimatorStats{
		RunningPeak: e.runningPeak,
		LevelDB:     e.DB(),
		Updates:     e.updates,
		LastUpdate:  e.lastUpdate,
	}
}
