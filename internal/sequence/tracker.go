package sequence

// Tracker accumulates lost-packet counts from observed sequence numbers.
//
// The sender assigns sequence numbers that increment by 1 per frame. A
// forward gap between consecutive observations counts its missing frames as
// lost; duplicates and reordered arrivals register as zero loss and silently
// advance the baseline, which can undercount loss after reordering. Sequence
// wraparound is not handled: a wrapped sender produces a negative gap, which
// counts as zero. Both are accepted policy for a diagnostic tool.
type Tracker struct {
	initialized bool
	last        int32
	lost        int64
}

// NewTracker creates a Tracker with no baseline. The first observation
// establishes the baseline and is never counted as loss.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe records a sequence number and returns the number of newly lost
// packets implied by the gap to the previous observation.
func (t *Tracker) Observe(seq int32) int64 {
	if !t.initialized {
		t.initialized = true
		t.last = seq
		return 0
	}

	gap := int64(seq) - int64(t.last) - 1
	t.last = seq

	if gap <= 0 {
		return 0
	}

	t.lost += gap
	return gap
}

// Lost returns the cumulative lost-packet count. It is monotonically
// non-decreasing.
func (t *Tracker) Lost() int64 {
	return t.lost
}

// Last returns the most recently observed sequence number. The second return
// is false until the first observation.
func (t *Tracker) Last() (int32, bool) {
	return t.last, t.initialized
}
