// Package steps turns a cumulative hardware step counter into steps since
// session start.
package steps

// Tracker latches the first raw counter value of a session and reports
// deltas against it. The zero value is ready to use.
type Tracker struct {
	baseline    int64
	hasBaseline bool
	last        int64

	// steps carried over from earlier runs of the same session
	carried int64
}

// Observe records a raw cumulative counter value and returns the number of
// steps since the baseline. A counter that drops below the baseline (device
// reboot, overflow) yields zero rather than a negative count.
func (t *Tracker) Observe(raw int64) int64 {
	if !t.hasBaseline {
		t.baseline = raw
		t.hasBaseline = true
	}
	delta := raw - t.baseline
	if delta < 0 {
		delta = 0
	}
	t.last = t.carried + delta
	return t.last
}

// Rebase drops the baseline but keeps the steps counted so far, so the next
// Observe latches a fresh baseline and continues from the current total.
func (t *Tracker) Rebase() {
	t.carried = t.last
	t.baseline = 0
	t.hasBaseline = false
}

// Steps is the most recent value returned by Observe, 0 if none.
func (t *Tracker) Steps() int64 {
	return t.last
}

// Baseline returns the latched raw value and whether one is set.
func (t *Tracker) Baseline() (int64, bool) {
	return t.baseline, t.hasBaseline
}

// Reset clears the baseline so the next Observe starts a new session.
func (t *Tracker) Reset() {
	*t = Tracker{}
}
