package canvas

import "time"

// timingSlots is the number of tick timestamps kept for frame rate estimation.
const timingSlots = 10

// TimingWindow estimates the achieved frame rate from the last ten ticks.
// The estimate is zero until the ring has been filled once.
type TimingWindow struct {
	ticks [timingSlots]time.Time
	idx   int
	full  bool
	rate  float64
}

// Record stores a tick timestamp and returns the updated estimate.
func (w *TimingWindow) Record(now time.Time) float64 {
	if w.full {
		if d := now.Sub(w.ticks[w.idx]); d > 0 {
			w.rate = timingSlots / d.Seconds()
		}
	}
	w.ticks[w.idx] = now
	w.idx++
	if w.idx == timingSlots {
		w.idx = 0
		w.full = true
	}
	return w.rate
}

// Rate returns the most recent estimate in frames per second.
func (w *TimingWindow) Rate() float64 { return w.rate }

// Reset forgets all recorded ticks.
func (w *TimingWindow) Reset() { *w = TimingWindow{} }
