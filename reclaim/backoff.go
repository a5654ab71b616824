package reclaim

import "runtime"

const spinLimit = 6

// Backoff spreads out CAS retries: a few rounds of exponential busy
// spinning, then yielding to the scheduler. Purely a contention tuning
// knob; correctness never depends on it.
type Backoff struct {
	n    uint
	sink uint64
}

// Once performs one backoff step.
func (b *Backoff) Once() {
	if b.n < spinLimit {
		b.n++
		for i := uint(0); i < 1<<b.n; i++ {
			b.sink++
		}
		return
	}
	runtime.Gosched()
}
