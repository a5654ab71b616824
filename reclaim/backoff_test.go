package reclaim

import "testing"

func TestBackoffPhases(t *testing.T) {
	var b Backoff
	// spin phase, then yield phase; must never panic or stall
	for i := 0; i < spinLimit*4; i++ {
		b.Once()
	}
	if b.n != spinLimit {
		t.Errorf("backoff should cap at spinLimit, got %d", b.n)
	}
}
