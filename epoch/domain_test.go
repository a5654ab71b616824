package epoch

import (
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

type payload struct {
	value int64
}

func TestRegisterBound(t *testing.T) {
	d := New(Config{MaxThreads: 2})

	_, err := d.Register()
	require.NoError(t, err)
	_, err = d.Register()
	require.NoError(t, err)

	_, err = d.Register()
	require.ErrorIs(t, err, ErrTooManyThreads, "exhaustion must be a distinct configuration error")
}

func TestAdvanceBlockedByLaggingThread(t *testing.T) {
	d := New(Config{MaxThreads: 4})

	lagger, err := d.Register()
	require.NoError(t, err)

	g := lagger.Enter() // pinned at epoch 0

	// first advance succeeds: the lagger has observed the current epoch
	d.TryAdvance()
	require.Equal(t, uint64(1), d.Epoch())

	// lagger still records epoch 0, so no further advance may happen
	require.Zero(t, d.TryAdvance())
	require.Equal(t, uint64(1), d.Epoch())

	g.Leave()
	d.TryAdvance()
	require.Equal(t, uint64(2), d.Epoch())
}

func TestRetireFreedTwoGenerationsLater(t *testing.T) {
	d := New(Config{MaxThreads: 2})
	th, err := d.Register()
	require.NoError(t, err)

	var freed atomic.Int64
	count := func(unsafe.Pointer) { freed.Add(1) }

	g := th.Enter()
	g.Retire(unsafe.Pointer(&payload{}), count)
	g.Leave()

	d.TryAdvance()
	require.Equal(t, int64(0), freed.Load(), "too early: only one generation stale")
	d.TryAdvance()
	require.Equal(t, int64(1), freed.Load(), "two generations stale must be freed")

	// never double-freed
	for i := 0; i < 5; i++ {
		d.TryAdvance()
	}
	require.Equal(t, int64(1), freed.Load())
}

// Under steady traffic (all threads regularly entering and leaving),
// repeated advances must reclaim every retired object within a bounded
// number of cycles.
func TestReclamationLiveness(t *testing.T) {
	const (
		workers = 4
		retires = 2000
	)
	d := New(Config{MaxThreads: workers})

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			th, err := d.Register()
			if err != nil {
				t.Error(err)
				return
			}
			for i := 0; i < retires; i++ {
				g := th.Enter()
				g.Retire(unsafe.Pointer(&payload{value: int64(i)}), func(unsafe.Pointer) {})
				g.Leave()
				d.TryAdvance()
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 3; i++ {
		d.TryAdvance()
	}
	st := d.Stats()
	require.Equal(t, uint64(workers*retires), st.Retired)
	require.Equal(t, st.Retired, st.Freed, "steady-state traffic must reclaim everything")
}

// Domain.Retire is the thread-handle form of Guard.Retire; both must
// file into the same bucket and free on the same schedule.
func TestDomainRetire(t *testing.T) {
	d := New(Config{MaxThreads: 2})
	th, err := d.Register()
	require.NoError(t, err)

	var freed atomic.Int64
	g := th.Enter()
	d.Retire(th, unsafe.Pointer(&payload{}), func(unsafe.Pointer) { freed.Add(1) })
	g.Leave()

	d.TryAdvance()
	require.Equal(t, int64(0), freed.Load())
	d.TryAdvance()
	require.Equal(t, int64(1), freed.Load())
}

func TestStats(t *testing.T) {
	d := New(Config{})
	th, err := d.Register()
	require.NoError(t, err)

	g := th.Enter()
	g.Retire(unsafe.Pointer(&payload{}), func(unsafe.Pointer) {})
	g.Leave()

	st := d.Stats()
	require.Equal(t, uint64(1), st.Retired)
	require.Zero(t, st.Freed)

	for i := 0; i < 3; i++ {
		d.TryAdvance()
	}
	st = d.Stats()
	require.Equal(t, uint64(1), st.Freed)
	require.Equal(t, uint64(3), st.Advances)
}
