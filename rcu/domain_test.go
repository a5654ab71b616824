package rcu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fenrir/memory"
)

type record struct {
	id int
}

func TestAdvanceWithActiveReader(t *testing.T) {
	d := NewDomain()
	pool := memory.NewPool(func() *record { return &record{} })
	ring := memory.NewRetireRing(8)

	r := d.NewReader()
	r.Enter()

	require.True(t, ring.Enqueue(&record{id: 1}))
	require.Zero(t, d.Advance(ring, pool, r), "active reader must block reclamation")
	require.Equal(t, 1, ring.Len(), "object must stay queued")

	r.Exit()
	require.Equal(t, 1, d.Advance(ring, pool, r))
	require.True(t, ring.IsEmpty())
}

func TestAdvanceDrainsInOrder(t *testing.T) {
	d := NewDomain()
	pool := memory.NewPool(func() *record { return &record{} })
	ring := memory.NewRetireRing(8)

	for i := 0; i < 5; i++ {
		require.True(t, ring.Enqueue(&record{id: i}))
	}
	require.Equal(t, 5, d.Advance(ring, pool), "no readers: everything reclaims")
	require.True(t, ring.IsEmpty())
}

func TestReaderEpochStamps(t *testing.T) {
	d := NewDomain()
	r := d.NewReader()

	require.Equal(t, inactive, r.Value(), "fresh reader starts outside any read section")

	r.Enter()
	require.Equal(t, d.Epoch(), r.Value())

	d.Advance(memory.NewRetireRing(2), memory.NewPool(func() *record { return &record{} }), r)
	require.Less(t, r.Value(), d.Epoch(), "reader stamp lags after an advance")

	r.Exit()
	require.Equal(t, inactive, r.Value())
}

// hookPool lets a test interleave work into the middle of a drain.
type hookPool struct {
	got   []*record
	onPut func()
}

func (p *hookPool) PutAny(v any) {
	p.got = append(p.got, v.(*record))
	if p.onPut != nil {
		p.onPut()
	}
}

// A record retired while a drain is already in progress must not be
// reclaimed by that same pass: a reader that entered mid-drain may
// still be dereferencing it.
func TestAdvanceLeavesRecordsRetiredMidDrain(t *testing.T) {
	d := NewDomain()
	ring := memory.NewRetireRing(8)
	r := d.NewReader()

	stale := &record{id: 1}
	live := &record{id: 2}
	require.True(t, ring.Enqueue(stale))

	pool := &hookPool{}
	pool.onPut = func() {
		// reader pins and loads the shared pointer just as the
		// writer swaps it out and retires it
		r.Enter()
		require.True(t, ring.Enqueue(live))
		pool.onPut = nil
	}

	require.Equal(t, 1, d.Advance(ring, pool, r), "only the pre-check backlog may drain")
	require.Equal(t, []*record{stale}, pool.got, "mid-drain retiree must stay queued")
	require.Equal(t, 1, ring.Len())

	r.Exit()
	require.Equal(t, 1, d.Advance(ring, pool, r))
	require.Equal(t, []*record{stale, live}, pool.got)
	require.True(t, ring.IsEmpty())
}

func TestMinReaderEpochIgnoresNil(t *testing.T) {
	d := NewDomain()
	a := d.NewReader()
	b := d.NewReader()
	a.Enter()

	require.Equal(t, a.Value(), minReaderEpoch(a, nil, b))
}
