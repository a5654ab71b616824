package memory

import "testing"

type obj struct{ id int }

func TestRetireRingBasic(t *testing.T) {
	r := NewRetireRing(4) // capacity 4
	o1 := &obj{id: 1}
	o2 := &obj{id: 2}

	if !r.Enqueue(o1) || !r.Enqueue(o2) {
		t.Fatal("enqueue failed unexpectedly")
	}
	if r.Dequeue() != o1 {
		t.Error("expected first dequeue to be o1")
	}
	if r.Dequeue() != o2 {
		t.Error("expected second dequeue to be o2")
	}
	if r.Dequeue() != nil {
		t.Error("expected empty ring to return nil")
	}
}

func TestRetireRingFull(t *testing.T) {
	r := NewRetireRing(2)
	if !r.Enqueue(&obj{}) || !r.Enqueue(&obj{}) {
		t.Fatal("ring should accept up to its capacity")
	}
	if r.Enqueue(&obj{}) {
		t.Error("full ring should reject enqueue")
	}
	if !r.IsFull() {
		t.Error("IsFull should report true")
	}
	r.Dequeue()
	if !r.Enqueue(&obj{}) {
		t.Error("ring should accept again after a dequeue")
	}
}

func TestRetireRingWrapAround(t *testing.T) {
	r := NewRetireRing(4)
	for i := 0; i < 64; i++ {
		if !r.Enqueue(&obj{id: i}) {
			t.Fatalf("enqueue %d failed", i)
		}
		got := r.Dequeue()
		if got == nil || got.(*obj).id != i {
			t.Fatalf("dequeue %d returned %v", i, got)
		}
	}
	if !r.IsEmpty() {
		t.Error("ring should be empty after draining")
	}
}

func TestRetireRingSizeMustBePowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non power-of-two size")
		}
	}()
	NewRetireRing(3)
}

func TestPoolRoundTrip(t *testing.T) {
	pool := NewPool(func() *obj { return &obj{} })
	o := pool.Get()
	o.id = 7
	pool.Put(o)

	var rp ReclaimablePool = pool
	rp.PutAny(pool.Get())
}
