package lfstack

import (
	"testing"

	"fenrir/epoch"
	"fenrir/hazard"
)

// ---------------- Basic Benchmarks ---------------- //

func BenchmarkPushPopEpoch(b *testing.B) {
	s := New[int]()
	d := epoch.New(epoch.Config{})
	th, err := d.Register()
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Push(i)
		g := th.Enter()
		s.Pop(g)
		g.Leave()
		if i%1024 == 0 {
			d.TryAdvance()
		}
	}
}

func BenchmarkPushPopHazard(b *testing.B) {
	s := New[int]()
	d := hazard.New(hazard.Config{})
	g, err := d.AcquireGuard()
	if err != nil {
		b.Fatal(err)
	}
	defer g.Release()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Push(i)
		s.Pop(g)
	}
}

func BenchmarkContendedEpoch(b *testing.B) {
	s := New[int]()
	d := epoch.New(epoch.Config{MaxThreads: 256})

	b.RunParallel(func(pb *testing.PB) {
		th, err := d.Register()
		if err != nil {
			b.Error(err)
			return
		}
		i := 0
		for pb.Next() {
			s.Push(i)
			g := th.Enter()
			s.Pop(g)
			g.Leave()
			if i%1024 == 0 {
				d.TryAdvance()
			}
			i++
		}
	})
}
