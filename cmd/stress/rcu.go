package main

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"fenrir/memory"
	"fenrir/rcu"
)

// rcu scenario: one writer republishes a shared record and retires the
// old copy into the SPSC ring; readers stamp epochs around their
// reads; a reclaimer drains the ring back into the pool.
type record struct {
	version uint64
	payload [4]uint64
}

func rcuCommand() *cobra.Command {
	var readers, updates int

	cmd := &cobra.Command{
		Use:   "rcu",
		Short: "Single-writer publish/retire pipeline with epoch-stamped readers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRCU(readers, updates)
		},
	}

	cmd.Flags().IntVarP(&readers, "readers", "r", runtime.GOMAXPROCS(0), "reader goroutines")
	cmd.Flags().IntVarP(&updates, "updates", "n", 500_000, "writer republish count")
	return cmd
}

func runRCU(nreaders, updates int) error {
	d := rcu.NewDomain()
	pool := memory.NewPool(func() *record { return &record{} })
	ring := memory.NewRetireRing(1 << 16)

	var shared atomic.Pointer[record]
	shared.Store(pool.Get())

	rds := make([]*rcu.Reader, nreaders)
	for i := range rds {
		rds[i] = d.NewReader()
	}

	log.Printf("[stress] rcu: readers=%d updates=%d", nreaders, updates)
	start := time.Now()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	var reads atomic.Int64

	for _, r := range rds {
		wg.Add(1)
		go func(r *rcu.Reader) {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				r.Enter()
				rec := shared.Load()
				_ = rec.version + rec.payload[0]
				r.Exit()
				reads.Add(1)
			}
		}(r)
	}

	// reclaimer drains retired records whenever no reader is inside
	// a read section
	var reclaimed atomic.Int64
	wg.Add(1)
	go func() {
		defer wg.Done()
		tick := time.NewTicker(time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				reclaimed.Add(int64(d.Advance(ring, pool, rds...)))
			}
		}
	}()

	// single writer
	retired := 0
	for i := 0; i < updates; i++ {
		next := pool.Get()
		next.version = uint64(i) + 1
		old := shared.Swap(next)
		for !ring.Enqueue(old) {
			runtime.Gosched() // ring full, wait for the reclaimer
		}
		retired++
	}
	close(stop)
	wg.Wait()

	// readers are gone; one final pass empties the ring
	reclaimed.Add(int64(d.Advance(ring, pool, rds...)))

	log.Printf("[stress] done in %v: reads=%d retired=%d reclaimed=%d epoch=%d",
		time.Since(start), reads.Load(), retired, reclaimed.Load(), d.Epoch())

	if !ring.IsEmpty() {
		return fmt.Errorf("retire ring not drained: %d records left", ring.Len())
	}
	if reclaimed.Load() != int64(retired) {
		return fmt.Errorf("reclamation accounting broken: retired=%d reclaimed=%d",
			retired, reclaimed.Load())
	}
	return nil
}
