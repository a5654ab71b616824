package main

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/spf13/cobra"

	"fenrir/hazard"
	"fenrir/memory"
	"fenrir/mpmc"
)

// queue payloads are pooled and handed back through the hazard domain
// after consumption, exercising payload-level retirement behind the
// value-owning queue.
type item struct {
	seq uint64
}

func queueCommand() *cobra.Command {
	var producers, consumers, total int
	var capacity uint64

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "MPMC producers and consumers with pooled payloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueue(producers, consumers, total, capacity)
		},
	}

	cmd.Flags().IntVarP(&producers, "producers", "p", runtime.GOMAXPROCS(0)/2+1, "producer goroutines")
	cmd.Flags().IntVarP(&consumers, "consumers", "c", runtime.GOMAXPROCS(0)/2+1, "consumer goroutines")
	cmd.Flags().IntVarP(&total, "total", "n", 1_000_000, "items to move through the queue")
	cmd.Flags().Uint64Var(&capacity, "capacity", 1024, "queue capacity (power of two)")
	return cmd
}

func runQueue(producers, consumers, total int, capacity uint64) error {
	q := mpmc.New[*item](capacity)
	d := hazard.New(hazard.Config{MaxSlots: consumers, ScanThreshold: 256})
	pool := memory.NewPool(func() *item { return &item{} })
	recycle := func(p unsafe.Pointer) { pool.Put((*item)(p)) }

	log.Printf("[stress] queue: producers=%d consumers=%d total=%d cap=%d",
		producers, consumers, total, capacity)
	start := time.Now()

	var produced, consumed atomic.Int64
	var prod sync.WaitGroup
	for p := 0; p < producers; p++ {
		prod.Add(1)
		go func() {
			defer prod.Done()
			for {
				n := produced.Add(1)
				if n > int64(total) {
					return
				}
				it := pool.Get()
				it.seq = uint64(n)
				for !q.TryPush(it) {
					runtime.Gosched() // full
				}
			}
		}()
	}
	done := make(chan struct{})
	go func() {
		prod.Wait()
		close(done)
	}()

	var cons sync.WaitGroup
	errs := make(chan error, consumers)
	for c := 0; c < consumers; c++ {
		cons.Add(1)
		go func() {
			defer cons.Done()
			g, err := d.AcquireGuard()
			if err != nil {
				errs <- fmt.Errorf("acquire guard: %w", err)
				return
			}
			defer g.Release()
			for {
				if it, ok := q.TryPop(); ok {
					consumed.Add(1)
					g.Retire(unsafe.Pointer(it), recycle)
					continue
				}
				select {
				case <-done:
					if it, ok := q.TryPop(); ok {
						consumed.Add(1)
						g.Retire(unsafe.Pointer(it), recycle)
						continue
					}
					return
				default:
					runtime.Gosched()
				}
			}
		}()
	}
	cons.Wait()
	close(errs)
	for err := range errs {
		return err
	}

	d.Scan()
	st := d.Stats()
	log.Printf("[stress] done in %v: consumed=%d retired=%d freed=%d pending=%d",
		time.Since(start), consumed.Load(), st.Retired, st.Freed, d.Pending())

	if consumed.Load() != int64(total) {
		return fmt.Errorf("conservation violated: consumed=%d want=%d", consumed.Load(), total)
	}
	if !q.IsEmpty() {
		return fmt.Errorf("queue not drained: len=%d", q.Len())
	}
	return nil
}
