package main

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"fenrir/epoch"
	"fenrir/hazard"
	"fenrir/lfstack"
)

func stackCommand() *cobra.Command {
	var workers, ops int
	var domainName string

	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Concurrent push/pop pairs against the Treiber stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch domainName {
			case "epoch":
				return runStackEpoch(workers, ops)
			case "hazard":
				return runStackHazard(workers, ops)
			default:
				return fmt.Errorf("unknown domain %q (want hazard or epoch)", domainName)
			}
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", runtime.GOMAXPROCS(0), "concurrent workers")
	cmd.Flags().IntVarP(&ops, "ops", "n", 100_000, "push/pop pairs per worker")
	cmd.Flags().StringVarP(&domainName, "domain", "d", "epoch", "reclamation domain: hazard|epoch")
	return cmd
}

func runStackEpoch(workers, ops int) error {
	s := lfstack.New[uint64]()
	d := epoch.New(epoch.Config{MaxThreads: workers})

	log.Printf("[stress] stack/epoch: workers=%d ops=%d", workers, ops)
	start := time.Now()

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			th, err := d.Register()
			if err != nil {
				errs <- err
				return
			}
			for i := 0; i < ops; i++ {
				s.Push(uint64(w*ops + i))
				g := th.Enter()
				_, ok := s.Pop(g)
				g.Leave()
				if !ok {
					errs <- fmt.Errorf("worker %d: pop failed with items outstanding", w)
					return
				}
				if i%512 == 0 {
					d.TryAdvance()
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		return err
	}

	for i := 0; i < 3; i++ {
		d.TryAdvance()
	}
	st := d.Stats()
	log.Printf("[stress] done in %v: len=%d retired=%d freed=%d advances=%d",
		time.Since(start), s.Len(), st.Retired, st.Freed, st.Advances)

	if s.Len() != 0 {
		return fmt.Errorf("conservation violated: %d items left on stack", s.Len())
	}
	if st.Retired != st.Freed {
		return fmt.Errorf("reclamation leak: retired=%d freed=%d", st.Retired, st.Freed)
	}
	return nil
}

func runStackHazard(workers, ops int) error {
	s := lfstack.New[uint64]()
	d := hazard.New(hazard.Config{MaxSlots: workers, ScanThreshold: 128})

	log.Printf("[stress] stack/hazard: workers=%d ops=%d", workers, ops)
	start := time.Now()

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			g, err := d.AcquireGuard()
			if err != nil {
				errs <- fmt.Errorf("acquire guard: %w", err)
				return
			}
			defer g.Release()
			for i := 0; i < ops; i++ {
				s.Push(uint64(w*ops + i))
				if _, ok := s.Pop(g); !ok {
					errs <- fmt.Errorf("worker %d: pop failed with items outstanding", w)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		return err
	}

	d.Scan()
	st := d.Stats()
	log.Printf("[stress] done in %v: len=%d retired=%d freed=%d scans=%d pending=%d",
		time.Since(start), s.Len(), st.Retired, st.Freed, st.Scans, d.Pending())

	if s.Len() != 0 {
		return fmt.Errorf("conservation violated: %d items left on stack", s.Len())
	}
	if st.Freed+uint64(d.Pending()) != st.Retired {
		return fmt.Errorf("reclamation accounting broken: retired=%d freed=%d pending=%d",
			st.Retired, st.Freed, d.Pending())
	}
	return nil
}
