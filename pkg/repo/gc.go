package repo

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/grovevcs/grove/pkg/object"
)

// GCSummary reports what a collection pass saw and removed.
type GCSummary struct {
	Roots     int // refs the mark phase started from
	Reachable int // objects proven live
	Scanned   int // objects in the store before the sweep
	Deleted   int // objects removed
}

// sweepableStore is the extra surface GC needs beyond object.Store. Both
// backends provide it.
type sweepableStore interface {
	object.Store
	Objects() ([]object.Hash, error)
	Delete(h object.Hash) error
}

// GC removes objects unreachable from any ref. The mark phase walks every
// ref target (annotated tags dereference during the walk); the sweep
// deletes the rest with a bounded worker pool. Objects written by a
// publish attempt that loses its CAS, and anything orphaned by branch or
// tag deletion, is exactly what this reclaims.
//
// Safe only while no publish is in flight: a concurrent writer can create
// objects between mark and sweep that the mark never saw.
func (r *Repo) GC() (GCSummary, error) {
	var summary GCSummary

	allRefs, err := r.Refs.List("")
	if err != nil {
		return summary, fmt.Errorf("gc: list refs: %w", err)
	}
	roots := make([]object.Hash, 0, len(allRefs))
	for _, h := range allRefs {
		roots = append(roots, h)
	}
	summary.Roots = len(roots)

	reachable, err := object.ReachableSet(r.Store, roots)
	if err != nil {
		return summary, fmt.Errorf("gc: mark: %w", err)
	}
	summary.Reachable = len(reachable)

	sweeper, ok := r.Store.(sweepableStore)
	if !ok {
		return summary, fmt.Errorf("gc: store %T does not support sweeping", r.Store)
	}
	all, err := sweeper.Objects()
	if err != nil {
		return summary, fmt.Errorf("gc: enumerate: %w", err)
	}
	summary.Scanned = len(all)

	var deleted atomic.Int64
	p := pool.New().WithErrors().WithMaxGoroutines(runtime.GOMAXPROCS(0))
	for _, h := range all {
		h := h
		if _, live := reachable[h]; live {
			continue
		}
		p.Go(func() error {
			if err := sweeper.Delete(h); err != nil {
				return fmt.Errorf("gc: sweep %s: %w", h, err)
			}
			deleted.Add(1)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return summary, err
	}
	summary.Deleted = int(deleted.Load())
	return summary, nil
}
