package engine

import "context"

// TombstoneRatio returns the fraction of graph slots held by tombstones.
func (e *Engine) TombstoneRatio() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.TombstoneRatio()
}

// CompactionNeeded reports whether the tombstone ratio has crossed the
// configured threshold.
func (e *Engine) CompactionNeeded() bool {
	return e.TombstoneRatio() >= e.opts.CompactionThreshold
}

// Compact rebuilds the graph without tombstones and swaps it in atomically.
// Searches running against the old graph finish unaffected; writes block
// for the duration of the rebuild. The rebuild occupies a background
// worker slot from the resource controller.
func (e *Engine) Compact(ctx context.Context) error {
	if err := e.opts.Resource.AcquireBackground(ctx); err != nil {
		return err
	}
	defer e.opts.Resource.ReleaseBackground()

	e.mu.Lock()
	defer e.mu.Unlock()

	fresh, err := e.graph.RebuildCompacted(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "compaction failed", "error", err)
		return err
	}

	e.graph = fresh
	e.logger.InfoContext(ctx, "compaction completed", "live", fresh.Len())
	return nil
}
