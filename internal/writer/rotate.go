package writer

// rotate advances the active-pool cursor to the next pool in the ring:
// wait (bounded) for the next pool's readers to drain, evict its stale
// index entries, then make it active at offset 0. If the wait times
// out, rotation proceeds anyway — recording integrity takes precedence
// over any reader still mid-flight against that pool.
func (w *Writer) rotate() error {
	next := w.pools.NextIdx()
	nextPool := w.pools.Pool(next)

	nextPool.Seal()
	defer nextPool.Unseal()

	if err := nextPool.WaitForDrain(w.ctx, w.opts.PoolOptions.RotationTimeout); err != nil {
		w.log.Warnw("rotation proceeding before readers fully drained",
			"pool", next, "error", err)
	}

	evicted := w.index.EvictPool(next)
	w.log.Infow("rotated pool", "from", w.pools.ActiveIdx(), "to", next, "evictedEntries", evicted)

	if err := nextPool.EnsureSize(); err != nil {
		return err
	}

	w.pools.SetActive(next, 0)
	return nil
}
