package engine

// ClearResolution implements the clear-resolution operation: for every
// queue edge (either root flavor) matching alias, look up its dependency
// descriptor and remove the corresponding Resolution Entry from that
// source's driver, forcing the next Fetch to treat it as a fresh fetch.
//
// This scans e.queue rather than the accumulated edge list: a caller
// typically constructs an Engine and calls ClearResolution without ever
// running Fetch, so e.edges is still empty at this point — the seeded
// root edges for a not-yet-run engine live only in the queue.
// Returns true if at least one entry was removed.
func (e *Engine) ClearResolution(alias string) bool {
	removed := false
	for _, source := range e.driverOrder {
		drv := e.drivers[source]
		for _, row := range e.queue.Rows(source) {
			if !row.Edge.Parent.IsRoot || row.Edge.Alias != alias {
				continue
			}
			src := e.table.Get(row.Edge.To)
			if resIdx, ok := drv.FindResolution(src); ok {
				if drv.RemoveResolution(resIdx) {
					removed = true
				}
			}
		}
	}
	return removed
}
