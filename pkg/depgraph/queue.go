package depgraph

// Queue is the Fetch Queue: parallel per-source row tables. Two
// shape-identical instances exist side by side in the engine: the active
// Queue, mutated during a batch, and the Next Buffer, which only ever
// accumulates edges awaiting promotion to the following batch.
type Queue struct {
	rows map[string][]Row
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{rows: make(map[string][]Row)}
}

// Append adds a fresh row carrying edge to source's table and returns its
// row index.
func (q *Queue) Append(source string, edge Edge) int {
	q.rows[source] = append(q.rows[source], Row{Edge: edge})
	return len(q.rows[source]) - 1
}

// Rows returns the current rows for source, in row-index order.
func (q *Queue) Rows(source string) []Row { return q.rows[source] }

// Row returns a pointer to row idx of source's table for in-place mutation
// by a worker or the reconciler.
func (q *Queue) Row(source string, idx int) *Row { return &q.rows[source][idx] }

// Empty reports whether every per-source table has length 0.
func (q *Queue) Empty() bool {
	for _, rows := range q.rows {
		if len(rows) > 0 {
			return false
		}
	}
	return true
}

// Sources returns every source tag that has a table in q, including
// tables that are currently empty, in Go map iteration order, which is
// not stable between calls. Callers that need a stable per-source
// processing order pass an explicit driver order instead; engine.go
// does this.
func (q *Queue) Sources() []string {
	out := make([]string, 0, len(q.rows))
	for s := range q.rows {
		out = append(out, s)
	}
	return out
}

// ClearAndLoad shrinks every per-source table to length 0 (without
// releasing capacity) then re-appends each edge from next as a fresh row
// with an empty children buffer. Used by the engine driver to promote
// the Next Buffer into the active queue between batches.
func (q *Queue) ClearAndLoad(next *Queue, order []string) {
	for _, source := range order {
		if q.rows == nil {
			q.rows = make(map[string][]Row)
		}
		q.rows[source] = q.rows[source][:0]
		for _, row := range next.rows[source] {
			q.rows[source] = append(q.rows[source], Row{Edge: row.Edge})
		}
	}
}
