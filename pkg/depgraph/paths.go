package depgraph

import "fmt"

// PathsMap maps a DepIdx to the filesystem path where its contents are
// available, populated after each batch and consumed by the build-graph
// emitter.
type PathsMap struct {
	paths map[DepIdx]string
}

// NewPathsMap returns an empty PathsMap.
func NewPathsMap() *PathsMap {
	return &PathsMap{paths: make(map[DepIdx]string)}
}

// Insert binds idx to path. A duplicate insertion for the same idx is a
// defect (put-no-clobber) and panics rather than silently overwriting an
// already-resolved path.
func (m *PathsMap) Insert(idx DepIdx, path string) {
	if _, exists := m.paths[idx]; exists {
		panic(fmt.Sprintf("depgraph: duplicate paths-map insertion for dep_idx %d", idx))
	}
	m.paths[idx] = path
}

// Get returns the path bound to idx, if any.
func (m *PathsMap) Get(idx DepIdx) (string, bool) {
	p, ok := m.paths[idx]
	return p, ok
}

// Len returns the number of bound entries.
func (m *PathsMap) Len() int { return len(m.paths) }
