package engine

import "github.com/seanwallawalla-forks/gyro/pkg/gyroerr"

// checkCycles runs a white/gray/black DFS over the accumulated edge
// list's internal (non-root) edges. It is additive: the core engine loop
// never calls it mid-run, only once after the BFS loop empties.
func (e *Engine) checkCycles() error {
	const (
		white = iota
		gray
		black
	)

	adj := make(map[int][]int)
	for _, edge := range e.edges.All() {
		if edge.Parent.IsRoot {
			continue
		}
		from := int(edge.Parent.FromDep)
		adj[from] = append(adj[from], int(edge.To))
	}

	color := make(map[int]int, e.table.Len())
	var cycleMembers []int
	var hasCycle bool

	var dfs func(n int)
	dfs = func(n int) {
		color[n] = gray
		for _, child := range adj[n] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				cycleMembers = append(cycleMembers, child)
			}
			if hasCycle {
				return
			}
		}
		color[n] = black
	}

	for n := 0; n < e.table.Len(); n++ {
		if color[n] == white {
			dfs(n)
			if hasCycle {
				break
			}
		}
	}

	if !hasCycle {
		return nil
	}

	aliases := make([]string, 0, len(cycleMembers))
	for _, edge := range e.edges.All() {
		for _, m := range cycleMembers {
			if int(edge.To) == m {
				aliases = append(aliases, edge.Alias)
			}
		}
	}
	return gyroerr.Wrap(gyroerr.ErrCodeCycle, &gyroerr.CycleError{Aliases: aliases}, "dependency cycle detected")
}
