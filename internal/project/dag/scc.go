package dag

import (
	"cmp"
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type SCCID uint32

// SCC is a strongly connected component; Members are ascending.
type SCC struct {
	ID      SCCID
	Members []ModuleID
}

// Components partitions the visited modules of a graph into SCCs.
type Components struct {
	SCCs []SCC
	Of   []SCCID // Of[module]; meaningful only for visited modules
}

type tarjanFrame struct {
	v    ModuleID
	next int // index of the next edge of v to explore
}

// StronglyConnected runs Tarjan's algorithm over the visited part of g with an
// explicit work stack, so deep dependency chains cannot overflow the goroutine
// stack. Roots are taken in ascending ID order and edges are already sorted,
// which makes the partition deterministic. SCCs are numbered by their
// smallest member.
func StronglyConnected(g *Graph) (*Components, error) {
	n := len(g.Edges)
	const unvisited = -1
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}

	comps := &Components{Of: make([]SCCID, n)}
	var stack []ModuleID
	var work []tarjanFrame
	counter := 0

	visit := func(v ModuleID) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		work = append(work, tarjanFrame{v: v})
	}

	for _, root := range g.Nodes() {
		if index[root] != unvisited {
			continue
		}
		visit(root)
		for len(work) > 0 {
			top := &work[len(work)-1]
			v := top.v
			if edges := g.Edges[v]; top.next < len(edges) {
				w := edges[top.next]
				top.next++
				if !g.Visited[w] {
					return nil, fmt.Errorf("%w: edge %d -> %d leaves the visited set", ErrInternalInvariant, v, w)
				}
				switch {
				case index[w] == unvisited:
					visit(w)
				case onStack[w]:
					low[v] = min(low[v], index[w])
				}
				continue
			}

			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1].v
				low[parent] = min(low[parent], low[v])
			}
			if low[v] != index[v] {
				continue
			}
			id, err := safecast.Conv[SCCID](len(comps.SCCs))
			if err != nil {
				return nil, fmt.Errorf("scc id overflow: %w", err)
			}
			var members []ModuleID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comps.Of[w] = id
				members = append(members, w)
				if w == v {
					break
				}
			}
			slices.Sort(members)
			comps.SCCs = append(comps.SCCs, SCC{ID: id, Members: members})
		}
	}
	comps.renumber()
	return comps, nil
}

// renumber orders SCCs by their smallest member so that SCC IDs follow
// module name order.
func (c *Components) renumber() {
	slices.SortFunc(c.SCCs, func(a, b SCC) int {
		return cmp.Compare(a.Members[0], b.Members[0])
	})
	for i := range c.SCCs {
		id := SCCID(i) // #nosec G115 -- bounded by the count checked above
		c.SCCs[i].ID = id
		for _, m := range c.SCCs[i].Members {
			c.Of[m] = id
		}
	}
}
