package dag

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInternalInvariant reports a scheduling result that contradicts the graph.
// It always indicates a bug.
var ErrInternalInvariant = errors.New("internal invariant violated")

// Condensation is the DAG of SCCs. Edges[s] lists the SCCs that s depends on.
type Condensation struct {
	Edges [][]SCCID
	Indeg []int // number of distinct SCCs depending on each SCC
}

// Condense collapses every SCC of g into one node. Edges inside an SCC are
// dropped and parallel edges are merged.
func Condense(g *Graph, comps *Components) *Condensation {
	c := &Condensation{
		Edges: make([][]SCCID, len(comps.SCCs)),
		Indeg: make([]int, len(comps.SCCs)),
	}
	for _, scc := range comps.SCCs {
		var out []SCCID
		for _, m := range scc.Members {
			for _, d := range g.Edges[m] {
				if t := comps.Of[d]; t != scc.ID {
					out = append(out, t)
				}
			}
		}
		slices.Sort(out)
		out = slices.Compact(out)
		c.Edges[scc.ID] = out
		for _, t := range out {
			c.Indeg[t]++
		}
	}
	return c
}

// kahnWaves runs Kahn's algorithm from the clusters nothing depends on.
// Each wave is ascending. ok is false if some SCC was never released.
func kahnWaves(c *Condensation) (waves [][]SCCID, ok bool) {
	indeg := slices.Clone(c.Indeg)
	var current []SCCID
	for i, d := range indeg {
		if d == 0 {
			current = append(current, SCCID(i)) // #nosec G115 -- bounded by len(SCCs), checked in StronglyConnected
		}
	}
	consumed := 0
	for len(current) > 0 {
		waves = append(waves, current)
		consumed += len(current)
		var next []SCCID
		for _, s := range current {
			for _, t := range c.Edges[s] {
				indeg[t]--
				if indeg[t] == 0 {
					next = append(next, t)
				}
			}
		}
		slices.Sort(next)
		current = next
	}
	return waves, consumed == len(indeg)
}

// Schedule turns the graph into a compilation plan: one batch per SCC,
// dependencies before dependents, the entry module's cluster last.
func Schedule(g *Graph) (*Plan, error) {
	comps, err := StronglyConnected(g)
	if err != nil {
		return nil, err
	}
	cond := Condense(g, comps)
	waves, ok := kahnWaves(cond)
	if !ok {
		return nil, fmt.Errorf("%w: condensation of %d clusters is not acyclic", ErrInternalInvariant, len(comps.SCCs))
	}

	plan := &Plan{Batches: make([][]ModuleID, 0, len(comps.SCCs))}
	// waves hold independent clusters, so reversing whole waves keeps
	// each wave in ascending order without breaking the dependency order
	for i := len(waves) - 1; i >= 0; i-- {
		for _, s := range waves[i] {
			plan.Batches = append(plan.Batches, slices.Clone(comps.SCCs[s].Members))
		}
	}
	return plan, nil
}
