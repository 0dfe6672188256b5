package dag

import (
	"fmt"
	"strings"

	"jmake/internal/diag"
)

// Plan is the ordered list of compilation batches. Each batch is one SCC and
// must be compiled in a single compiler invocation; a batch only depends on
// itself and earlier batches.
type Plan struct {
	Batches [][]ModuleID
}

// Len reports the number of batches.
func (p *Plan) Len() int { return len(p.Batches) }

// ModuleCount reports how many modules the plan compiles.
func (p *Plan) ModuleCount() int {
	n := 0
	for _, b := range p.Batches {
		n += len(b)
	}
	return n
}

// BatchOf maps every planned module to its batch number.
func (p *Plan) BatchOf() map[ModuleID]int {
	out := make(map[ModuleID]int, p.ModuleCount())
	for i, b := range p.Batches {
		for _, m := range b {
			out[m] = i
		}
	}
	return out
}

// Verify re-checks the plan against g: batches are non-empty, every visited
// module appears in exactly one batch, nothing else appears, and for every
// edge m -> d the batch of d is not after the batch of m.
func (p *Plan) Verify(g *Graph) error {
	batchOf := make(map[ModuleID]int, len(g.Order))
	for i, b := range p.Batches {
		if len(b) == 0 {
			return fmt.Errorf("%w: batch %d is empty", ErrInternalInvariant, i)
		}
		for _, m := range b {
			if int(m) >= len(g.Visited) || !g.Visited[m] {
				return fmt.Errorf("%w: batch %d contains unvisited module %d", ErrInternalInvariant, i, m)
			}
			if prev, dup := batchOf[m]; dup {
				return fmt.Errorf("%w: module %d in batches %d and %d", ErrInternalInvariant, m, prev, i)
			}
			batchOf[m] = i
		}
	}
	for _, m := range g.Order {
		bm, ok := batchOf[m]
		if !ok {
			return fmt.Errorf("%w: module %d is not scheduled", ErrInternalInvariant, m)
		}
		for _, d := range g.Edges[m] {
			if bd := batchOf[d]; bd > bm {
				return fmt.Errorf("%w: module %d (batch %d) depends on %d (batch %d)", ErrInternalInvariant, m, bm, d, bd)
			}
		}
	}
	return nil
}

// ReportCycles emits an info diagnostic for every batch that holds an import
// cycle. Cycles are legal; the note explains why files are compiled together.
func ReportCycles(idx *ModuleIndex, p *Plan, reporter diag.Reporter) {
	if reporter == nil {
		return
	}
	for i, b := range p.Batches {
		if len(b) < 2 {
			continue
		}
		names := make([]string, 0, len(b))
		for _, m := range b {
			names = append(names, idx.NameOf(m))
		}
		msg := fmt.Sprintf("batch %d: %d modules depend on each other and are compiled together: %s",
			i+1, len(b), strings.Join(names, ", "))
		diag.ReportInfo(reporter, diag.ProjImportCycle, idx.PathOf(b[0]), msg).Emit()
	}
}

// Names renders the plan with module names, mostly for tests and logging.
func (p *Plan) Names(idx *ModuleIndex) [][]string {
	out := make([][]string, len(p.Batches))
	for i, b := range p.Batches {
		out[i] = make([]string, len(b))
		for j, m := range b {
			out[i][j] = idx.NameOf(m)
		}
	}
	return out
}
