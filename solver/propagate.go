package solver

import "context"

// A Conflict identifies a clause entirely falsified under the current
// trail, together with its falsified literals. The empty clause conflicts
// with an empty literal list. A conflict with CID NoClause is synthetic:
// it records two directly contradicting assumptions.
type Conflict struct {
	CID       CID
	Falsified []Lit
}

// clauseStatus returns the status of c under the trail: Sat if some
// literal is true, Unsat if all are false, Unit (with the unassigned
// literal) if exactly one is unassigned and the rest false, Many
// otherwise.
func clauseStatus(c Clause, trail *Trail) (Status, Lit) {
	var unit Lit
	unassigned := 0
	for _, l := range c.Lits {
		switch trail.litStatus(l) {
		case Sat:
			return Sat, 0
		case Indet:
			unassigned++
			if unassigned > 1 {
				return Many, 0
			}
			unit = l
		}
	}
	if unassigned == 0 {
		return Unsat, 0
	}
	return Unit, unit
}

// Propagate runs unit propagation to fixpoint over the clauses of view,
// extending the trail with Propagated reasons. Clauses are scanned in
// ascending CID order and literals in their stored order, so when several
// clauses could fire in the same sweep the lowest CID wins; this keeps the
// chosen conflict clause reproducible across runs and across probes.
//
// ctx is checked between sweeps; when it is done, propagation stops and
// cancelled is true. A non-nil Conflict reports a clause entirely
// falsified, and a non-nil error only an internal invariant breach.
func Propagate(ctx context.Context, view View, trail *Trail) (conflict *Conflict, cancelled bool, err error) {
	return propagate(ctx, view, trail, nil)
}

func propagate(ctx context.Context, view View, trail *Trail, stats *Stats) (*Conflict, bool, error) {
	cids := view.CIDs()
	done := make([]bool, len(cids))
	for modified := true; modified; {
		select {
		case <-ctx.Done():
			return nil, true, nil
		default:
		}
		modified = false
		for i, cid := range cids {
			if done[i] {
				continue
			}
			c := view.Get(cid)
			st, unit := clauseStatus(c, trail)
			switch st {
			case Sat:
				done[i] = true
			case Unsat:
				falsified := make([]Lit, len(c.Lits))
				copy(falsified, c.Lits)
				if stats != nil {
					stats.Conflicts++
				}
				return &Conflict{CID: cid, Falsified: falsified}, false, nil
			case Unit:
				if err := trail.Assign(unit.Var(), unit.IsPositive(), Propagated(cid)); err != nil {
					return nil, false, err
				}
				if stats != nil {
					stats.Propagations++
				}
				done[i] = true
				modified = true
			}
		}
	}
	return nil, false, nil
}
