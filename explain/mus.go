package explain

import (
	"context"

	"github.com/bhanusingh06/sat-explainer/solver"
)

// shrink reduces cands, a clause set known to be UNSAT under the
// assumptions, to a subset-minimal unsatisfiable subset.
//
// When hint variables are given, the shrinker first tries the subset of
// cands mentioning any hint variable; if that subset is already UNSAT it
// becomes the starting point, otherwise the shrinker falls back to cands
// and reports the fallback.
//
// The deletion loop then probes each remaining clause in ascending CID
// order: if the set stays UNSAT without it, it is removed for good,
// otherwise it is essential and stays. One full pass leaves every
// remaining clause essential, so the result is subset-minimal. With the
// solver's fixed scan and branching orders the result is a deterministic
// function of (cands, assumptions, hints).
func (r *run) shrink(ctx context.Context, cands []solver.CID, assumptions []solver.Lit, hints []solver.Var) (mus []solver.CID, hintFallback bool, err error) {
	working := cands
	if len(hints) > 0 {
		focused := r.hintFocused(cands, hints)
		switch {
		case len(focused) == 0:
			hintFallback = true
		default:
			status, err := r.probe(ctx, focused, assumptions, hints)
			if err != nil {
				return nil, false, err
			}
			switch status {
			case solver.Unsat:
				working = focused
				r.log.WithField("clauses", len(focused)).Debug("hint-focused subset is unsatisfiable, shrinking from it")
			case solver.Cancelled:
				return nil, false, ErrCancelled
			default:
				hintFallback = true
				r.log.Debug("hint-focused subset is satisfiable, falling back")
			}
		}
	}
	for i := 0; i < len(working); {
		candidate := working[i]
		rest := make([]solver.CID, 0, len(working)-1)
		rest = append(rest, working[:i]...)
		rest = append(rest, working[i+1:]...)
		status, err := r.probe(ctx, rest, assumptions, hints)
		if err != nil {
			return nil, false, err
		}
		switch status {
		case solver.Unsat:
			r.log.WithField("cid", candidate).Debug("clause removed from core")
			working = rest
		case solver.Cancelled:
			return nil, false, ErrCancelled
		default:
			r.log.WithField("cid", candidate).Debug("clause kept in core")
			i++
		}
	}
	return working, hintFallback, nil
}

// hintFocused returns the clauses of cands mentioning any hint variable,
// preserving ascending CID order.
func (r *run) hintFocused(cands []solver.CID, hints []solver.Var) []solver.CID {
	focused := make([]solver.CID, 0, len(cands))
	for _, cid := range cands {
		clause := r.store.Get(cid)
		for _, v := range hints {
			if clause.Mentions(v) {
				focused = append(focused, cid)
				break
			}
		}
	}
	return focused
}

// probe re-solves the given clause subset from scratch and accumulates the
// run's statistics. Each probe owns a fresh trail.
func (r *run) probe(ctx context.Context, cids []solver.CID, assumptions []solver.Lit, hints []solver.Var) (solver.Status, error) {
	res, err := solver.Solve(ctx, r.store.WithSubset(cids), assumptions, hints)
	if err != nil {
		return solver.Indet, err
	}
	r.stats.Probes++
	r.stats.Solver.Add(res.Stats)
	return res.Status, nil
}
