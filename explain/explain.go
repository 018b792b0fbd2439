package explain

import (
	"github.com/bhanusingh06/sat-explainer/solver"
)

// buildExplanation walks reason links from the conflict back to assumption
// roots. It maintains a worklist of literals to explain, seeded with the
// falsified literals of the conflict clause, deduplicated by variable.
// A literal assigned by propagation contributes its clause to
// InvolvedRules and its sibling literals to the worklist; a literal
// assigned by an assumption contributes that assumption to
// AssumptionCauses. A literal assigned by a decision is recorded as a
// pseudo-assumption so the report stays total when the closing conflict
// sits below decision level zero. Termination is guaranteed because every
// propagated entry's supporting literals occur strictly earlier on the
// trail.
func buildExplanation(store *solver.Store, res solver.Result) *Explanation {
	conflict := res.Conflict
	expl := &Explanation{
		FalsifiedLiterals: litInts(conflict.Falsified),
		AssumptionCauses:  []int{},
		InvolvedRules:     []ClauseInfo{},
	}
	if conflict.CID == solver.NoClause {
		// Synthetic conflict between two assumptions: both are the cause,
		// in assumption order, and no stored clause is involved.
		expl.ConflictClause = ClauseInfo{CID: int(solver.NoClause), Literals: litInts(conflict.Falsified)}
		expl.InvolvedRules = append(expl.InvolvedRules, expl.ConflictClause)
		expl.AssumptionCauses = litInts(conflict.Falsified)
		return expl
	}
	expl.ConflictClause = clauseInfo(store.Get(conflict.CID))
	expl.InvolvedRules = append(expl.InvolvedRules, expl.ConflictClause)

	queue := make([]solver.Lit, len(conflict.Falsified))
	copy(queue, conflict.Falsified)
	seenVar := make(map[solver.Var]bool)
	seenCID := map[solver.CID]bool{conflict.CID: true}
	seenCause := make(map[int]bool)
	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]
		v := l.Var()
		if seenVar[v] {
			continue
		}
		seenVar[v] = true
		entry, ok := res.Trail.Entry(v)
		if !ok {
			continue
		}
		switch entry.Reason.Kind {
		case solver.ReasonAssumption:
			addCause(expl, seenCause, int(entry.Reason.Assumed))
		case solver.ReasonDecision:
			addCause(expl, seenCause, int(entry.Lit()))
		case solver.ReasonPropagated:
			cid := entry.Reason.Clause
			clause := store.Get(cid)
			if !seenCID[cid] {
				seenCID[cid] = true
				expl.InvolvedRules = append(expl.InvolvedRules, clauseInfo(clause))
			}
			for _, sibling := range clause.Lits {
				if sibling.Var() != v {
					queue = append(queue, sibling)
				}
			}
		}
	}
	return expl
}

func addCause(expl *Explanation, seen map[int]bool, lit int) {
	if seen[lit] {
		return
	}
	seen[lit] = true
	expl.AssumptionCauses = append(expl.AssumptionCauses, lit)
}
