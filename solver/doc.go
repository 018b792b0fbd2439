/*
Package solver implements a small, complete DPLL solver whose every
assignment carries a reason: the assumption, decision or propagating
clause that forced it. The reason links are what the explain package walks
to reconstruct why a problem is unsatisfiable, so the solver deliberately
keeps its search chronological: no clause learning, no watched literals,
no restarts, no nonchronological backjumping.

A problem is catalogued once into an immutable Store, each clause keeping
the caller's rule identifier and note:

	store, err := solver.NewStore(3, []solver.RawClause{
	    {Lits: []int{-1, 2}, RuleID: "a"},
	    {Lits: []int{-2, 3}, RuleID: "b"},
	    {Lits: []int{-3}, RuleID: "c"},
	})

Solving runs under an ordered list of assumptions, optionally biased
toward hint variables:

	res, err := solver.Solve(ctx, store.All(), []solver.Lit{1}, nil)

On Sat, res.Model binds every variable. On Unsat, res.Conflict names the
falsified clause and res.Trail still holds the assignment stack from the
moment of conflict, reasons included.

Subsets of the catalogue can be solved through views, which is how the
explain package probes clause subsets while shrinking an unsatisfiable
core:

	sub, err := solver.Solve(ctx, store.WithSubset(cids), assumptions, nil)

Propagation and branching orders are fixed (ascending clause id, ascending
variable id, positive polarity first, hint variables ahead of the rest),
so identical inputs always produce identical outcomes.
*/
package solver
