package solver

import (
	"context"

	"github.com/pkg/errors"
)

// A Result is the outcome of a search. Model is set iff Status is Sat.
// Conflict and Trail are set iff Status is Unsat: Trail is the assignment
// stack exactly as it stood when the closing conflict was met, so reason
// links can be walked afterwards.
type Result struct {
	Status   Status
	Model    Model
	Conflict *Conflict
	Trail    *Trail
	Stats    Stats
}

// Solve runs a complete DPLL search over the clauses of view under the
// given assumptions. Assumptions are seeded in listed order; two directly
// contradicting assumptions yield an Unsat result carrying a synthetic
// conflict (CID NoClause) whose falsified literals are the two opponents.
//
// Variables listed in hintVars are branched on first, in the order given;
// remaining variables follow in ascending identifier order, positive
// polarity first. The search learns nothing and never backjumps, so the
// reason graph stays linear in the trail.
//
// ctx is checked between propagation sweeps; when it is done, a result
// with Status Cancelled is returned. A non-nil error indicates an internal
// invariant breach, never a user-facing condition.
func Solve(ctx context.Context, view View, assumptions []Lit, hintVars []Var) (Result, error) {
	trail := NewTrail()
	s := &search{ctx: ctx, view: view, trail: trail, hints: hintVars}
	for _, a := range assumptions {
		if a == 0 {
			return Result{}, errors.New("assumption literal 0")
		}
		value, assigned := trail.Value(a.Var())
		if assigned {
			if value == a.IsPositive() {
				continue
			}
			prior, _ := trail.Entry(a.Var())
			conflict := &Conflict{CID: NoClause, Falsified: []Lit{prior.Reason.Assumed, a}}
			s.stats.Conflicts++
			return Result{Status: Unsat, Conflict: conflict, Trail: trail, Stats: s.stats}, nil
		}
		if err := trail.Assign(a.Var(), a.IsPositive(), Assumed(a)); err != nil {
			return Result{}, errors.Wrap(err, "seeding assumptions")
		}
	}
	status, conflict, err := s.dpll()
	if err != nil {
		return Result{}, err
	}
	res := Result{Status: status, Stats: s.stats}
	switch status {
	case Sat:
		res.Model = s.model()
	case Unsat:
		res.Conflict = conflict
		res.Trail = trail
	}
	return res, nil
}

type search struct {
	ctx   context.Context
	view  View
	trail *Trail
	hints []Var
	stats Stats
}

// dpll propagates, then branches on the next unassigned variable, positive
// polarity first. On Unsat the trail is left exactly as it stood at the
// conflict that closed the branch.
func (s *search) dpll() (Status, *Conflict, error) {
	conflict, cancelled, err := propagate(s.ctx, s.view, s.trail, &s.stats)
	if err != nil {
		return Indet, nil, err
	}
	if cancelled {
		return Cancelled, nil, nil
	}
	if conflict != nil {
		return Unsat, conflict, nil
	}
	v := s.nextVar()
	if v == 0 {
		return Sat, nil, nil
	}
	tok := s.trail.Mark()
	s.stats.Decisions++
	if err := s.trail.Assign(v, true, Decided()); err != nil {
		return Indet, nil, err
	}
	status, conflict, err := s.dpll()
	if status != Unsat || err != nil {
		return status, conflict, err
	}
	s.trail.Rewind(tok)
	s.stats.Decisions++
	if err := s.trail.Assign(v, false, Decided()); err != nil {
		return Indet, nil, err
	}
	return s.dpll()
}

// nextVar picks the next decision variable: unassigned hint variables
// first, in the order supplied, then remaining variables in ascending
// identifier order. It returns 0 when every variable of the view is
// assigned. Hint variables outside the view's variable space are skipped;
// they constrain nothing.
func (s *search) nextVar() Var {
	nbVars := Var(s.view.NbVars())
	for _, v := range s.hints {
		if v < 1 || v > nbVars {
			continue
		}
		if _, assigned := s.trail.Value(v); !assigned {
			return v
		}
	}
	for v := Var(1); v <= nbVars; v++ {
		if _, assigned := s.trail.Value(v); !assigned {
			return v
		}
	}
	return 0
}

// model reads the complete assignment off the trail. Assumption variables
// beyond the view's variable space are included: a model must satisfy
// every assumption.
func (s *search) model() Model {
	m := make(Model, s.trail.Depth())
	for _, e := range s.trail.Entries() {
		m[int(e.Var)] = e.Value
	}
	return m
}
