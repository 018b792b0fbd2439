// Package explain diagnoses why a CNF problem is unsatisfiable under a
// set of unit assumptions. It couples a reason-instrumented DPLL search
// (package solver) with an explanation builder and a deletion-based MUS
// shrinker, and returns either a satisfying model or a structured UNSAT
// report naming the conflict clause, the responsible assumptions, the
// participating rules and a subset-minimal unsatisfiable subset.
package explain

import (
	"context"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bhanusingh06/sat-explainer/solver"
)

// ErrCancelled is returned when the context is done before a verdict and
// core could be computed. It is distinct from an UNSAT outcome.
var ErrCancelled = errors.New("cancelled before a core could be computed")

// An Explainer answers satisfiability questions about one clause store.
// The store is immutable, so an Explainer may be reused across calls;
// every call owns its trails.
type Explainer struct {
	store *solver.Store
	log   logrus.FieldLogger
}

// An Option configures an Explainer.
type Option func(*Explainer) error

// WithLogger directs the explainer's progress output to l. Without it the
// explainer is silent.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Explainer) error {
		e.log = l
		return nil
	}
}

// New returns an Explainer over the given store.
func New(store *solver.Store, options ...Option) (*Explainer, error) {
	e := &Explainer{store: store}
	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}
	if e.log == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		e.log = silent
	}
	return e, nil
}

// run carries the mutable state of one Explain call.
type run struct {
	store *solver.Store
	log   logrus.FieldLogger
	stats Stats
}

// Explain solves the full catalogue under the given assumptions. On SAT it
// reports the model. On UNSAT it builds the primary explanation, derives a
// candidate clause set from the involved rules, confirms that set is still
// unsatisfiable (falling back to the full catalogue when it is not), and
// shrinks it to a subset-minimal unsatisfiable subset.
//
// Assumptions and hints are caller literals: signed and nonzero. Only the
// variables of hint literals are consulted; hints bias the branching order
// and seed the shrinker, and are echoed in the report as received.
func (e *Explainer) Explain(ctx context.Context, assumptions []int, hints []int) (*Report, error) {
	lits, err := assumptionLits(assumptions)
	if err != nil {
		return nil, err
	}
	hintVars, err := hintVarsOf(hints)
	if err != nil {
		return nil, err
	}
	r := &run{store: e.store, log: e.log}
	res, err := solver.Solve(ctx, e.store.All(), lits, hintVars)
	if err != nil {
		return nil, errors.Wrap(err, "internal solver failure")
	}
	r.stats.Solver.Add(res.Stats)
	switch res.Status {
	case solver.Cancelled:
		return nil, ErrCancelled
	case solver.Sat:
		r.log.WithField("vars", len(res.Model)).Info("satisfiable under assumptions")
		return &Report{Type: TypeSat, Model: res.Model, Stats: r.stats}, nil
	}

	expl := buildExplanation(e.store, res)
	report := &Report{
		Type:       TypeUnsatWithCore,
		Primary:    expl,
		MUSClauses: []ClauseInfo{},
		MUSRules:   []string{},
		HintsUsed:  echoHints(hints),
	}
	if res.Conflict.CID == solver.NoClause {
		// Two assumptions clash directly: no clause participates, so
		// there is no subset to minimize and the MUS is empty.
		r.log.Info("assumptions contradict each other directly")
		report.Stats = r.stats
		return report, nil
	}

	candidates := involvedCIDs(expl)
	status, err := r.probe(ctx, candidates, lits, hintVars)
	if err != nil {
		return nil, errors.Wrap(err, "internal solver failure")
	}
	switch status {
	case solver.Cancelled:
		return nil, ErrCancelled
	case solver.Unsat:
		r.log.WithField("clauses", len(candidates)).Debug("shrinking from explanation-derived candidate set")
	default:
		candidates = e.store.AllCIDs()
		r.log.Debug("explanation-derived candidate set is satisfiable, shrinking from full problem")
	}
	mus, hintFallback, err := r.shrink(ctx, candidates, lits, hintVars)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return nil, err
		}
		return nil, errors.Wrap(err, "internal solver failure")
	}
	for _, cid := range mus {
		report.MUSClauses = append(report.MUSClauses, clauseInfo(e.store.Get(cid)))
	}
	report.MUSRules = ruleIDs(report.MUSClauses)
	report.HintFallback = hintFallback
	report.Stats = r.stats
	r.log.WithFields(logrus.Fields{
		"mus_size": len(report.MUSClauses),
		"probes":   r.stats.Probes,
	}).Info("unsatisfiable under assumptions")
	return report, nil
}

// assumptionLits validates the caller's assumption literals.
func assumptionLits(assumptions []int) ([]solver.Lit, error) {
	lits := make([]solver.Lit, len(assumptions))
	for i, a := range assumptions {
		if a == 0 {
			return nil, errors.Errorf("assumption at index %d is 0; literals must be nonzero", i)
		}
		lits[i] = solver.Lit(a)
	}
	return lits, nil
}

// hintVarsOf extracts the variables of the hint literals, signs ignored,
// deduplicated in first-seen order.
func hintVarsOf(hints []int) ([]solver.Var, error) {
	vars := make([]solver.Var, 0, len(hints))
	seen := make(map[solver.Var]bool, len(hints))
	for i, h := range hints {
		if h == 0 {
			return nil, errors.Errorf("hint at index %d is 0; literals must be nonzero", i)
		}
		v := solver.Lit(h).Var()
		if !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
	}
	return vars, nil
}

func echoHints(hints []int) []int {
	echoed := make([]int, len(hints))
	copy(echoed, hints)
	return echoed
}

// involvedCIDs collects the clause ids of an explanation (the conflict
// clause sits at position 0 of InvolvedRules), sorted ascending.
func involvedCIDs(expl *Explanation) []solver.CID {
	cids := make([]solver.CID, 0, len(expl.InvolvedRules))
	for _, info := range expl.InvolvedRules {
		cids = append(cids, solver.CID(info.CID))
	}
	sort.Slice(cids, func(i, j int) bool { return cids[i] < cids[j] })
	return cids
}

// ruleIDs lists the non-empty rule identifiers of the given clauses,
// deduplicated in first-seen order.
func ruleIDs(clauses []ClauseInfo) []string {
	ids := make([]string, 0, len(clauses))
	seen := make(map[string]bool, len(clauses))
	for _, c := range clauses {
		if c.RuleID == "" || seen[c.RuleID] {
			continue
		}
		seen[c.RuleID] = true
		ids = append(ids, c.RuleID)
	}
	return ids
}
