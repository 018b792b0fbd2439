package explain

import (
	"encoding/json"

	"github.com/bhanusingh06/sat-explainer/solver"
)

// Report types. The values below are the structured results handed to the
// serializer; field order in the JSON output is fixed by the marshaling
// structs so identical runs produce byte-identical output.

const (
	// TypeSat tags a report carrying a satisfying model.
	TypeSat = "sat"
	// TypeUnsatWithCore tags a report carrying an UNSAT explanation and
	// its minimal unsatisfiable subset.
	TypeUnsatWithCore = "unsat_with_core"
)

// A ClauseInfo describes one clause of the input: its internal id, the
// caller's metadata and its literals.
type ClauseInfo struct {
	CID      int    `json:"cid"`
	RuleID   string `json:"rule_id"`
	Note     string `json:"note"`
	Literals []int  `json:"literals"`
}

func clauseInfo(c solver.Clause) ClauseInfo {
	return ClauseInfo{
		CID:      int(c.CID),
		RuleID:   c.RuleID,
		Note:     c.Note,
		Literals: litInts(c.Lits),
	}
}

func litInts(lits []solver.Lit) []int {
	ints := make([]int, len(lits))
	for i, l := range lits {
		ints[i] = int(l)
	}
	return ints
}

// An Explanation traces one conflict back to the assumptions that caused
// it. InvolvedRules lists the conflict clause first, then every clause
// whose propagation participated, in first-visit order. AssumptionCauses
// lists the responsible assumption literals in first-seen order.
type Explanation struct {
	ConflictClause    ClauseInfo   `json:"conflict_clause"`
	FalsifiedLiterals []int        `json:"falsified_literals"`
	AssumptionCauses  []int        `json:"assumption_causes"`
	InvolvedRules     []ClauseInfo `json:"involved_rules"`
}

// A Report is the outcome of one Explain call: either a satisfying model,
// or a primary explanation plus a subset-minimal unsatisfiable subset of
// the clauses. Stats is informational and is not serialized.
type Report struct {
	Type         string
	Model        solver.Model // set iff Type is TypeSat
	Primary      *Explanation // the remaining fields are set iff Type is TypeUnsatWithCore
	MUSClauses   []ClauseInfo
	MUSRules     []string
	HintsUsed    []int
	HintFallback bool
	Stats        Stats
}

// Stats aggregates the work of a whole Explain call: the initial solve
// plus every probe run by the driver and the shrinker.
type Stats struct {
	Solver solver.Stats
	Probes int // how many subset re-solves the driver and shrinker ran
}

// MarshalJSON emits the report in the fixed external shape: a "sat" object
// with a model, or an "unsat_with_core" object with explanation, MUS and
// hint echo.
func (r *Report) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case TypeSat:
		return json.Marshal(struct {
			Type  string       `json:"type"`
			Model solver.Model `json:"model"`
		}{Type: r.Type, Model: r.Model})
	default:
		return json.Marshal(struct {
			Type         string       `json:"type"`
			Primary      *Explanation `json:"primary_explanation"`
			MUSSize      int          `json:"mus_size"`
			MUSClauses   []ClauseInfo `json:"mus_clauses"`
			MUSRules     []string     `json:"mus_rules"`
			HintsUsed    []int        `json:"hints_used"`
			HintFallback bool         `json:"hint_fallback"`
		}{
			Type:         r.Type,
			Primary:      r.Primary,
			MUSSize:      len(r.MUSClauses),
			MUSClauses:   r.MUSClauses,
			MUSRules:     r.MUSRules,
			HintsUsed:    r.HintsUsed,
			HintFallback: r.HintFallback,
		})
	}
}
