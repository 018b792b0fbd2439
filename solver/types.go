package solver

// Basic types and constants shared by the whole solver.

// A Var is a propositional variable, identified by a positive integer.
// Variable identifiers have no implied upper bound.
type Var int

// A Lit is a signed, nonzero literal in the DIMACS convention: a positive
// value asserts the variable, a negative value asserts its negation.
type Lit int

// Var returns the variable of l.
func (l Lit) Var() Var {
	if l < 0 {
		return Var(-l)
	}
	return Var(l)
}

// Neg returns the negation of l.
func (l Lit) Neg() Lit {
	return -l
}

// IsPositive is true iff l asserts its variable.
func (l Lit) IsPositive() bool {
	return l > 0
}

// A CID is the dense internal identifier of a clause, assigned at load
// time and stable for the lifetime of a solve.
type CID int

// NoClause is the CID carried by the synthetic conflict produced when two
// assumptions contradict each other directly: no stored clause is involved.
const NoClause CID = -1

// Status is the status of a problem, a clause or a literal at a given moment.
type Status byte

const (
	// Indet means the problem is not proven sat or unsat yet.
	Indet = Status(iota)
	// Sat means the problem, clause or literal is satisfied.
	Sat
	// Unsat means the problem, clause or literal is falsified.
	Unsat
	// Unit means the clause contains exactly one unassigned literal and
	// all its other literals are false.
	Unit
	// Many means the clause contains at least two unassigned literals.
	Many
	// Cancelled means solving was aborted before an answer was found.
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Indet:
		return "INDETERMINATE"
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	case Unit:
		return "UNIT"
	case Many:
		return "MANY"
	case Cancelled:
		return "CANCELLED"
	default:
		panic("invalid status")
	}
}

// ReasonKind discriminates the possible causes for a variable assignment.
type ReasonKind byte

const (
	// ReasonAssumption marks a variable assigned by a caller assumption.
	ReasonAssumption = ReasonKind(iota)
	// ReasonDecision marks a variable assigned by a search decision.
	ReasonDecision
	// ReasonPropagated marks a variable assigned by unit propagation.
	ReasonPropagated
)

// A Reason records why a variable holds its current value. Clauses are
// referenced by CID, never by pointer, so the reason graph cannot form
// ownership cycles.
type Reason struct {
	Kind    ReasonKind
	Assumed Lit // the assumption literal, when Kind is ReasonAssumption
	Clause  CID // the propagating clause, when Kind is ReasonPropagated
}

// Assumed returns the reason for a variable assigned by the assumption l.
func Assumed(l Lit) Reason {
	return Reason{Kind: ReasonAssumption, Assumed: l}
}

// Decided returns the reason for a variable assigned by a search decision.
func Decided() Reason {
	return Reason{Kind: ReasonDecision}
}

// Propagated returns the reason for a variable assigned by unit
// propagation on the clause cid.
func Propagated(cid CID) Reason {
	return Reason{Kind: ReasonPropagated, Clause: cid}
}

// A Model is a complete binding produced by a successful solve. Keys are
// variable identifiers.
type Model map[int]bool

// Stats counts the work performed during one or several solves. They are
// provided for information purpose only.
type Stats struct {
	Decisions    int // how many decision assignments were made
	Propagations int // how many assignments unit propagation forced
	Conflicts    int // how many conflicts were met
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Decisions += other.Decisions
	s.Propagations += other.Propagations
	s.Conflicts += other.Conflicts
}
