package solver

import (
	"fmt"
	"sort"
)

// A RawClause is a clause as handed over by the loader: caller literals
// plus the metadata identifying the rule it came from.
type RawClause struct {
	Lits   []int
	RuleID string
	Note   string
}

// A Clause is a disjunction of literals together with its metadata. The
// empty clause is legal and unsatisfiable.
type Clause struct {
	CID    CID
	Lits   []Lit
	RuleID string
	Note   string
}

// Mentions is true iff the clause contains v or its negation.
func (c Clause) Mentions(v Var) bool {
	for _, l := range c.Lits {
		if l.Var() == v {
			return true
		}
	}
	return false
}

// A MalformedClauseError reports a clause rejected at load time.
type MalformedClauseError struct {
	Index  int // position of the clause in the loader's input
	Detail string
}

func (e MalformedClauseError) Error() string {
	return fmt.Sprintf("malformed clause at index %d: %s", e.Index, e.Detail)
}

// A Store is the immutable catalogue of clauses for one solve, indexed by
// CID. It is built once and never mutated afterwards, so it can be shared
// freely between probes.
type Store struct {
	clauses []Clause
	nbVars  int
}

// NewStore validates and catalogues the given clauses. A clause containing
// a zero or duplicate literal is rejected with a MalformedClauseError.
// A clause containing both a literal and its negation is trivially true
// and is elided; remaining clauses receive dense CIDs in input order.
// nbVars may be zero: the store always covers at least the largest
// variable mentioned in the input, elided clauses included.
func NewStore(nbVars int, raw []RawClause) (*Store, error) {
	s := &Store{nbVars: nbVars}
	for i, rc := range raw {
		lits := make([]Lit, 0, len(rc.Lits))
		seen := make(map[Lit]bool, len(rc.Lits))
		tautology := false
		for _, il := range rc.Lits {
			if il == 0 {
				return nil, MalformedClauseError{Index: i, Detail: "literal 0"}
			}
			l := Lit(il)
			if seen[l] {
				return nil, MalformedClauseError{Index: i, Detail: fmt.Sprintf("duplicate literal %d", il)}
			}
			if seen[l.Neg()] {
				tautology = true
			}
			seen[l] = true
			lits = append(lits, l)
			if v := int(l.Var()); v > s.nbVars {
				s.nbVars = v
			}
		}
		if tautology {
			continue
		}
		s.clauses = append(s.clauses, Clause{
			CID:    CID(len(s.clauses)),
			Lits:   lits,
			RuleID: rc.RuleID,
			Note:   rc.Note,
		})
	}
	return s, nil
}

// NbVars returns the number of variables the store covers.
func (s *Store) NbVars() int {
	return s.nbVars
}

// NbClauses returns the number of catalogued clauses.
func (s *Store) NbClauses() int {
	return len(s.clauses)
}

// Get returns the clause identified by cid. It panics on an id outside the
// catalogue, which indicates a broken reason reference.
func (s *Store) Get(cid CID) Clause {
	if cid < 0 || int(cid) >= len(s.clauses) {
		panic(fmt.Sprintf("no clause with id %d", cid))
	}
	return s.clauses[cid]
}

// AllCIDs returns the ids of all catalogued clauses, in ascending order.
func (s *Store) AllCIDs() []CID {
	cids := make([]CID, len(s.clauses))
	for i := range s.clauses {
		cids[i] = CID(i)
	}
	return cids
}

// All returns a view over the whole catalogue.
func (s *Store) All() View {
	return View{store: s, cids: s.AllCIDs()}
}

// WithSubset returns a read-only view restricted to the given clause ids.
// Ids are deduplicated and sorted; ids outside the catalogue are dropped.
func (s *Store) WithSubset(cids []CID) View {
	member := make(map[CID]bool, len(cids))
	kept := make([]CID, 0, len(cids))
	for _, cid := range cids {
		if cid < 0 || int(cid) >= len(s.clauses) || member[cid] {
			continue
		}
		member[cid] = true
		kept = append(kept, cid)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })
	return View{store: s, cids: kept}
}

// A View is a read-only window on a subset of a store's clauses. The MUS
// shrinker probes the solver through views so the underlying catalogue is
// never rebuilt.
type View struct {
	store *Store
	cids  []CID
}

// NbVars returns the number of variables of the underlying store. All
// views on a store share its variable space, so probe results on subsets
// stay comparable.
func (v View) NbVars() int {
	return v.store.NbVars()
}

// CIDs returns the clause ids of the view, in ascending order.
func (v View) CIDs() []CID {
	return v.cids
}

// Get returns the clause identified by cid.
func (v View) Get(cid CID) Clause {
	return v.store.Get(cid)
}
