package explain

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/bhanusingh06/sat-explainer/solver"
)

// ParseCNF parses a DIMACS CNF stream augmented with per-clause metadata
// and catalogues it into a store.
//
// The syntax is standard DIMACS with one extra convention: a comment line
// of the form
//
//	c rule <rule-id> <free-form note...>
//
// attaches the rule identifier and note to the next clause line. Clause
// lines without a preceding rule comment get empty metadata. The "p cnf"
// header is optional; the store always covers at least the largest
// variable mentioned. A lone "0" line is the empty clause.
func ParseCNF(r io.Reader) (*solver.Store, error) {
	sc := bufio.NewScanner(r)
	var raw []solver.RawClause
	var ruleID, note string
	nbVars := 0
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "c":
			if len(fields) >= 3 && fields[1] == "rule" {
				ruleID = fields[2]
				note = strings.Join(fields[3:], " ")
			}
		case "p":
			v, err := parseHeader(fields)
			if err != nil {
				return nil, errors.Wrapf(err, "could not parse header %q at line %d", line, lineno)
			}
			nbVars = v
		default:
			lits, err := parseLits(fields)
			if err != nil {
				return nil, errors.Wrapf(err, "could not parse clause %q at line %d", line, lineno)
			}
			raw = append(raw, solver.RawClause{Lits: lits, RuleID: ruleID, Note: note})
			ruleID, note = "", ""
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "could not parse problem")
	}
	store, err := solver.NewStore(nbVars, raw)
	if err != nil {
		return nil, errors.Wrap(err, "could not load problem")
	}
	return store, nil
}

func parseHeader(fields []string) (nbVars int, err error) {
	if len(fields) != 4 || fields[1] != "cnf" {
		return 0, errors.Errorf("expected \"p cnf <vars> <clauses>\", got %d fields", len(fields))
	}
	nbVars, err = strconv.Atoi(fields[2])
	if err != nil {
		return 0, errors.Wrapf(err, "invalid number of vars %q", fields[2])
	}
	if nbVars < 0 {
		return 0, errors.Errorf("negative number of vars %d", nbVars)
	}
	if _, err := strconv.Atoi(fields[3]); err != nil {
		return 0, errors.Wrapf(err, "invalid number of clauses %q", fields[3])
	}
	return nbVars, nil
}

// parseLits parses the literals of a clause line. The terminating 0 is
// optional and zeros are never kept, so a lone "0" yields the empty
// clause.
func parseLits(fields []string) ([]int, error) {
	lits := make([]int, 0, len(fields))
	for _, raw := range fields {
		lit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid literal %q", raw)
		}
		if lit != 0 {
			lits = append(lits, lit)
		}
	}
	return lits, nil
}
