package explain

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bhanusingh06/sat-explainer/solver"
)

// The shrinker's two defining properties, checked against a brute-force
// reference on small pseudo-random instances: the reported subset is
// unsatisfiable under the assumptions, and removing any single clause
// from it makes the rest satisfiable.
func TestMUSMinimalityAndSufficiency(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	unsatSeen := 0
	for i := 0; i < 300; i++ {
		raw, assumptions := randomProblem(rng)
		store, err := solver.NewStore(0, raw)
		require.NoError(t, err)
		e, err := New(store)
		require.NoError(t, err)
		report, err := e.Explain(context.Background(), assumptions, nil)
		require.NoError(t, err)
		if report.Type != TypeUnsatWithCore {
			continue
		}
		if report.Primary.ConflictClause.CID == int(solver.NoClause) {
			continue
		}
		unsatSeen++

		mus := make([][]int, len(report.MUSClauses))
		for j, c := range report.MUSClauses {
			mus[j] = c.Literals
		}
		require.False(t, bruteForceSat(mus, assumptions),
			"instance %d: MUS %v is not UNSAT under %v", i, mus, assumptions)
		for j := range mus {
			reduced := make([][]int, 0, len(mus)-1)
			reduced = append(reduced, mus[:j]...)
			reduced = append(reduced, mus[j+1:]...)
			require.True(t, bruteForceSat(reduced, assumptions),
				"instance %d: MUS %v is not minimal, clause %v is removable", i, mus, mus[j])
		}
	}
	require.Greater(t, unsatSeen, 20, "the generator should produce a healthy share of UNSAT instances")
}

func randomProblem(rng *rand.Rand) ([]solver.RawClause, []int) {
	nbVars := 3 + rng.Intn(3)
	nbClauses := 2 + rng.Intn(7)
	raw := make([]solver.RawClause, nbClauses)
	for i := range raw {
		size := 1 + rng.Intn(2)
		vars := rng.Perm(nbVars)[:size]
		lits := make([]int, size)
		for j, v := range vars {
			lits[j] = v + 1
			if rng.Intn(2) == 0 {
				lits[j] = -lits[j]
			}
		}
		raw[i] = solver.RawClause{Lits: lits}
	}
	var assumptions []int
	for _, v := range rng.Perm(nbVars)[:1+rng.Intn(2)] {
		a := v + 1
		if rng.Intn(2) == 0 {
			a = -a
		}
		assumptions = append(assumptions, a)
	}
	return raw, assumptions
}

// bruteForceSat enumerates every assignment over the mentioned variables.
func bruteForceSat(clauses [][]int, assumptions []int) bool {
	maxVar := 0
	for _, c := range clauses {
		for _, l := range c {
			if v := abs(l); v > maxVar {
				maxVar = v
			}
		}
	}
	for _, a := range assumptions {
		if v := abs(a); v > maxVar {
			maxVar = v
		}
	}
	for mask := 0; mask < 1<<maxVar; mask++ {
		value := func(l int) bool {
			bit := mask&(1<<(abs(l)-1)) != 0
			if l > 0 {
				return bit
			}
			return !bit
		}
		ok := true
		for _, a := range assumptions {
			if !value(a) {
				ok = false
				break
			}
		}
		for _, c := range clauses {
			if !ok {
				break
			}
			sat := false
			for _, l := range c {
				if value(l) {
					sat = true
					break
				}
			}
			ok = sat
		}
		if ok {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
