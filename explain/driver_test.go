package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhanusingh06/sat-explainer/solver"
)

func clause(ruleID string, lits ...int) solver.RawClause {
	return solver.RawClause{Lits: lits, RuleID: ruleID}
}

func newTestExplainer(t *testing.T, raw ...solver.RawClause) *Explainer {
	t.Helper()
	store, err := solver.NewStore(0, raw)
	require.NoError(t, err)
	e, err := New(store)
	require.NoError(t, err)
	return e
}

func musCIDs(report *Report) []int {
	cids := make([]int, len(report.MUSClauses))
	for i, c := range report.MUSClauses {
		cids[i] = c.CID
	}
	return cids
}

func TestExplainAssumptionClash(t *testing.T) {
	e := newTestExplainer(t,
		clause("r1", 1, 2),
		clause("r2", -1, 2),
	)
	report, err := e.Explain(context.Background(), []int{1, -1}, nil)
	require.NoError(t, err)
	require.Equal(t, TypeUnsatWithCore, report.Type)

	want := &Explanation{
		ConflictClause:    ClauseInfo{CID: -1, Literals: []int{1, -1}},
		FalsifiedLiterals: []int{1, -1},
		AssumptionCauses:  []int{1, -1},
		InvolvedRules:     []ClauseInfo{{CID: -1, Literals: []int{1, -1}}},
	}
	if diff := cmp.Diff(want, report.Primary); diff != "" {
		t.Errorf("unexpected explanation (-want +got):\n%s", diff)
	}
	assert.Empty(t, report.MUSClauses, "no clause participates in a direct assumption clash")
	assert.Empty(t, report.MUSRules)
	assert.False(t, report.HintFallback)
}

func TestExplainUnitPropagationChain(t *testing.T) {
	e := newTestExplainer(t,
		clause("a", -1, 2),
		clause("b", -2, 3),
		clause("c", -3),
	)
	report, err := e.Explain(context.Background(), []int{1}, nil)
	require.NoError(t, err)
	require.Equal(t, TypeUnsatWithCore, report.Type)

	expl := report.Primary
	assert.Equal(t, 2, expl.ConflictClause.CID)
	assert.Equal(t, "c", expl.ConflictClause.RuleID)
	assert.Equal(t, []int{-3}, expl.FalsifiedLiterals)
	assert.Equal(t, []int{1}, expl.AssumptionCauses)

	involved := make([]int, len(expl.InvolvedRules))
	for i, c := range expl.InvolvedRules {
		involved[i] = c.CID
	}
	assert.Equal(t, []int{2, 1, 0}, involved, "conflict clause first, then reverse up the chain")
	assert.Equal(t, []int{0, 1, 2}, musCIDs(report))
	assert.Equal(t, []string{"a", "b", "c"}, report.MUSRules)
}

func TestExplainRedundantClausesExcludedFromMUS(t *testing.T) {
	e := newTestExplainer(t,
		clause("a", -1, 2),
		clause("b", -2, 3),
		clause("c", -3),
		clause("d", 5, 6),
		clause("e", -5, 6),
	)
	report, err := e.Explain(context.Background(), []int{1}, nil)
	require.NoError(t, err)
	require.Equal(t, TypeUnsatWithCore, report.Type)
	assert.Equal(t, []int{0, 1, 2}, musCIDs(report))
}

func TestExplainSat(t *testing.T) {
	e := newTestExplainer(t,
		clause("a", 1, 2),
		clause("b", -1, 3),
	)
	report, err := e.Explain(context.Background(), []int{1}, nil)
	require.NoError(t, err)
	require.Equal(t, TypeSat, report.Type)
	assert.True(t, report.Model[1])
	assert.True(t, report.Model[3])
	assert.Len(t, report.Model, 3)
	assert.Nil(t, report.Primary)
}

func TestExplainHintFallback(t *testing.T) {
	raw := []solver.RawClause{
		clause("f1", 1), clause("f2", 2), clause("f3", 3), clause("f4", 4),
		clause("f5", 5), clause("f6", 6), clause("f7", 7),
		clause("g1", -10, 11),
		clause("g2", -11, 12),
		clause("g3", -12),
	}
	e := newTestExplainer(t, raw...)
	report, err := e.Explain(context.Background(), []int{10}, []int{99})
	require.NoError(t, err)
	require.Equal(t, TypeUnsatWithCore, report.Type)
	assert.True(t, report.HintFallback, "an unrelated hint focuses nothing")
	assert.Equal(t, []int{7, 8, 9}, musCIDs(report))
	assert.Equal(t, []int{99}, report.HintsUsed)
}

func TestExplainHintOnCoreVariableFallsBack(t *testing.T) {
	e := newTestExplainer(t,
		clause("a", -1, 2),
		clause("b", -2, 3),
		clause("c", -3),
	)
	report, err := e.Explain(context.Background(), []int{1}, []int{3})
	require.NoError(t, err)
	require.Equal(t, TypeUnsatWithCore, report.Type)
	// Clauses mentioning variable 3 alone are satisfiable under the
	// assumption, so the shrinker falls back to its input set; the MUS is
	// unchanged either way.
	assert.True(t, report.HintFallback)
	assert.Equal(t, []int{0, 1, 2}, musCIDs(report))
	assert.Equal(t, []int{3}, report.HintsUsed)
}

func TestExplainEmptyClause(t *testing.T) {
	e := newTestExplainer(t,
		clause("r"),
		clause("s", 1, 2),
	)
	report, err := e.Explain(context.Background(), []int{1}, nil)
	require.NoError(t, err)
	require.Equal(t, TypeUnsatWithCore, report.Type)
	expl := report.Primary
	assert.Equal(t, 0, expl.ConflictClause.CID)
	assert.NotNil(t, expl.FalsifiedLiterals)
	assert.Empty(t, expl.FalsifiedLiterals)
	assert.Empty(t, expl.AssumptionCauses)
	assert.Equal(t, []int{0}, musCIDs(report))
	assert.Equal(t, []string{"r"}, report.MUSRules)
}

// A conflict that closes below decision level zero records the deciding
// literal as a pseudo-assumption, and the driver falls back to the full
// problem when the explanation-derived candidate set alone is satisfiable.
func TestExplainDecisionPseudoAssumption(t *testing.T) {
	e := newTestExplainer(t,
		clause("pp", 1, 2),
		clause("pn", 1, -2),
		clause("np", -1, 2),
		clause("nn", -1, -2),
	)
	report, err := e.Explain(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, TypeUnsatWithCore, report.Type)
	assert.Equal(t, []int{-1}, report.Primary.AssumptionCauses, "the closing decision literal is reported as a pseudo-assumption")
	assert.Equal(t, []int{0, 1, 2, 3}, musCIDs(report), "every three-clause subset is satisfiable, so all four clauses are essential")
}

func TestExplainHintMonotonicity(t *testing.T) {
	raw := []solver.RawClause{
		clause("a", -1, 2),
		clause("b", -2, 3),
		clause("c", -3),
		clause("d", 5, 6),
	}
	baseline, err := newTestExplainer(t, raw...).Explain(context.Background(), []int{1}, nil)
	require.NoError(t, err)
	for _, hints := range [][]int{{2}, {3}, {-2, 3}, {99}} {
		report, err := newTestExplainer(t, raw...).Explain(context.Background(), []int{1}, hints)
		require.NoError(t, err)
		assert.Equal(t, baseline.Type, report.Type, "hints %v", hints)
		assert.Equal(t, musCIDs(baseline), musCIDs(report), "hints %v", hints)
		if diff := cmp.Diff(baseline.Primary, report.Primary); diff != "" {
			t.Errorf("hints %v changed the explanation (-baseline +got):\n%s", hints, diff)
		}
	}
}

func TestExplainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := newTestExplainer(t, clause("a", 1))
	_, err := e.Explain(ctx, nil, nil)
	require.ErrorIs(t, err, ErrCancelled)
}

func TestExplainRejectsZeroLiterals(t *testing.T) {
	e := newTestExplainer(t, clause("a", 1))
	_, err := e.Explain(context.Background(), []int{0}, nil)
	assert.Error(t, err)
	_, err = e.Explain(context.Background(), []int{1}, []int{0})
	assert.Error(t, err)
}

// Identical inputs must serialize to identical bytes.
func TestReportDeterminism(t *testing.T) {
	raw := []solver.RawClause{
		clause("a", -1, 2),
		clause("b", -2, 3),
		clause("c", -3),
		clause("d", 5, 6),
	}
	var outputs [][]byte
	for i := 0; i < 2; i++ {
		report, err := newTestExplainer(t, raw...).Explain(context.Background(), []int{1}, []int{3})
		require.NoError(t, err)
		buf, err := json.Marshal(report)
		require.NoError(t, err)
		outputs = append(outputs, buf)
	}
	assert.Equal(t, string(outputs[0]), string(outputs[1]))
}

func ExampleExplainer_Explain() {
	store, err := solver.NewStore(0, []solver.RawClause{
		{Lits: []int{1, 2}, RuleID: "r1"},
		{Lits: []int{-1, 2}, RuleID: "r2"},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	e, err := New(store)
	if err != nil {
		fmt.Println(err)
		return
	}
	report, err := e.Explain(context.Background(), []int{1, -1}, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	buf, err := json.Marshal(report)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(buf))
	// Output:
	// {"type":"unsat_with_core","primary_explanation":{"conflict_clause":{"cid":-1,"rule_id":"","note":"","literals":[1,-1]},"falsified_literals":[1,-1],"assumption_causes":[1,-1],"involved_rules":[{"cid":-1,"rule_id":"","note":"","literals":[1,-1]}]},"mus_size":0,"mus_clauses":[],"mus_rules":[],"hints_used":[],"hint_fallback":false}
}

func ExampleExplainer_Explain_sat() {
	store, err := solver.NewStore(0, []solver.RawClause{
		{Lits: []int{1, 2}, RuleID: "a"},
		{Lits: []int{-1, 3}, RuleID: "b"},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	e, err := New(store)
	if err != nil {
		fmt.Println(err)
		return
	}
	report, err := e.Explain(context.Background(), []int{1}, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	buf, err := json.Marshal(report)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(buf))
	// Output:
	// {"type":"sat","model":{"1":true,"2":true,"3":true}}
}
