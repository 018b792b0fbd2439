package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bhanusingh06/sat-explainer/explain"
	"github.com/bhanusingh06/sat-explainer/solver"
)

const (
	exitSat      = 0
	exitUnsat    = 1
	exitBadInput = 2
	exitInternal = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	assume  []int
	hints   []int
	jsonOut bool
	noColor bool
	verbose bool
	timeout time.Duration
}

func run(args []string, out, errOut io.Writer) int {
	var opts options
	code := exitSat
	cmd := &cobra.Command{
		Use:   "sat-explainer [flags] file.cnf",
		Short: "Diagnose why a CNF problem is unsatisfiable under unit assumptions",
		Long: `sat-explainer solves a CNF problem under a list of unit assumptions.
If the problem is satisfiable it prints a model. If not, it prints the
conflict clause, the assumptions that caused it, the rules involved, and a
subset-minimal unsatisfiable subset of the clauses.

Each clause may carry metadata via a comment line placed just before it:

    c rule <rule-id> <free-form note...>`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			code, err = execute(&opts, args[0], out, errOut)
			return err
		},
	}
	cmd.Flags().IntSliceVar(&opts.assume, "assume", nil, "assumption literals, signed and nonzero (repeatable)")
	cmd.Flags().IntSliceVar(&opts.hints, "hint", nil, "core-hint literals; only their variables are consulted (repeatable)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "emit the structured report as JSON")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log solving progress")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "abort solving after this duration (0 means no limit)")
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(errOut, "sat-explainer: %v\n", err)
		if code == exitSat {
			// The command never ran: flag or argument error.
			code = exitBadInput
		}
	}
	return code
}

func execute(opts *options, path string, out, errOut io.Writer) (int, error) {
	log := logrus.New()
	log.SetOutput(errOut)
	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	for i, a := range opts.assume {
		if a == 0 {
			return exitBadInput, fmt.Errorf("--assume value at position %d is 0; literals must be nonzero", i)
		}
	}
	for i, h := range opts.hints {
		if h == 0 {
			return exitBadInput, fmt.Errorf("--hint value at position %d is 0; literals must be nonzero", i)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return exitBadInput, fmt.Errorf("could not open %q: %v", path, err)
	}
	defer f.Close()
	store, err := explain.ParseCNF(f)
	if err != nil {
		return exitBadInput, fmt.Errorf("could not parse %q: %v", path, err)
	}
	log.WithFields(logrus.Fields{
		"clauses": store.NbClauses(),
		"vars":    store.NbVars(),
	}).Debug("problem loaded")

	explainer, err := explain.New(store, explain.WithLogger(log))
	if err != nil {
		return exitInternal, err
	}
	ctx := context.Background()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	report, err := explainer.Explain(ctx, opts.assume, opts.hints)
	if err != nil {
		return exitInternal, err
	}

	if opts.jsonOut {
		buf, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return exitInternal, fmt.Errorf("could not serialize report: %v", err)
		}
		fmt.Fprintln(out, string(buf))
	} else {
		useColor := !opts.noColor
		if f, ok := out.(*os.File); ok {
			useColor = useColor && isatty.IsTerminal(f.Fd())
		}
		renderReport(out, report, useColor)
	}
	if report.Type == explain.TypeSat {
		return exitSat, nil
	}
	return exitUnsat, nil
}

// renderReport prints a human-readable version of the report.
func renderReport(w io.Writer, report *explain.Report, useColor bool) {
	color.NoColor = !useColor
	verdict := color.New(color.FgGreen, color.Bold).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()
	rule := color.New(color.Bold).SprintFunc()

	if report.Type == explain.TypeSat {
		fmt.Fprintln(w, verdict("SATISFIABLE"))
		fmt.Fprintln(w, modelLine(report.Model))
		return
	}
	fmt.Fprintln(w, bad("UNSATISFIABLE"))
	expl := report.Primary
	fmt.Fprintf(w, "conflict clause: %s\n", describeClause(expl.ConflictClause, rule))
	fmt.Fprintf(w, "falsified literals: %s\n", intsLine(expl.FalsifiedLiterals))
	fmt.Fprintf(w, "assumption causes: %s\n", intsLine(expl.AssumptionCauses))
	fmt.Fprintln(w, "involved rules:")
	for _, c := range expl.InvolvedRules {
		fmt.Fprintf(w, "  %s\n", describeClause(c, rule))
	}
	fmt.Fprintf(w, "minimal unsatisfiable subset (%d clauses):\n", len(report.MUSClauses))
	for _, c := range report.MUSClauses {
		fmt.Fprintf(w, "  %s\n", describeClause(c, rule))
	}
	if len(report.MUSRules) > 0 {
		fmt.Fprintf(w, "rules in subset: %s\n", strings.Join(report.MUSRules, ", "))
	}
	if len(report.HintsUsed) > 0 {
		fmt.Fprintf(w, "hints used: %s", intsLine(report.HintsUsed))
		if report.HintFallback {
			fmt.Fprint(w, " (ineffective, shrinking ignored the hint-focused subset)")
		}
		fmt.Fprintln(w)
	}
}

func describeClause(c explain.ClauseInfo, rule func(...interface{}) string) string {
	name := "<assumptions>"
	if c.CID >= 0 {
		name = fmt.Sprintf("#%d", c.CID)
		if c.RuleID != "" {
			name += " " + rule(c.RuleID)
		}
	}
	desc := fmt.Sprintf("%s [%s]", name, intsLine(c.Literals))
	if c.Note != "" {
		desc += " " + c.Note
	}
	return desc
}

func intsLine(ints []int) string {
	parts := make([]string, len(ints))
	for i, n := range ints {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, " ")
}

// modelLine prints a model the DIMACS way: each variable in ascending
// order, negated when bound to false.
func modelLine(model solver.Model) string {
	vars := make([]int, 0, len(model))
	for v := range model {
		vars = append(vars, v)
	}
	sort.Ints(vars)
	parts := make([]string, len(vars))
	for i, v := range vars {
		if model[v] {
			parts[i] = fmt.Sprintf("%d", v)
		} else {
			parts[i] = fmt.Sprintf("-%d", v)
		}
	}
	return strings.Join(parts, " ")
}
