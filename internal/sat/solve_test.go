package sat_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgqt/opensmt/internal/sat"
	"github.com/xgqt/opensmt/pkg/term"
)

func TestNotSatisfiableError(t *testing.T) {
	type tc struct {
		Name   string
		Error  sat.NotSatisfiable
		String string
	}

	for _, tt := range []tc{
		{
			Name:   "nil",
			String: "formulas not satisfiable",
		},
		{
			Name:   "empty",
			String: "formulas not satisfiable",
			Error:  sat.NotSatisfiable{},
		},
		{
			Name: "single failure",
			Error: sat.NotSatisfiable{
				{Text: "a"},
			},
			String: fmt.Sprintf("formulas not satisfiable: %s", "a"),
		},
		{
			Name: "multiple failures",
			Error: sat.NotSatisfiable{
				{Text: "a"},
				{Text: "(not a)"},
			},
			String: fmt.Sprintf("formulas not satisfiable: %s, %s", "a", "(not a)"),
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.String, tt.Error.Error())
		})
	}
}

func TestSolve(t *testing.T) {
	p := term.NewPool()
	u := p.DeclareSort("U")
	a := p.MkVar("a", p.Bool())
	b := p.MkVar("b", p.Bool())
	x := p.MkVar("x", u)
	y := p.MkVar("y", u)
	eq := p.MkEq(x, y)

	type tc struct {
		Name      string
		Roots     []term.Term
		True      []term.Term
		False     []term.Term
		Conflicts []term.Term
	}

	for _, tt := range []tc{
		{
			Name: "no roots",
		},
		{
			Name:  "single atom",
			Roots: []term.Term{a},
			True:  []term.Term{a},
		},
		{
			Name:  "negated atom",
			Roots: []term.Term{p.MkNot(a)},
			False: []term.Term{a},
		},
		{
			Name:      "contradiction",
			Roots:     []term.Term{a, p.MkNot(a)},
			Conflicts: []term.Term{a, p.MkNot(a)},
		},
		{
			Name:      "double negation is purified",
			Roots:     []term.Term{nots(p, a, 2), p.MkNot(a)},
			Conflicts: []term.Term{nots(p, a, 2), p.MkNot(a)},
		},
		{
			Name:      "theory atom is abstracted",
			Roots:     []term.Term{eq, p.MkNot(eq)},
			Conflicts: []term.Term{eq, p.MkNot(eq)},
		},
		{
			Name:      "implication",
			Roots:     []term.Term{a, p.MkImplies(a, b), p.MkNot(b)},
			Conflicts: []term.Term{a, p.MkImplies(a, b), p.MkNot(b)},
		},
		{
			Name:  "disjunction",
			Roots: []term.Term{p.MkOr(a, b), p.MkNot(a)},
			True:  []term.Term{b},
			False: []term.Term{a},
		},
		{
			Name:      "boolean equality",
			Roots:     []term.Term{p.MkEq(a, b), a, p.MkNot(b)},
			Conflicts: []term.Term{p.MkEq(a, b), a, p.MkNot(b)},
		},
		{
			Name:      "false root",
			Roots:     []term.Term{a, p.False()},
			Conflicts: []term.Term{p.False()},
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			var traces bytes.Buffer
			s, err := sat.NewSolver(
				sat.WithTermMapping(sat.NewTermMapping(p)),
				sat.WithTracer(sat.LoggingTracer{Writer: &traces}),
			)
			require.NoError(t, err)

			err = s.Solve(context.Background(), tt.Roots...)

			if tt.Conflicts == nil {
				require.NoError(t, err)
				for _, at := range tt.True {
					assert.True(t, s.Assignment()[at], "%s should be true", p.String(at))
				}
				for _, af := range tt.False {
					v, ok := s.Assignment()[af]
					assert.True(t, ok)
					assert.False(t, v, "%s should be false", p.String(af))
				}
			} else {
				var ns sat.NotSatisfiable
				require.True(t, errors.As(err, &ns), "expected NotSatisfiable, got %v", err)
				var got []term.Term
				for _, c := range ns {
					got = append(got, c.Term)
				}
				assert.ElementsMatch(t, tt.Conflicts, got)
				assert.Nil(t, s.Assignment())
			}

			if t.Failed() {
				t.Logf("\n%s", traces.String())
			}
		})
	}
}

func TestSolveIncremental(t *testing.T) {
	p := term.NewPool()
	a := p.MkVar("a", p.Bool())
	b := p.MkVar("b", p.Bool())
	c := p.MkVar("c", p.Bool())

	s, err := sat.NewSolver(sat.WithTermMapping(sat.NewTermMapping(p)))
	require.NoError(t, err)

	or := p.MkOr(a, b)
	require.NoError(t, s.Solve(context.Background(), or))
	require.NoError(t, s.Solve(context.Background(), or, p.MkNot(a), c))
	assert.True(t, s.Assignment()[b])
	assert.True(t, s.Assignment()[c])

	err = s.Solve(context.Background(), or, p.MkNot(a), p.MkNot(b))
	var ns sat.NotSatisfiable
	require.True(t, errors.As(err, &ns))
	texts := make([]string, len(ns))
	for i, c := range ns {
		texts[i] = c.String()
	}
	sort.Strings(texts)
	assert.Equal(t, []string{"(not a)", "(not b)", "(or a b)"}, texts)

	require.NoError(t, s.Solve(context.Background(), or), "assumptions do not persist")
}

func TestSolveCancelled(t *testing.T) {
	p := term.NewPool()
	a := p.MkVar("a", p.Bool())
	s, err := sat.NewSolver(sat.WithTermMapping(sat.NewTermMapping(p)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, sat.ErrIncomplete, s.Solve(ctx, a))
	assert.Nil(t, s.Assignment())
}

func TestSolverRequiresMapping(t *testing.T) {
	_, err := sat.NewSolver()
	assert.Error(t, err)
}

func TestSolveReportsMappingErrors(t *testing.T) {
	p := term.NewPool()
	a := p.MkVar("a", p.Bool())
	d := sat.NewTermMapping(p)
	s, err := sat.NewSolver(sat.WithTermMapping(d))
	require.NoError(t, err)

	d.LitOf(a)
	err = s.Solve(context.Background(), a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal solver failure")
}
