package solver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgqt/opensmt/internal/egraph"
	"github.com/xgqt/opensmt/internal/sat"
	"github.com/xgqt/opensmt/internal/solver"
	"github.com/xgqt/opensmt/internal/theory"
	"github.com/xgqt/opensmt/pkg/config"
	"github.com/xgqt/opensmt/pkg/constraints"
	"github.com/xgqt/opensmt/pkg/term"
)

func newSession(t *testing.T, p *term.Pool, cfg *config.Config) *solver.Session {
	t.Helper()
	s, err := solver.NewSession(p, cfg, solver.WithLogger(testr.New(t)))
	require.NoError(t, err)
	return s
}

func auf() *config.Config {
	c := config.Default()
	c.Logic = config.QFAUF
	return c
}

func conflictTerms(t *testing.T, err error) []term.Term {
	t.Helper()
	var ns sat.NotSatisfiable
	require.True(t, errors.As(err, &ns), "expected NotSatisfiable, got %v", err)
	out := make([]term.Term, len(ns))
	for i, c := range ns {
		out[i] = c.Term
	}
	return out
}

func TestSolveUF(t *testing.T) {
	p := term.NewPool()
	u := p.DeclareSort("U")
	x, y := p.MkVar("x", u), p.MkVar("y", u)
	f := p.DeclareFun("f", []term.Sort{u}, u)
	a := p.MkVar("a", p.Bool())
	eq := p.MkEq(x, y)

	type tc struct {
		Name          string
		Formulas      []term.Term
		Unsatisfiable bool
		True          []term.Term
		False         []term.Term
	}

	for _, tt := range []tc{
		{
			Name: "empty",
		},
		{
			Name:     "congruence atoms",
			Formulas: []term.Term{p.MkEq(p.MkApp(f, x), p.MkApp(f, y)), eq},
			True:     []term.Term{eq, p.MkEq(p.MkApp(f, x), p.MkApp(f, y))},
		},
		{
			Name:          "equality and its negation",
			Formulas:      []term.Term{eq, p.MkNot(eq)},
			Unsatisfiable: true,
		},
		{
			Name:          "distinct against equality",
			Formulas:      []term.Term{p.MkDistinct(x, y), eq},
			Unsatisfiable: true,
		},
		{
			Name:     "boolean skeleton",
			Formulas: []term.Term{p.MkOr(a, eq), p.MkNot(a)},
			True:     []term.Term{eq},
			False:    []term.Term{a},
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			s := newSession(t, p, nil)
			for _, fla := range tt.Formulas {
				require.NoError(t, s.Assert(fla))
			}
			solution, err := s.Solve(context.Background())
			if tt.Unsatisfiable {
				assert.NotEmpty(t, conflictTerms(t, err))
				assert.Nil(t, solution)
				return
			}
			require.NoError(t, err)
			for _, at := range tt.True {
				assert.True(t, solution[at], "%s should be true", p.String(at))
			}
			for _, af := range tt.False {
				v, ok := solution[af]
				assert.True(t, ok)
				assert.False(t, v, "%s should be false", p.String(af))
			}
		})
	}
}

func TestRegistration(t *testing.T) {
	p := term.NewPool()
	u := p.DeclareSort("U")
	x, y := p.MkVar("x", u), p.MkVar("y", u)
	f := p.DeclareFun("f", []term.Sort{u}, u)
	fx, fy := p.MkApp(f, x), p.MkApp(f, y)
	eq := p.MkEq(fx, fy)

	s := newSession(t, p, nil)
	require.NoError(t, s.Assert(p.MkAnd(eq, p.MkEq(x, y))))
	_, err := s.Solve(context.Background())
	require.NoError(t, err)

	g := s.Egraph()
	for _, tm := range []term.Term{x, y, fx, fy, eq, p.MkEq(x, y)} {
		require.True(t, g.HasTerm(tm), "%s should have an enode", p.String(tm))
		assert.Equal(t, tm, g.ERefToTerm(g.TermToERef(tm)))
	}
	assert.False(t, g.HasTerm(p.MkAnd(eq, p.MkEq(x, y))), "connectives stay out of the egraph")

	fxNode := g.Enode(g.TermToERef(fx))
	assert.Equal(t, f, fxNode.Symbol)
	assert.Equal(t, []egraph.ERef{g.TermToERef(x)}, fxNode.Args)

	m := s.TermMapping()
	assert.True(t, m.IsTheoryTerm(eq))
	assert.Equal(t, p.SymbolOf(eq), m.TheorySymbolOf(m.VarOf(eq)))
	require.NoError(t, m.Error())
}

func TestNegatedArgumentPairing(t *testing.T) {
	p := term.NewPool()
	u := p.DeclareSort("U")
	a := p.MkVar("a", p.Bool())
	f := p.DeclareFun("f", []term.Sort{p.Bool()}, u)
	x := p.MkVar("x", u)

	s := newSession(t, p, nil)
	require.NoError(t, s.Assert(p.MkEq(p.MkApp(f, p.MkNot(p.MkNot(a))), x)))
	_, err := s.Solve(context.Background())
	require.NoError(t, err)

	g := s.Egraph()
	for _, tm := range []term.Term{a, p.MkNot(a), p.MkNot(p.MkNot(a))} {
		assert.True(t, g.HasTerm(tm), "%s should have an enode", p.String(tm))
	}
	assert.True(t, s.TermMapping().IsTheoryTerm(a))
	assert.Equal(t, s.TermMapping().VarOf(a), s.TermMapping().VarOf(p.MkNot(p.MkNot(a))))
}

func TestSolveArrays(t *testing.T) {
	p := term.NewPool(term.WithArrays())
	u := p.DeclareSort("U")
	arr := p.MkVar("arr", p.ArraySort(u, u))
	i, v := p.MkVar("i", u), p.MkVar("v", u)
	read := p.MkSelect(p.MkStore(arr, i, v), i)

	s := newSession(t, p, auf())
	require.NoError(t, s.Assert(p.MkDistinct(read, v)))
	_, err := s.Solve(context.Background())
	assert.NotEmpty(t, conflictTerms(t, err), "read over write refutes the disequality")
	assert.True(t, s.Egraph().HasTerm(p.MkStore(arr, i, v)))
}

func TestKeepPartitionsUnsupported(t *testing.T) {
	p := term.NewPool(term.WithArrays())
	cfg := auf()
	cfg.KeepPartitions = true
	s := newSession(t, p, cfg)
	require.NoError(t, s.Assert(p.True()))

	_, err := s.Solve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, theory.ErrPartitionsUnsupported)
	assert.Contains(t, err.Error(), "simplifying frame 0")
}

func TestFrames(t *testing.T) {
	p := term.NewPool()
	a := p.MkVar("a", p.Bool())
	b := p.MkVar("b", p.Bool())
	s := newSession(t, p, nil)

	require.NoError(t, s.Assert(p.MkOr(a, b)))
	_, err := s.Solve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, s.Push())
	require.NoError(t, s.Assert(p.MkNot(a)))
	require.NoError(t, s.Assert(p.MkNot(b)))
	_, err = s.Solve(context.Background())
	assert.ElementsMatch(t, []term.Term{p.MkOr(a, b), p.MkAnd(p.MkNot(a), p.MkNot(b))}, conflictTerms(t, err))
}

func TestAssertAfterSolve(t *testing.T) {
	p := term.NewPool()
	a := p.MkVar("a", p.Bool())
	s := newSession(t, p, nil)

	require.NoError(t, s.Assert(a))
	solution, err := s.Solve(context.Background())
	require.NoError(t, err)
	assert.True(t, solution[a])

	require.NoError(t, s.Assert(p.MkNot(a)))
	solution, err = s.Solve(context.Background())
	var ns sat.NotSatisfiable
	assert.True(t, errors.As(err, &ns), "expected NotSatisfiable, got %v", err)
	assert.Nil(t, solution)
}

func TestConnectiveArgumentFollowsSearch(t *testing.T) {
	p := term.NewPool()
	u := p.DeclareSort("U")
	a, b := p.MkVar("a", p.Bool()), p.MkVar("b", p.Bool())
	c := p.MkVar("c", u)
	f := p.DeclareFun("f", []term.Sort{p.Bool()}, u)
	conj := p.MkAnd(a, b)

	s := newSession(t, p, nil)
	require.NoError(t, s.Assert(p.MkAnd(p.MkEq(p.MkApp(f, conj), c), a, b)))
	solution, err := s.Solve(context.Background())
	require.NoError(t, err)

	m := s.TermMapping()
	require.True(t, m.HasLit(conj))
	assert.True(t, solution[a])
	assert.True(t, solution[b])
	assert.True(t, solution[conj], "the variable of %s agrees with its operands", p.String(conj))
	require.NoError(t, m.Error())
}

func TestSolveCancelled(t *testing.T) {
	p := term.NewPool()
	s := newSession(t, p, nil)
	require.NoError(t, s.Assert(p.MkVar("a", p.Bool())))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Solve(ctx)
	assert.Equal(t, sat.ErrIncomplete, err)
}

func TestNewSessionRejectsMismatchedLogic(t *testing.T) {
	_, err := solver.NewSession(term.NewPool(), auf())
	assert.EqualError(t, err, "logic QF_AUF does not match a pool with arrays=false")

	bad := config.Default()
	bad.Logic = "QF_LIA"
	_, err = solver.NewSession(term.NewPool(), bad)
	assert.Error(t, err)
}

func TestSessionID(t *testing.T) {
	a := newSession(t, term.NewPool(), nil)
	b := newSession(t, term.NewPool(), nil)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestAssertNonBoolean(t *testing.T) {
	p := term.NewPool()
	s := newSession(t, p, nil)
	assert.EqualError(t, s.Assert(p.MkVar("x", p.DeclareSort("U"))), "asserting non-Boolean term x")
}

func TestAssertVariables(t *testing.T) {
	p := term.NewPool()

	type tc struct {
		Name          string
		Variables     []constraints.Variable
		Unsatisfiable bool
		Selected      []constraints.Identifier
	}

	for _, tt := range []tc{
		{
			Name: "dependency pulls in a candidate",
			Variables: []constraints.Variable{
				constraints.NewVariable("app", constraints.Mandatory(), constraints.Dependency("lib")),
				constraints.NewVariable("lib"),
			},
			Selected: []constraints.Identifier{"app", "lib"},
		},
		{
			Name: "conflicting mandatory variables",
			Variables: []constraints.Variable{
				constraints.NewVariable("app", constraints.Mandatory(), constraints.Conflict("lib")),
				constraints.NewVariable("lib", constraints.Mandatory()),
			},
			Unsatisfiable: true,
		},
		{
			Name: "at most one of two required",
			Variables: []constraints.Variable{
				constraints.NewVariable("one", constraints.Mandatory(), constraints.AtMost(1, "one", "two")),
				constraints.NewVariable("two", constraints.Mandatory()),
			},
			Unsatisfiable: true,
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			s := newSession(t, p, nil)
			gen := constraints.GeneratorFunc(func(context.Context, *term.Pool) ([]constraints.Variable, error) {
				return tt.Variables, nil
			})
			require.NoError(t, s.AssertGenerated(context.Background(), gen))
			solution, err := s.Solve(context.Background())
			if tt.Unsatisfiable {
				assert.NotEmpty(t, conflictTerms(t, err))
				return
			}
			require.NoError(t, err)
			for _, id := range tt.Selected {
				assert.True(t, solution[id.Atom(p)], "%s should be selected", id)
			}
		})
	}
}

func TestModelBuilder(t *testing.T) {
	p := term.NewPool()
	u := p.DeclareSort("U")
	a, b := p.MkVar("a", p.Bool()), p.MkVar("b", p.Bool())
	x, y := p.MkVar("x", u), p.MkVar("y", u)
	one := p.MkConst("1", u)
	fla := p.MkAnd(a, p.MkNot(b), p.MkEq(x, y))

	s := newSession(t, p, nil)
	require.NoError(t, s.Assert(fla))
	_, err := s.Solve(context.Background())
	require.NoError(t, err)

	builder := s.ModelBuilder()
	builder.AddVarValue(x, one)
	builder.AddVarValue(y, one)
	assert.Panics(t, func() { builder.AddVarValue(a, p.False()) }, "Boolean variables are already bound")

	m := builder.Build()
	val, ok := m.Value(a)
	require.True(t, ok)
	assert.Equal(t, p.True(), val)
	val, ok = m.Value(b)
	require.True(t, ok)
	assert.Equal(t, p.False(), val)
	assert.Equal(t, p.True(), m.Evaluate(fla))
}

func TestModelBuilderBindsFoldedAtoms(t *testing.T) {
	p := term.NewPool()
	a := p.MkVar("a", p.Bool())
	fla := p.MkOr(a, p.MkNot(a))

	s := newSession(t, p, nil)
	require.NoError(t, s.Assert(fla))
	solution, err := s.Solve(context.Background())
	require.NoError(t, err)
	_, ok := solution[a]
	assert.True(t, ok)

	m := s.ModelBuilder().Build()
	_, ok = m.Value(a)
	assert.True(t, ok, "every atom of the formula is bound")
	assert.Equal(t, p.True(), m.Evaluate(fla))
}

func TestAssertVariablesNameClash(t *testing.T) {
	p := term.NewPool()
	p.MkVar("app", p.DeclareSort("U"))
	s := newSession(t, p, nil)

	err := s.AssertVariables(constraints.NewVariable("app", constraints.Mandatory()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal solver failure")
}
