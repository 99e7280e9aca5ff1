package sat

import (
	"fmt"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"go.uber.org/multierr"

	"github.com/xgqt/opensmt/internal/invariant"
	"github.com/xgqt/opensmt/pkg/term"
)

// TermPool is the part of the term pool the mapping consumes.
type TermPool interface {
	Args(t term.Term) []term.Term
	Kind(t term.Term) term.Kind
	SymbolOf(t term.Term) term.Symbol
	IsNot(t term.Term) bool
	IsTheoryEquality(t term.Term) bool
	String(t term.Term) string
}

// TermMapping performs translation between Boolean terms and the
// variables and literals that appear in the SAT formula. Every
// purified term has at most one variable; the polarity of stripped
// negations is carried by the literal.
type TermMapping struct {
	pool              TermPool
	inorder           []term.Term
	termToVar         map[term.Term]z.Var
	varToTerm         map[z.Var]term.Term
	varToTheorySymbol map[z.Var]term.Symbol
	theoryTerms       map[term.Term]bool
	encoded           map[term.Term]z.Lit
	c                 *logic.C
	marks             []int8
	links             []z.Lit
	linked            int
	errs              []error
	pedantic          bool
}

// MappingOption configures a TermMapping.
type MappingOption func(d *TermMapping)

// WithPedanticDebug enables the index-based debug lookup VarDebug.
func WithPedanticDebug(enabled bool) MappingOption {
	return func(d *TermMapping) {
		d.pedantic = enabled
	}
}

// WithCapacity sizes the internal tables for about n atoms.
func WithCapacity(n int) MappingOption {
	return func(d *TermMapping) {
		if n > 0 {
			d.c = logic.NewCCap(n + 2)
		}
	}
}

// NewTermMapping returns an empty mapping over pool.
func NewTermMapping(pool TermPool, options ...MappingOption) *TermMapping {
	d := &TermMapping{
		pool:              pool,
		termToVar:         make(map[term.Term]z.Var),
		varToTerm:         make(map[z.Var]term.Term),
		varToTheorySymbol: make(map[z.Var]term.Symbol),
		theoryTerms:       make(map[term.Term]bool),
		encoded:           make(map[term.Term]z.Lit),
	}
	for _, option := range options {
		option(d)
	}
	if d.c == nil {
		d.c = logic.NewC()
	}
	return d
}

// Purify strips the leading chain of negations from t. flipped is true
// when the chain has odd length.
func (d *TermMapping) Purify(t term.Term) (core term.Term, flipped bool) {
	for d.pool.IsNot(t) {
		t = d.pool.Args(t)[0]
		flipped = !flipped
	}
	return t, flipped
}

// Register gives the purified form of t a variable unless it already
// has one, and returns the literal of t. The variable of a connective
// is tied to the gate encoding it.
func (d *TermMapping) Register(t term.Term) z.Lit {
	core, flipped := d.Purify(t)
	v, ok := d.termToVar[core]
	if !ok {
		v = d.c.Lit().Var()
		d.termToVar[core] = v
		d.varToTerm[v] = core
		d.inorder = append(d.inorder, core)
		if d.isConnective(core) {
			d.Encode(core)
		}
	}
	return literal(v, flipped)
}

func (d *TermMapping) isConnective(t term.Term) bool {
	switch d.pool.Kind(t) {
	case term.KindTrue, term.KindFalse, term.KindAnd, term.KindOr, term.KindImplies:
		return true
	case term.KindEq:
		return !d.pool.IsTheoryEquality(t)
	}
	return false
}

func literal(v z.Var, flipped bool) z.Lit {
	m := v.Pos()
	if flipped {
		m = m.Not()
	}
	return m
}

// HasLit reports whether t, after purification, has a variable.
func (d *TermMapping) HasLit(t term.Term) bool {
	core, _ := d.Purify(t)
	_, ok := d.termToVar[core]
	return ok
}

// VarOf returns the variable of the purified form of t.
func (d *TermMapping) VarOf(t term.Term) z.Var {
	core, _ := d.Purify(t)
	v, ok := d.termToVar[core]
	if ok {
		return v
	}
	d.errs = append(d.errs, fmt.Errorf("term %s referenced but not registered", d.pool.String(t)))
	return 0
}

// LitOf returns the literal of t: the variable of its purified form,
// negated when an odd number of negations were stripped.
func (d *TermMapping) LitOf(t term.Term) z.Lit {
	core, flipped := d.Purify(t)
	v, ok := d.termToVar[core]
	if ok {
		return literal(v, flipped)
	}
	d.errs = append(d.errs, fmt.Errorf("term %s referenced but not registered", d.pool.String(t)))
	return z.LitNull
}

// TermOf returns the purified term behind v, or term.NoTerm if no such
// term exists.
func (d *TermMapping) TermOf(v z.Var) term.Term {
	t, ok := d.varToTerm[v]
	if ok {
		return t
	}
	d.errs = append(d.errs, fmt.Errorf("no term corresponding to %s", v))
	return term.NoTerm
}

// MarkTheoryTerm records that t needs congruence identity, so its
// variable is connected to the head symbol of the theory atom.
func (d *TermMapping) MarkTheoryTerm(t term.Term) {
	core, _ := d.Purify(t)
	d.theoryTerms[core] = true
	if v, ok := d.termToVar[core]; ok {
		d.varToTheorySymbol[v] = d.pool.SymbolOf(core)
	}
}

// IsTheoryTerm reports whether t was marked as a theory term.
func (d *TermMapping) IsTheoryTerm(t term.Term) bool {
	core, _ := d.Purify(t)
	return d.theoryTerms[core]
}

// TheorySymbolOf returns the head symbol of the theory atom behind v,
// or term.NoSymbol.
func (d *TermMapping) TheorySymbolOf(v z.Var) term.Symbol {
	return d.varToTheorySymbol[v]
}

// VarDebug returns the variable of the term with handle index r. It
// is only available with pedantic debugging enabled.
func (d *TermMapping) VarDebug(r int) z.Var {
	invariant.Check(d.pedantic, "VarDebug requires pedantic debugging")
	return d.termToVar[term.Term(r)]
}

// Terms returns every registered purified term in registration order.
func (d *TermMapping) Terms() []term.Term {
	return d.inorder
}

// Encode translates the Boolean skeleton of t into the circuit and
// returns the literal standing for t. Connectives become gates; every
// other Boolean term is an atom with a registered variable. A
// connective that also has a registered variable is encoded by that
// variable.
func (d *TermMapping) Encode(t term.Term) z.Lit {
	m, ok := d.encoded[t]
	if !ok {
		m = d.encode(t)
		d.encoded[t] = m
	}
	return d.link(t, m)
}

// link records the equivalence between the variable of t and its gate
// m. The equivalence is added as a unit clause by AddConstraints.
func (d *TermMapping) link(t term.Term, m z.Lit) z.Lit {
	v, ok := d.termToVar[t]
	if !ok || m == v.Pos() {
		return m
	}
	d.links = append(d.links, d.c.Xor(v.Pos(), m).Not())
	d.encoded[t] = v.Pos()
	return v.Pos()
}

func (d *TermMapping) encode(t term.Term) z.Lit {
	var m z.Lit
	args := d.pool.Args(t)
	switch d.pool.Kind(t) {
	case term.KindTrue:
		m = d.c.T
	case term.KindFalse:
		m = d.c.F
	case term.KindNot:
		m = d.Encode(args[0]).Not()
	case term.KindAnd:
		m = d.c.Ands(d.encodeAll(args)...)
	case term.KindOr:
		m = d.c.Ors(d.encodeAll(args)...)
	case term.KindImplies:
		m = d.c.Implies(d.Encode(args[0]), d.Encode(args[1]))
	case term.KindEq:
		if d.pool.IsTheoryEquality(t) {
			m = d.Register(t)
			break
		}
		m = d.c.Xor(d.Encode(args[0]), d.Encode(args[1])).Not()
	default:
		m = d.Register(t)
	}
	return m
}

func (d *TermMapping) encodeAll(ts []term.Term) []z.Lit {
	ms := make([]z.Lit, len(ts))
	for i, t := range ts {
		ms[i] = d.Encode(t)
	}
	return ms
}

// AddConstraints adds the part of the embedded circuit reachable from
// roots, and not added before, to the solver g. Pending links between
// variables and gates are added as unit clauses.
func (d *TermMapping) AddConstraints(g inter.Adder, roots ...z.Lit) {
	if d.marks == nil {
		g.Add(d.c.T)
		g.Add(z.LitNull)
	}
	pending := d.links[d.linked:]
	all := make([]z.Lit, 0, len(roots)+len(pending))
	all = append(append(all, roots...), pending...)
	d.marks, _ = d.c.CnfSince(g, d.marks, all...)
	for _, m := range pending {
		g.Add(m)
		g.Add(z.LitNull)
	}
	d.linked = len(d.links)
}

// Lits returns the positive literal of every registered term, in
// registration order.
func (d *TermMapping) Lits(dst []z.Lit) []z.Lit {
	if cap(dst) < len(d.inorder) {
		dst = make([]z.Lit, 0, len(d.inorder))
	}
	dst = dst[:0]
	for _, t := range d.inorder {
		dst = append(dst, d.termToVar[t].Pos())
	}
	return dst
}

type valuation interface {
	inter.Model
	inter.MaxVar
}

// Assignment returns the truth value under m of every registered term.
// A variable that never reached the solver, because the circuit folded
// it away, is reported false.
func (d *TermMapping) Assignment(m valuation) map[term.Term]bool {
	result := make(map[term.Term]bool, len(d.inorder))
	max := m.MaxVar()
	for _, t := range d.inorder {
		v := d.termToVar[t]
		if v > max {
			result[t] = false
			continue
		}
		result[t] = m.Value(v.Pos())
	}
	return result
}

// Error returns a single error value that is an aggregation of all
// errors encountered during a TermMapping's lifetime, or nil if there
// have been no errors. A non-nil return value likely indicates a
// problem with the caller's registration order.
func (d *TermMapping) Error() error {
	if len(d.errs) == 0 {
		return nil
	}
	return fmt.Errorf("internal solver failure: %d errors encountered: %w", len(d.errs), multierr.Combine(d.errs...))
}
