// Package model accumulates the satisfying assignment of a solving
// session and materializes it as a Model that evaluates terms.
package model

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/xgqt/opensmt/internal/invariant"
	"github.com/xgqt/opensmt/pkg/term"
)

// DefaultFormalArgPrefix names the formal parameters of template
// functions unless WithFormalArgPrefix says otherwise.
const DefaultFormalArgPrefix = "x"

// Binding assigns Value to Var.
type Binding struct {
	Var   term.Term
	Value term.Term
}

// Entry is one point of a table-form interpretation.
type Entry struct {
	Args  []term.Term
	Value term.Term
}

// TemplateFunction is the interpretation of an uninterpreted symbol: a
// finite table of points and a default for everything else.
type TemplateFunction struct {
	Name    string
	Args    []term.Term
	RetSort term.Sort
	Entries []Entry
	Else    term.Term
}

// Apply returns the value of the function at vals, falling back to
// Else when no entry matches.
func (f *TemplateFunction) Apply(vals []term.Term) term.Term {
	for _, e := range f.Entries {
		if sameArgs(e.Args, vals) {
			return e.Value
		}
	}
	return f.Else
}

func (f *TemplateFunction) clone() *TemplateFunction {
	c := *f
	c.Args = append([]term.Term(nil), f.Args...)
	c.Entries = make([]Entry, len(f.Entries))
	for i, e := range f.Entries {
		c.Entries[i] = Entry{Args: append([]term.Term(nil), e.Args...), Value: e.Value}
	}
	return &c
}

func sameArgs(a, b []term.Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Builder collects variable values and function interpretations. Every
// variable and every symbol is bound at most once.
type Builder struct {
	pool        *term.Pool
	assignment  map[term.Term]term.Term
	definitions map[term.Symbol]*TemplateFunction
	uniqueNum   int
	prefix      string
}

type Option func(b *Builder)

// WithFormalArgPrefix sets the name prefix of formal parameters.
func WithFormalArgPrefix(prefix string) Option {
	return func(b *Builder) {
		b.prefix = prefix
	}
}

var defaults = []Option{
	func(b *Builder) {
		if b.prefix == "" {
			b.prefix = DefaultFormalArgPrefix
		}
	},
}

func NewBuilder(pool *term.Pool, options ...Option) *Builder {
	b := &Builder{
		pool:        pool,
		assignment:  make(map[term.Term]term.Term),
		definitions: make(map[term.Symbol]*TemplateFunction),
	}
	for _, option := range append(options, defaults...) {
		option(b)
	}
	return b
}

// AddVarValue binds v to value. Binding v a second time is a contract
// violation.
func (b *Builder) AddVarValue(v, value term.Term) {
	if old, ok := b.assignment[v]; ok {
		invariant.Failf("%s already bound to %s", b.pool.String(v), b.pool.String(old))
	}
	b.assignment[v] = value
}

// AddVarValues binds every element of bs.
func (b *Builder) AddVarValues(bs []Binding) {
	for _, bd := range bs {
		b.AddVarValue(bd.Var, bd.Value)
	}
}

// HasTheoryFunction reports whether sym already has an interpretation.
func (b *Builder) HasTheoryFunction(sym term.Symbol) bool {
	_, ok := b.definitions[sym]
	return ok
}

// HasTheoryFunctionOf reports whether the head symbol of t already has
// an interpretation.
func (b *Builder) HasTheoryFunctionOf(t term.Term) bool {
	return b.HasTheoryFunction(b.pool.SymbolOf(t))
}

// AddFunctionDefinition installs the interpretation of sym. Defining a
// symbol twice is a contract violation.
func (b *Builder) AddFunctionDefinition(sym term.Symbol, f *TemplateFunction) {
	invariant.Check(!b.HasTheoryFunction(sym), "function %s already defined", b.pool.Name(sym))
	args, _ := b.pool.Signature(sym)
	invariant.Check(len(f.Args) == len(args), "definition of %s has %d formal arguments, want %d",
		b.pool.Name(sym), len(f.Args), len(args))
	b.definitions[sym] = f.clone()
}

// AddToTheoryFunction adds the point vals -> val to the existing
// interpretation of sym.
func (b *Builder) AddToTheoryFunction(sym term.Symbol, vals []term.Term, val term.Term) error {
	f, ok := b.definitions[sym]
	if !ok {
		return errors.Errorf("function %s has no definition to extend", b.pool.Name(sym))
	}
	invariant.Check(len(vals) == len(f.Args), "point for %s has %d arguments, want %d",
		b.pool.Name(sym), len(vals), len(f.Args))
	f.Entries = append(f.Entries, Entry{Args: append([]term.Term(nil), vals...), Value: val})
	return nil
}

// NewTemplateFunction returns an empty interpretation of sym whose
// formal parameters are fresh variables and whose default is elseVal.
func (b *Builder) NewTemplateFunction(sym term.Symbol, elseVal term.Term) *TemplateFunction {
	argSorts, ret := b.pool.Signature(sym)
	f := &TemplateFunction{
		Name:    b.pool.Name(sym),
		Args:    make([]term.Term, len(argSorts)),
		RetSort: ret,
		Else:    elseVal,
	}
	for i, s := range argSorts {
		f.Args[i] = b.pool.MkVar(b.freshName(), s)
	}
	return f
}

func (b *Builder) freshName() string {
	for {
		name := fmt.Sprintf("%s!%d", b.prefix, b.uniqueNum)
		b.uniqueNum++
		if _, taken := b.pool.LookupSymbol(name); !taken {
			return name
		}
	}
}

// Build returns a snapshot of the collected assignment. Further calls
// on the builder do not affect the returned model.
func (b *Builder) Build() *Model {
	m := &Model{
		pool:        b.pool,
		assignment:  make(map[term.Term]term.Term, len(b.assignment)),
		definitions: make(map[term.Symbol]*TemplateFunction, len(b.definitions)),
	}
	for v, val := range b.assignment {
		m.assignment[v] = val
	}
	for sym, f := range b.definitions {
		m.definitions[sym] = f.clone()
	}
	return m
}
