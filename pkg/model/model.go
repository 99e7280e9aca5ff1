package model

import (
	"sort"
	"strings"

	"github.com/xgqt/opensmt/pkg/term"
)

// Model is a read-only assignment of values to variables and of
// interpretations to uninterpreted symbols.
type Model struct {
	pool        *term.Pool
	assignment  map[term.Term]term.Term
	definitions map[term.Symbol]*TemplateFunction
}

// Value returns the value bound to v.
func (m *Model) Value(v term.Term) (term.Term, bool) {
	val, ok := m.assignment[v]
	return val, ok
}

// Definition returns the interpretation of sym.
func (m *Model) Definition(sym term.Symbol) (*TemplateFunction, bool) {
	f, ok := m.definitions[sym]
	if !ok {
		return nil, false
	}
	return f.clone(), true
}

// Evaluate returns the value of t under the model. Subterms the model
// says nothing about, such as unbound variables, are kept symbolic, so
// the result is a value only when every free symbol of t is bound.
func (m *Model) Evaluate(t term.Term) term.Term {
	p := m.pool
	return term.Rewrite(p, t, func(t term.Term, args []term.Term) term.Term {
		if val, ok := m.assignment[t]; ok {
			return val
		}
		switch p.Kind(t) {
		case term.KindImplies:
			switch {
			case p.IsFalse(args[0]) || p.IsTrue(args[1]):
				return p.True()
			case p.IsTrue(args[0]):
				return args[1]
			}
		case term.KindEq:
			if args[0] != args[1] && m.isValue(args[0]) && m.isValue(args[1]) {
				return p.False()
			}
		case term.KindDistinct:
			return m.distinct(args)
		case term.KindSelect:
			return m.read(args[0], args[1])
		case term.KindUF:
			if f, ok := m.definitions[p.SymbolOf(t)]; ok && m.allValues(args) {
				return f.Apply(args)
			}
		}
		return term.NoTerm
	})
}

// isValue reports whether t denotes a fixed element of its sort.
func (m *Model) isValue(t term.Term) bool {
	p := m.pool
	switch p.Kind(t) {
	case term.KindTrue, term.KindFalse, term.KindConst:
		return true
	case term.KindConstArray:
		return m.isValue(p.Args(t)[0])
	}
	return false
}

func (m *Model) allValues(ts []term.Term) bool {
	for _, t := range ts {
		if !m.isValue(t) {
			return false
		}
	}
	return true
}

func (m *Model) distinct(args []term.Term) term.Term {
	p := m.pool
	seen := make(map[term.Term]struct{}, len(args))
	for _, a := range args {
		if _, ok := seen[a]; ok {
			return p.False()
		}
		seen[a] = struct{}{}
	}
	if m.allValues(args) {
		return p.True()
	}
	return p.MkDistinct(args...)
}

// read resolves (select arr index) through stores and constant arrays
// as far as the values allow.
func (m *Model) read(arr, index term.Term) term.Term {
	p := m.pool
	for {
		switch p.Kind(arr) {
		case term.KindStore:
			args := p.Args(arr)
			if args[1] == index {
				return args[2]
			}
			if !m.isValue(args[1]) || !m.isValue(index) {
				return p.MkSelect(arr, index)
			}
			arr = args[0]
		case term.KindConstArray:
			return p.Args(arr)[0]
		default:
			return p.MkSelect(arr, index)
		}
	}
}

// String renders the model as SMT-LIB definitions, variables first,
// each group ordered by name.
func (m *Model) String() string {
	p := m.pool
	type def struct {
		name string
		text string
	}
	var vars, funs []def
	for v, val := range m.assignment {
		name := p.String(v)
		vars = append(vars, def{name, "(define-fun " + name + " () " + p.SortName(p.SortOf(v)) + " " + p.String(val) + ")"})
	}
	for _, f := range m.definitions {
		funs = append(funs, def{f.Name, m.renderFunction(f)})
	}
	byName := func(ds []def) {
		sort.Slice(ds, func(i, j int) bool { return ds[i].name < ds[j].name })
	}
	byName(vars)
	byName(funs)

	var b strings.Builder
	b.WriteString("(model")
	for _, d := range append(vars, funs...) {
		b.WriteString("\n  ")
		b.WriteString(d.text)
	}
	b.WriteString("\n)")
	return b.String()
}

func (m *Model) renderFunction(f *TemplateFunction) string {
	p := m.pool
	var b strings.Builder
	b.WriteString("(define-fun " + f.Name + " (")
	for i, a := range f.Args {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("(" + p.String(a) + " " + p.SortName(p.SortOf(a)) + ")")
	}
	b.WriteString(") " + p.SortName(f.RetSort) + " ")
	body := p.String(f.Else)
	for i := len(f.Entries) - 1; i >= 0; i-- {
		e := f.Entries[i]
		if len(e.Args) == 0 {
			body = p.String(e.Value)
			continue
		}
		conds := make([]string, len(e.Args))
		for j, a := range e.Args {
			conds[j] = "(= " + p.String(f.Args[j]) + " " + p.String(a) + ")"
		}
		cond := conds[0]
		if len(conds) > 1 {
			cond = "(and " + strings.Join(conds, " ") + ")"
		}
		body = "(ite " + cond + " " + p.String(e.Value) + " " + body + ")"
	}
	b.WriteString(body + ")")
	return b.String()
}
