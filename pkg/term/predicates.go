package term

import (
	"strings"
)

// Pterm returns the read-only view of t.
func (p *Pool) Pterm(t Term) Pterm {
	p.checkTerm(t)
	return p.terms[t]
}

// SymbolOf returns the head symbol of t.
func (p *Pool) SymbolOf(t Term) Symbol {
	return p.Pterm(t).Symbol
}

// Args returns the children of t. The slice must not be modified.
func (p *Pool) Args(t Term) []Term {
	return p.Pterm(t).Args
}

// SortOf returns the sort of t.
func (p *Pool) SortOf(t Term) Sort {
	return p.Pterm(t).Sort
}

// Kind returns the kind of the head symbol of t.
func (p *Pool) Kind(t Term) Kind {
	return p.symbols[p.Pterm(t).Symbol].kind
}

// SymbolKind returns the kind of sym.
func (p *Pool) SymbolKind(sym Symbol) Kind {
	return p.symbols[sym].kind
}

// Name returns the printable name of sym.
func (p *Pool) Name(sym Symbol) string {
	return p.symbols[sym].name
}

// Signature returns the argument and return sorts of sym. Built-in
// polymorphic symbols report no argument sorts.
func (p *Pool) Signature(sym Symbol) ([]Sort, Sort) {
	info := p.symbols[sym]
	return info.args, info.ret
}

// LookupSymbol returns the variable, constant or function symbol
// declared under name.
func (p *Pool) LookupSymbol(name string) (Symbol, bool) {
	s, ok := p.symbolNames[name]
	return s, ok
}

func (p *Pool) IsTrue(t Term) bool  { return t == p.termTrue }
func (p *Pool) IsFalse(t Term) bool { return t == p.termFalse }
func (p *Pool) IsNot(t Term) bool   { return p.Kind(t) == KindNot }
func (p *Pool) IsAnd(t Term) bool   { return p.Kind(t) == KindAnd }
func (p *Pool) IsOr(t Term) bool    { return p.Kind(t) == KindOr }
func (p *Pool) IsVar(t Term) bool   { return p.Kind(t) == KindVar }

// IsConstant reports whether t is a value: true, false or a declared
// constant.
func (p *Pool) IsConstant(t Term) bool {
	switch p.Kind(t) {
	case KindTrue, KindFalse, KindConst:
		return true
	}
	return false
}

// HasSortBool reports whether t is Boolean.
func (p *Pool) HasSortBool(t Term) bool {
	return p.SortOf(t) == p.boolSort
}

// IsUF reports whether t applies an uninterpreted function of
// non-Boolean return sort.
func (p *Pool) IsUF(t Term) bool {
	return p.Kind(t) == KindUF && !p.HasSortBool(t)
}

// IsUP reports whether t applies an uninterpreted predicate.
func (p *Pool) IsUP(t Term) bool {
	return p.Kind(t) == KindUF && p.HasSortBool(t)
}

// YieldsSortUninterpreted reports whether the sort of t is a declared
// uninterpreted sort.
func (p *Pool) YieldsSortUninterpreted(t Term) bool {
	return p.sorts[p.SortOf(t)].kind == sortUninterpreted
}

// IsArraySort reports whether s is an array sort.
func (p *Pool) IsArraySort(s Sort) bool {
	return p.sorts[s].kind == sortArray
}

func (p *Pool) IsEquality(t Term) bool    { return p.Kind(t) == KindEq }
func (p *Pool) IsDisequality(t Term) bool { return p.Kind(t) == KindDistinct }
func (p *Pool) IsArrayStore(t Term) bool  { return p.Kind(t) == KindStore }
func (p *Pool) IsArraySelect(t Term) bool { return p.Kind(t) == KindSelect }

// IsTheoryEquality reports whether t is an equality over a non-Boolean
// sort. Equalities between Boolean terms are connectives.
func (p *Pool) IsTheoryEquality(t Term) bool {
	return p.IsEquality(t) && !p.HasSortBool(p.terms[t].Args[0])
}

// IsBooleanOperator reports whether t is a propositional connective.
func (p *Pool) IsBooleanOperator(t Term) bool {
	switch p.Kind(t) {
	case KindNot, KindAnd, KindOr, KindImplies:
		return true
	case KindEq:
		return !p.IsTheoryEquality(t)
	}
	return false
}

// IsBoolAtom reports whether t is a Boolean variable.
func (p *Pool) IsBoolAtom(t Term) bool {
	return p.IsVar(t) && p.HasSortBool(t)
}

// AppearsInUF reports whether t has been used as an argument of an
// uninterpreted application.
func (p *Pool) AppearsInUF(t Term) bool {
	_, ok := p.inUF[t]
	return ok
}

// String renders t in SMT-LIB syntax.
func (p *Pool) String(t Term) string {
	var b strings.Builder
	p.write(&b, t)
	return b.String()
}

func (p *Pool) write(b *strings.Builder, t Term) {
	pt := p.Pterm(t)
	info := p.symbols[pt.Symbol]
	if len(pt.Args) == 0 {
		b.WriteString(info.name)
		return
	}
	b.WriteByte('(')
	if info.kind == KindConstArray {
		b.WriteString("(as const " + p.SortName(pt.Sort) + ")")
	} else {
		b.WriteString(info.name)
	}
	for _, a := range pt.Args {
		b.WriteByte(' ')
		p.write(b, a)
	}
	b.WriteByte(')')
}
