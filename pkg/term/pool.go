// Package term provides the hash-consed term pool the theory core
// reasons over. Terms, symbols and sorts are small integer handles
// resolved through the owning Pool; structurally equal terms share one
// handle.
package term

import (
	"encoding/binary"
	"sort"

	"github.com/xgqt/opensmt/internal/invariant"
)

type sortKind uint8

const (
	sortBool sortKind = iota + 1
	sortUninterpreted
	sortArray
)

type sortInfo struct {
	name  string
	kind  sortKind
	index Sort
	elem  Sort
}

type symbolInfo struct {
	name string
	kind Kind
	args []Sort
	ret  Sort
}

// Pool owns every sort, symbol and term of a solving session. A Pool
// is not safe for concurrent use.
type Pool struct {
	sorts      []sortInfo
	sortNames  map[string]Sort
	arraySorts map[[2]Sort]Sort

	symbols     []symbolInfo
	symbolNames map[string]Symbol
	constArrays map[Sort]Symbol

	terms []Pterm
	cache map[string]Term
	inUF  map[Term]struct{}

	arrays bool

	boolSort Sort
	symTrue, symFalse, symNot, symAnd, symOr, symImplies,
	symEq, symDistinct, symSelect, symStore Symbol
	termTrue, termFalse Term
}

// Option configures a Pool.
type Option func(p *Pool)

// WithArrays enables the array theory: array sorts get theory identity
// and select/store become available.
func WithArrays() Option {
	return func(p *Pool) {
		p.arrays = true
	}
}

// WithCapacity preallocates room for n terms.
func WithCapacity(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.terms = make([]Pterm, 1, n+1)
			p.cache = make(map[string]Term, n)
		}
	}
}

// NewPool returns an empty pool holding only the Boolean sort, the
// logical connectives and the terms true and false.
func NewPool(options ...Option) *Pool {
	p := &Pool{
		sorts:       make([]sortInfo, 1),
		sortNames:   make(map[string]Sort),
		arraySorts:  make(map[[2]Sort]Sort),
		symbols:     make([]symbolInfo, 1),
		symbolNames: make(map[string]Symbol),
		constArrays: make(map[Sort]Symbol),
		terms:       make([]Pterm, 1),
		cache:       make(map[string]Term),
		inUF:        make(map[Term]struct{}),
	}
	for _, option := range options {
		option(p)
	}

	p.boolSort = p.newSort(sortInfo{name: "Bool", kind: sortBool})
	p.symTrue = p.newSymbol(symbolInfo{name: "true", kind: KindTrue, ret: p.boolSort})
	p.symFalse = p.newSymbol(symbolInfo{name: "false", kind: KindFalse, ret: p.boolSort})
	p.symNot = p.newSymbol(symbolInfo{name: "not", kind: KindNot, ret: p.boolSort})
	p.symAnd = p.newSymbol(symbolInfo{name: "and", kind: KindAnd, ret: p.boolSort})
	p.symOr = p.newSymbol(symbolInfo{name: "or", kind: KindOr, ret: p.boolSort})
	p.symImplies = p.newSymbol(symbolInfo{name: "=>", kind: KindImplies, ret: p.boolSort})
	p.symEq = p.newSymbol(symbolInfo{name: "=", kind: KindEq, ret: p.boolSort})
	p.symDistinct = p.newSymbol(symbolInfo{name: "distinct", kind: KindDistinct, ret: p.boolSort})
	p.symSelect = p.newSymbol(symbolInfo{name: "select", kind: KindSelect})
	p.symStore = p.newSymbol(symbolInfo{name: "store", kind: KindStore})
	p.termTrue = p.intern(p.symTrue, nil, p.boolSort)
	p.termFalse = p.intern(p.symFalse, nil, p.boolSort)
	return p
}

// HasArrays reports whether the array theory is enabled.
func (p *Pool) HasArrays() bool {
	return p.arrays
}

// Len returns the number of terms in the pool.
func (p *Pool) Len() int {
	return len(p.terms) - 1
}

func (p *Pool) newSort(info sortInfo) Sort {
	s := Sort(len(p.sorts))
	p.sorts = append(p.sorts, info)
	if info.kind != sortArray {
		p.sortNames[info.name] = s
	}
	return s
}

func (p *Pool) newSymbol(info symbolInfo) Symbol {
	s := Symbol(len(p.symbols))
	p.symbols = append(p.symbols, info)
	switch info.kind {
	case KindVar, KindConst, KindUF:
		p.symbolNames[info.name] = s
	}
	return s
}

// signature encodes the hash-consing key of a term.
func signature(sym Symbol, args []Term) string {
	b := make([]byte, 4*(len(args)+1))
	binary.LittleEndian.PutUint32(b, uint32(sym))
	for i, a := range args {
		binary.LittleEndian.PutUint32(b[4*(i+1):], uint32(a))
	}
	return string(b)
}

// intern returns the canonical term for (sym, args), allocating it if
// no structurally equal term exists yet.
func (p *Pool) intern(sym Symbol, args []Term, srt Sort) Term {
	key := signature(sym, args)
	if t, ok := p.cache[key]; ok {
		return t
	}
	var owned []Term
	if len(args) > 0 {
		owned = make([]Term, len(args))
		copy(owned, args)
	}
	t := Term(len(p.terms))
	p.terms = append(p.terms, Pterm{Symbol: sym, Args: owned, Sort: srt})
	p.cache[key] = t
	return t
}

func (p *Pool) checkTerm(t Term) {
	invariant.Check(t.IsValid() && int(t) < len(p.terms), "unknown term handle %d", t)
}

// Bool returns the Boolean sort.
func (p *Pool) Bool() Sort {
	return p.boolSort
}

// DeclareSort declares an uninterpreted sort. Declaring the same name
// twice returns the same sort.
func (p *Pool) DeclareSort(name string) Sort {
	if s, ok := p.sortNames[name]; ok {
		invariant.Check(p.sorts[s].kind == sortUninterpreted, "sort %q is built in", name)
		return s
	}
	return p.newSort(sortInfo{name: name, kind: sortUninterpreted})
}

// ArraySort returns the sort of arrays from index to elem.
func (p *Pool) ArraySort(index, elem Sort) Sort {
	key := [2]Sort{index, elem}
	if s, ok := p.arraySorts[key]; ok {
		return s
	}
	name := "(Array " + p.SortName(index) + " " + p.SortName(elem) + ")"
	s := p.newSort(sortInfo{name: name, kind: sortArray, index: index, elem: elem})
	p.arraySorts[key] = s
	return s
}

// SortName returns the printable name of s.
func (p *Pool) SortName(s Sort) string {
	return p.sorts[s].name
}

// IndexSort and ElemSort return the components of an array sort.
func (p *Pool) IndexSort(s Sort) Sort { return p.sorts[s].index }
func (p *Pool) ElemSort(s Sort) Sort  { return p.sorts[s].elem }

func (p *Pool) declareNullary(name string, kind Kind, srt Sort) Symbol {
	if s, ok := p.symbolNames[name]; ok {
		info := p.symbols[s]
		invariant.Check(info.kind == kind && info.ret == srt && len(info.args) == 0,
			"symbol %q redeclared with a different signature", name)
		return s
	}
	return p.newSymbol(symbolInfo{name: name, kind: kind, ret: srt})
}

// MkVar returns the free variable called name of sort srt.
func (p *Pool) MkVar(name string, srt Sort) Term {
	sym := p.declareNullary(name, KindVar, srt)
	return p.intern(sym, nil, srt)
}

// MkConst returns the value constant called name of sort srt. Distinct
// constants of one sort denote distinct values.
func (p *Pool) MkConst(name string, srt Sort) Term {
	sym := p.declareNullary(name, KindConst, srt)
	return p.intern(sym, nil, srt)
}

// DeclareFun declares an uninterpreted function (or, with a Boolean
// return sort, an uninterpreted predicate).
func (p *Pool) DeclareFun(name string, args []Sort, ret Sort) Symbol {
	if s, ok := p.symbolNames[name]; ok {
		info := p.symbols[s]
		same := info.kind == KindUF && info.ret == ret && len(info.args) == len(args)
		for i := 0; same && i < len(args); i++ {
			same = info.args[i] == args[i]
		}
		invariant.Check(same, "function %q redeclared with a different signature", name)
		return s
	}
	owned := make([]Sort, len(args))
	copy(owned, args)
	return p.newSymbol(symbolInfo{name: name, kind: KindUF, args: owned, ret: ret})
}

// MkApp applies an uninterpreted function symbol. Every argument is
// recorded as appearing inside an uninterpreted application; for a
// negated argument its purified core is recorded too, so that the core
// receives congruence identity before its negation.
func (p *Pool) MkApp(sym Symbol, args ...Term) Term {
	info := p.symbols[sym]
	invariant.Check(info.kind == KindUF, "symbol %q is not uninterpreted", info.name)
	invariant.Check(len(args) == len(info.args), "%q expects %d arguments, got %d", info.name, len(info.args), len(args))
	for i, a := range args {
		p.checkTerm(a)
		invariant.Check(p.terms[a].Sort == info.args[i], "argument %d of %q has sort %s", i, info.name, p.SortName(p.terms[a].Sort))
	}
	if len(args) == 0 {
		return p.intern(sym, nil, info.ret)
	}
	for _, a := range args {
		p.inUF[a] = struct{}{}
		for p.IsNot(a) {
			a = p.terms[a].Args[0]
			p.inUF[a] = struct{}{}
		}
	}
	return p.intern(sym, args, info.ret)
}

// True returns the term true.
func (p *Pool) True() Term { return p.termTrue }

// False returns the term false.
func (p *Pool) False() Term { return p.termFalse }

// MkNot returns the negation of t. Negations of true and false are
// folded; a double negation is kept as written.
func (p *Pool) MkNot(t Term) Term {
	p.checkTerm(t)
	invariant.Check(p.HasSortBool(t), "negating non-Boolean term %s", p.String(t))
	switch t {
	case p.termTrue:
		return p.termFalse
	case p.termFalse:
		return p.termTrue
	}
	return p.intern(p.symNot, []Term{t}, p.boolSort)
}

// MkAnd returns the conjunction of args with true dropped, duplicates
// removed and false absorbing.
func (p *Pool) MkAnd(args ...Term) Term {
	return p.mkJunction(p.symAnd, p.termTrue, p.termFalse, args)
}

// MkOr returns the disjunction of args with false dropped, duplicates
// removed and true absorbing.
func (p *Pool) MkOr(args ...Term) Term {
	return p.mkJunction(p.symOr, p.termFalse, p.termTrue, args)
}

func (p *Pool) mkJunction(sym Symbol, neutral, absorbing Term, args []Term) Term {
	kept := make([]Term, 0, len(args))
	seen := make(map[Term]struct{}, len(args))
	for _, a := range args {
		p.checkTerm(a)
		invariant.Check(p.HasSortBool(a), "non-Boolean operand %s", p.String(a))
		switch a {
		case neutral:
			continue
		case absorbing:
			return absorbing
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		kept = append(kept, a)
	}
	switch len(kept) {
	case 0:
		return neutral
	case 1:
		return kept[0]
	}
	return p.intern(sym, kept, p.boolSort)
}

// MkImplies returns (=> a b).
func (p *Pool) MkImplies(a, b Term) Term {
	p.checkTerm(a)
	p.checkTerm(b)
	invariant.Check(p.HasSortBool(a) && p.HasSortBool(b), "non-Boolean implication")
	return p.intern(p.symImplies, []Term{a, b}, p.boolSort)
}

// MkEq returns the equality of a and b. Arguments are ordered by handle
// so that a = b and b = a are the same term.
func (p *Pool) MkEq(a, b Term) Term {
	p.checkTerm(a)
	p.checkTerm(b)
	invariant.Check(p.terms[a].Sort == p.terms[b].Sort, "equality between sorts %s and %s",
		p.SortName(p.terms[a].Sort), p.SortName(p.terms[b].Sort))
	if a == b {
		return p.termTrue
	}
	if b < a {
		a, b = b, a
	}
	return p.intern(p.symEq, []Term{a, b}, p.boolSort)
}

// MkDistinct returns (distinct args...). Fewer than two arguments give
// true, a repeated argument gives false.
func (p *Pool) MkDistinct(args ...Term) Term {
	if len(args) < 2 {
		return p.termTrue
	}
	sorted := make([]Term, len(args))
	copy(sorted, args)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i, a := range sorted {
		p.checkTerm(a)
		invariant.Check(p.terms[a].Sort == p.terms[sorted[0]].Sort, "distinct over mixed sorts")
		if i > 0 && sorted[i-1] == a {
			return p.termFalse
		}
	}
	return p.intern(p.symDistinct, sorted, p.boolSort)
}

// MkSelect returns (select arr index).
func (p *Pool) MkSelect(arr, index Term) Term {
	p.checkTerm(arr)
	p.checkTerm(index)
	as := p.terms[arr].Sort
	invariant.Check(p.arrays, "arrays are not enabled")
	invariant.Check(p.IsArraySort(as), "select from non-array %s", p.String(arr))
	invariant.Check(p.sorts[as].index == p.terms[index].Sort, "select index sort mismatch")
	return p.intern(p.symSelect, []Term{arr, index}, p.sorts[as].elem)
}

// MkStore returns (store arr index value).
func (p *Pool) MkStore(arr, index, value Term) Term {
	p.checkTerm(arr)
	p.checkTerm(index)
	p.checkTerm(value)
	as := p.terms[arr].Sort
	invariant.Check(p.arrays, "arrays are not enabled")
	invariant.Check(p.IsArraySort(as), "store into non-array %s", p.String(arr))
	invariant.Check(p.sorts[as].index == p.terms[index].Sort, "store index sort mismatch")
	invariant.Check(p.sorts[as].elem == p.terms[value].Sort, "store value sort mismatch")
	return p.intern(p.symStore, []Term{arr, index, value}, as)
}

// MkConstArray returns the array of sort arraySort mapping every index
// to value.
func (p *Pool) MkConstArray(arraySort Sort, value Term) Term {
	p.checkTerm(value)
	invariant.Check(p.arrays, "arrays are not enabled")
	invariant.Check(p.IsArraySort(arraySort), "constant array of non-array sort")
	invariant.Check(p.sorts[arraySort].elem == p.terms[value].Sort, "constant array value sort mismatch")
	sym, ok := p.constArrays[arraySort]
	if !ok {
		sym = p.newSymbol(symbolInfo{name: "const", kind: KindConstArray, args: []Sort{p.sorts[arraySort].elem}, ret: arraySort})
		p.constArrays[arraySort] = sym
	}
	return p.intern(sym, []Term{value}, arraySort)
}

// Rebuild returns the term with the head of t applied to args, going
// through the canonicalising constructor for the head's kind.
func (p *Pool) Rebuild(t Term, args []Term) Term {
	pt := p.Pterm(t)
	switch p.symbols[pt.Symbol].kind {
	case KindNot:
		return p.MkNot(args[0])
	case KindAnd:
		return p.MkAnd(args...)
	case KindOr:
		return p.MkOr(args...)
	case KindImplies:
		return p.MkImplies(args[0], args[1])
	case KindEq:
		return p.MkEq(args[0], args[1])
	case KindDistinct:
		return p.MkDistinct(args...)
	case KindSelect:
		return p.MkSelect(args[0], args[1])
	case KindStore:
		return p.MkStore(args[0], args[1], args[2])
	case KindConstArray:
		return p.MkConstArray(pt.Sort, args[0])
	case KindUF:
		return p.MkApp(pt.Symbol, args...)
	}
	return t
}
