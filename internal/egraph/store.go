// Package egraph holds the congruence-closure node store: one enode
// per term whose identity matters to some theory, plus the term/enode
// lookup tables the equality solver merges over.
package egraph

import (
	"github.com/go-logr/logr"

	"github.com/xgqt/opensmt/internal/invariant"
	"github.com/xgqt/opensmt/pkg/term"
)

// Logic is the part of the term pool the store consumes.
type Logic interface {
	Args(t term.Term) []term.Term
	SymbolOf(t term.Term) term.Symbol
	SortOf(t term.Term) term.Sort
	String(t term.Term) string
	True() term.Term
	False() term.Term
	MkNot(t term.Term) term.Term

	HasArrays() bool
	IsArraySort(s term.Sort) bool
	IsConstant(t term.Term) bool
	IsVar(t term.Term) bool
	IsNot(t term.Term) bool
	HasSortBool(t term.Term) bool
	IsUF(t term.Term) bool
	IsUP(t term.Term) bool
	YieldsSortUninterpreted(t term.Term) bool
	IsTheoryEquality(t term.Term) bool
	IsDisequality(t term.Term) bool
	AppearsInUF(t term.Term) bool
}

// Pair couples a term with the enode created for it.
type Pair struct {
	Term term.Term
	ERef ERef
}

// Store owns the enode arena and the inverse term/enode maps.
type Store struct {
	logic      Logic
	ea         *arena
	termToERef map[term.Term]ERef
	erefToTerm map[ERef]term.Term
	termEnodes []ERef

	distClasses map[term.Term]int
	distIdx     int

	erefTrue  ERef
	erefFalse ERef

	log logr.Logger
}

// Option configures a Store.
type Option func(s *Store)

// WithLogger sets the logger used for registration events.
func WithLogger(l logr.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithCapacity preallocates room for n enodes.
func WithCapacity(n int) Option {
	return func(s *Store) {
		s.ea = newArena(n)
	}
}

// NewStore returns a store in which true and false already have
// enodes.
func NewStore(logic Logic, options ...Option) *Store {
	s := &Store{
		logic:       logic,
		termToERef:  make(map[term.Term]ERef),
		erefToTerm:  make(map[ERef]term.Term),
		distClasses: make(map[term.Term]int),
		log:         logr.Discard(),
	}
	for _, option := range options {
		option(s)
	}
	if s.ea == nil {
		s.ea = newArena(1024)
	}

	t, f := logic.True(), logic.False()
	s.ConstructTerm(t)
	s.ConstructTerm(f)
	s.erefTrue = s.termToERef[t]
	s.erefFalse = s.termToERef[f]
	return s
}

// ERefTrue and ERefFalse return the enodes of the terms true and false.
func (s *Store) ERefTrue() ERef  { return s.erefTrue }
func (s *Store) ERefFalse() ERef { return s.erefFalse }

// NeedsEnode reports whether t requires theory-level identity. The
// checks are ordered and the first match decides.
func (s *Store) NeedsEnode(t term.Term) bool {
	l := s.logic
	switch {
	case l.IsConstant(t):
		return true
	case l.IsVar(t) && !l.HasSortBool(t):
		return true
	case l.IsUF(t) || l.YieldsSortUninterpreted(t):
		return true
	case l.HasArrays() && l.IsArraySort(l.SortOf(t)):
		return true
	case l.IsTheoryEquality(t):
		return true
	case l.AppearsInUF(t):
		return true
	case l.IsUP(t):
		return true
	case l.IsDisequality(t):
		return true
	default:
		return false
	}
}

// NeedsRecursiveDefinition reports whether every child of t needs an
// enode. If some child is invisible to the theories, t is treated as a
// leaf for congruence.
func (s *Store) NeedsRecursiveDefinition(t term.Term) bool {
	for _, ch := range s.logic.Args(t) {
		if !s.NeedsEnode(ch) {
			return false
		}
	}
	return true
}

// AddTerm registers t and returns its enode, creating it if needed.
// Unless ignoreChildren is set every child of t must already have an
// enode; with ignoreChildren the enode has no arguments.
func (s *Store) AddTerm(t term.Term, ignoreChildren bool) ERef {
	if e, ok := s.termToERef[t]; ok {
		return e
	}

	var args []ERef
	if !ignoreChildren {
		children := s.logic.Args(t)
		args = make([]ERef, len(children))
		for i, ch := range children {
			e, ok := s.termToERef[ch]
			invariant.Check(ok, "child %s of %s has no enode", s.logic.String(ch), s.logic.String(t))
			args[i] = e
		}
	}
	e := s.ea.alloc(s.logic.SymbolOf(t), args, t)

	s.termToERef[t] = e
	_, dup := s.erefToTerm[e]
	invariant.Check(!dup, "enode %d already maps to a term", e)
	s.erefToTerm[e] = t
	s.termEnodes = append(s.termEnodes, e)

	s.log.V(1).Info("enode added", "term", s.logic.String(t), "eref", e, "args", len(args))
	return e
}

// ConstructTerm creates the enodes for a newly relevant term and
// returns the created pairs in creation order. For a Boolean term the
// negation gets an enode too when it needs one. A term that already has
// an enode yields nil.
func (s *Store) ConstructTerm(t term.Term) []Pair {
	invariant.Check(s.NeedsEnode(t), "term %s does not need an enode", s.logic.String(t))

	if _, ok := s.termToERef[t]; ok {
		return nil
	}

	var created []Pair
	if s.logic.IsDisequality(t) {
		s.addDistClass(t)
	}

	e := s.AddTerm(t, !s.NeedsRecursiveDefinition(t))
	created = append(created, Pair{Term: t, ERef: e})

	if s.logic.HasSortBool(t) {
		invariant.Check(!s.logic.IsNot(t), "constructing enode for negation %s", s.logic.String(t))
		neg := s.logic.MkNot(t)
		if s.NeedsEnode(neg) {
			created = append(created, Pair{Term: neg, ERef: s.AddTerm(neg, false)})
		}
	}
	return created
}

func (s *Store) addDistClass(t term.Term) {
	s.distClasses[t] = s.distIdx
	s.log.V(1).Info("distinction class added", "term", s.logic.String(t), "index", s.distIdx)
	s.distIdx++
}

// DistClass returns the distinction class index of a registered
// disequality.
func (s *Store) DistClass(t term.Term) (int, bool) {
	i, ok := s.distClasses[t]
	return i, ok
}

// NumDistClasses returns how many distinction classes were allocated.
func (s *Store) NumDistClasses() int {
	return s.distIdx
}

// HasTerm reports whether t has an enode.
func (s *Store) HasTerm(t term.Term) bool {
	_, ok := s.termToERef[t]
	return ok
}

// TermToERef returns the enode of t, or NoERef.
func (s *Store) TermToERef(t term.Term) ERef {
	return s.termToERef[t]
}

// ERefToTerm returns the term owning e.
func (s *Store) ERefToTerm(e ERef) term.Term {
	t, ok := s.erefToTerm[e]
	invariant.Check(ok, "unknown enode %d", e)
	return t
}

// Enode returns the view of e.
func (s *Store) Enode(e ERef) Enode {
	invariant.Check(e.IsValid() && int(e) <= s.ea.len(), "unknown enode %d", e)
	return s.ea.get(e)
}

// TermEnodes returns every enode in creation order.
func (s *Store) TermEnodes() []ERef {
	return s.termEnodes
}

// Len returns the number of enodes.
func (s *Store) Len() int {
	return s.ea.len()
}
