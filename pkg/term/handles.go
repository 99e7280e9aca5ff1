package term

// Sort identifies a sort within a Pool.
type Sort uint32

// Symbol identifies a function, predicate or constant symbol within a
// Pool.
type Symbol uint32

// Term identifies a hash-consed term within a Pool. Structurally
// equal terms always share one Term value.
type Term uint32

// Invalid handle constants (zero is sentinel).
const (
	NoSort   Sort   = 0
	NoSymbol Symbol = 0
	NoTerm   Term   = 0
)

// IsValid returns true if the handle is valid (non-zero).
func (s Sort) IsValid() bool   { return s != NoSort }
func (s Symbol) IsValid() bool { return s != NoSymbol }
func (t Term) IsValid() bool   { return t != NoTerm }

// Kind classifies a symbol. It is decided once, when the symbol is
// declared, and never changes.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindTrue
	KindFalse
	KindNot
	KindAnd
	KindOr
	KindImplies
	KindEq
	KindDistinct
	KindSelect
	KindStore
	KindConstArray
	KindVar
	KindConst
	KindUF
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindTrue:       "true",
	KindFalse:      "false",
	KindNot:        "not",
	KindAnd:        "and",
	KindOr:         "or",
	KindImplies:    "=>",
	KindEq:         "=",
	KindDistinct:   "distinct",
	KindSelect:     "select",
	KindStore:      "store",
	KindConstArray: "const",
	KindVar:        "var",
	KindConst:      "const",
	KindUF:         "uf",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Pterm is the read-only view of a term: its head symbol, its ordered
// children and its sort. Callers must not modify Args.
type Pterm struct {
	Symbol Symbol
	Args   []Term
	Sort   Sort
}
