package egraph

import (
	"github.com/xgqt/opensmt/pkg/term"
)

// ERef identifies an enode in the store's arena. References stay valid
// for the lifetime of the store.
type ERef uint32

// NoERef is the invalid enode reference.
const NoERef ERef = 0

// IsValid returns true if the reference is valid (non-zero).
func (e ERef) IsValid() bool { return e != NoERef }

// Enode is the read-only view of a congruence node. Callers must not
// modify Args.
type Enode struct {
	Symbol term.Symbol
	Args   []ERef
	Term   term.Term
}

type enode struct {
	sym      term.Symbol
	t        term.Term
	argStart uint32
	nargs    uint32
}

// arena is a monotonic allocator for enodes. Nodes are never freed
// individually; the whole arena goes away with the store.
type arena struct {
	nodes []enode
	args  []ERef
}

func newArena(capacity int) *arena {
	if capacity < 1 {
		capacity = 1
	}
	return &arena{
		nodes: make([]enode, 1, capacity+1),
		args:  make([]ERef, 0, 2*capacity),
	}
}

func (a *arena) alloc(sym term.Symbol, args []ERef, t term.Term) ERef {
	e := ERef(len(a.nodes))
	a.nodes = append(a.nodes, enode{
		sym:      sym,
		t:        t,
		argStart: uint32(len(a.args)),
		nargs:    uint32(len(args)),
	})
	a.args = append(a.args, args...)
	return e
}

func (a *arena) len() int {
	return len(a.nodes) - 1
}

func (a *arena) get(e ERef) Enode {
	n := a.nodes[e]
	end := n.argStart + n.nargs
	return Enode{
		Symbol: n.sym,
		Args:   a.args[n.argStart:end:end],
		Term:   n.t,
	}
}
