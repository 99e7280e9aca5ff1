package theory

import (
	"github.com/pkg/errors"

	"github.com/xgqt/opensmt/internal/invariant"
	"github.com/xgqt/opensmt/pkg/term"
)

// ArrayTheory is the plugin for arrays with uninterpreted functions.
// Besides distinct normalisation it instantiates the read-over-write
// axiom for every store written in the frame.
type ArrayTheory struct {
	base
}

var _ Plugin = &ArrayTheory{}

func NewArrayTheory(pool *term.Pool, options ...Option) *ArrayTheory {
	return &ArrayTheory{base: newBase(pool, options)}
}

func (*ArrayTheory) Name() string {
	return "array"
}

func (a *ArrayTheory) Simplify(frames *FrameStore, curr int) error {
	// TODO: fold select over store on the same index instead of only
	// adding the axiom.
	f := frames.Frame(curr)
	if f.simplified {
		return nil
	}
	if a.KeepPartitions() {
		return errors.Wrapf(ErrPartitionsUnsupported, "%s theory", a.Name())
	}
	rewritten := term.RewriteDistincts(a.pool, frames.Collate(a.pool, curr))
	rewritten = InstantiateReadOverStore(a.pool, rewritten)
	f.Root = rewritten
	f.simplified = true
	a.log.V(1).Info("frame simplified", "theory", a.Name(), "frame", curr)
	return nil
}

// CollectStores returns every store term reachable from fla, each
// exactly once.
func CollectStores(pool *term.Pool, fla term.Term) []term.Term {
	return term.Collect(pool, fla, pool.IsArrayStore)
}

// InstantiateReadOverStore conjoins fla with
// (= (select (store a i v) i) v) for every store (store a i v) in fla.
func InstantiateReadOverStore(pool *term.Pool, fla term.Term) term.Term {
	stores := CollectStores(pool, fla)
	axioms := make([]term.Term, 0, len(stores)+1)
	for _, store := range stores {
		invariant.Check(pool.IsArrayStore(store), "%s is not a store", pool.String(store))
		args := pool.Args(store)
		index, value := args[1], args[2]
		axioms = append(axioms, pool.MkEq(pool.MkSelect(store, index), value))
	}
	axioms = append(axioms, fla)
	return pool.MkAnd(axioms...)
}
