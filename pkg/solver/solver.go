// Package solver is the public face of a solving session.
package solver

import (
	"context"

	"github.com/xgqt/opensmt/pkg/constraints"
	"github.com/xgqt/opensmt/pkg/model"
	"github.com/xgqt/opensmt/pkg/term"
)

// Solution maps every Boolean atom of the last satisfiable run to its
// truth value.
type Solution map[term.Term]bool

// Solver decides formulas asserted over a term pool.
type Solver interface {
	// Assert adds a Boolean formula to the current frame.
	Assert(formula term.Term) error
	// AssertVariables adds the formulas of every constraint of vars.
	AssertVariables(vars ...constraints.Variable) error
	// AssertGenerated asserts the variables produced by g.
	AssertGenerated(ctx context.Context, g constraints.Generator) error
	// Push opens a new frame and returns its index.
	Push() int
	// Solve decides every frame asserted so far.
	Solve(ctx context.Context) (Solution, error)
	// ModelBuilder returns a builder holding the values of the
	// Boolean variables of the last satisfiable run.
	ModelBuilder() *model.Builder
	// Close flushes buffered logs.
	Close() error
}
