package constraints

import (
	"context"

	"github.com/xgqt/opensmt/pkg/term"
)

// Generator generates solver variables over the atoms of pool.
type Generator interface {
	GetVariables(ctx context.Context, pool *term.Pool) ([]Variable, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, pool *term.Pool) ([]Variable, error)

func (f GeneratorFunc) GetVariables(ctx context.Context, pool *term.Pool) ([]Variable, error) {
	return f(ctx, pool)
}
