// Package constraints combines constraint generators.
package constraints

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	pkgconstraints "github.com/xgqt/opensmt/pkg/constraints"
	"github.com/xgqt/opensmt/pkg/term"
)

// ConstraintAggregator concatenates the variables of several
// generators. Variables sharing an identifier are merged.
type ConstraintAggregator struct {
	constraintGenerators []pkgconstraints.Generator
}

var _ pkgconstraints.Generator = &ConstraintAggregator{}

func NewConstraintAggregator(constraintGenerators []pkgconstraints.Generator) *ConstraintAggregator {
	return &ConstraintAggregator{
		constraintGenerators: constraintGenerators,
	}
}

func (c *ConstraintAggregator) GetVariables(ctx context.Context, pool *term.Pool) ([]pkgconstraints.Variable, error) {
	var errs error
	byID := make(map[pkgconstraints.Identifier]*pkgconstraints.BoolVariable)
	var vars []pkgconstraints.Variable
	for i, generator := range c.constraintGenerators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		generated, err := generator.GetVariables(ctx, pool)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "generator %d", i))
			continue
		}
		for _, v := range generated {
			merged, ok := byID[v.Identifier()]
			if !ok {
				merged = pkgconstraints.NewVariable(v.Identifier())
				byID[v.Identifier()] = merged
				vars = append(vars, merged)
			}
			merged.AddConstraint(v.Constraints()...)
		}
	}
	if errs != nil {
		return nil, errs
	}
	return vars, nil
}
