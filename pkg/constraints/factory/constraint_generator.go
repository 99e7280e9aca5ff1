package cfactory

import (
	internalconstraints "github.com/xgqt/opensmt/internal/constraints"
	pkgconstraints "github.com/xgqt/opensmt/pkg/constraints"
)

func NewConstraintAggregator(constraintGenerators ...pkgconstraints.Generator) pkgconstraints.Generator {
	return internalconstraints.NewConstraintAggregator(constraintGenerators)
}
