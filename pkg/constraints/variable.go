package constraints

import (
	"github.com/xgqt/opensmt/pkg/term"
)

// Identifier values name the Boolean atom behind a Variable.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// Atom returns the Boolean variable of pool named id.
func (id Identifier) Atom(pool *term.Pool) term.Term {
	return pool.MkVar(string(id), pool.Bool())
}

// Variable values are the basic unit of problems understood by this
// package.
type Variable interface {
	// Identifier returns the Identifier that uniquely identifies
	// this Variable among all other Variables in a given
	// problem.
	Identifier() Identifier
	// Constraints returns the set of constraints that apply to
	// this Variable.
	Constraints() []Constraint
}

// AppliedConstraint values compose a single Constraint with the
// Variable it applies to.
type AppliedConstraint struct {
	Variable   Variable
	Constraint Constraint
}

// String implements fmt.Stringer and returns a human-readable message
// representing the receiver.
func (a AppliedConstraint) String() string {
	return ConstraintMessage(a.Variable.Identifier(), a.Constraint)
}

var _ Variable = &BoolVariable{}

// BoolVariable is a simple implementation of Variable
type BoolVariable struct {
	id          Identifier
	constraints []Constraint
}

func (v *BoolVariable) Identifier() Identifier {
	return v.id
}

func (v *BoolVariable) Constraints() []Constraint {
	return v.constraints
}

func (v *BoolVariable) AddConstraint(constraint ...Constraint) {
	v.constraints = append(v.constraints, constraint...)
}

func NewVariable(id Identifier, constraints ...Constraint) *BoolVariable {
	return &BoolVariable{
		id:          id,
		constraints: constraints,
	}
}
