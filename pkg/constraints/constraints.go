// Package constraints builds Boolean formulas over named atoms from
// high-level constraints, for callers that describe a problem per
// variable instead of writing terms by hand.
package constraints

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/xgqt/opensmt/pkg/term"
)

// Constraint implementations limit the circumstances under which a
// particular Variable can be true.
type Constraint struct {
	ConstraintType string
	Properties     map[string]interface{}
}

// Mandatory returns a Constraint that will permit only models in
// which a particular Variable is true.
func Mandatory() Constraint {
	return Constraint{
		ConstraintType: "mandatory",
	}
}

// Prohibited returns a Constraint that will reject any model in which
// a particular Variable is true.
func Prohibited() Constraint {
	return Constraint{
		ConstraintType: "prohibited",
	}
}

func Not() Constraint {
	return Constraint{
		ConstraintType: "not",
	}
}

// Dependency returns a Constraint that will only permit a given
// Variable to be true on the condition that at least one of the
// Variables identified by the given Identifiers is true as well.
func Dependency(ids ...Identifier) Constraint {
	return Constraint{
		ConstraintType: "dependency",
		Properties:     map[string]interface{}{"ids": ids},
	}
}

// Conflict returns a Constraint that will permit either the
// constrained Variable, the Variable identified by the given
// Identifier, or neither, but not both.
func Conflict(id Identifier) Constraint {
	return Constraint{
		ConstraintType: "conflict",
		Properties:     map[string]interface{}{"id": id},
	}
}

// AtMost returns a Constraint that forbids more than n of the
// Variables identified by the given Identifiers to be true.
func AtMost(n int, ids ...Identifier) Constraint {
	return Constraint{
		ConstraintType: "atmost",
		Properties:     map[string]interface{}{"n": n, "ids": ids},
	}
}

// Or returns a constraints in the form subject OR identifier
// if isSubjectNegated = true, ~subject OR identifier
// if isOperandNegated = true, subject OR ~identifier
// if both are true: ~subject OR ~identifier
func Or(identifier Identifier, isSubjectNegated bool, isOperandNegated bool) Constraint {
	return Constraint{
		ConstraintType: "or",
		Properties:     map[string]interface{}{"id": identifier, "issubjectnegated": isSubjectNegated, "isoperandnegated": isOperandNegated},
	}
}

// Formula returns the formula expressing c for the variable subject.
// A Constraint whose properties do not match its type is an error.
func Formula(pool *term.Pool, subject Identifier, c Constraint) (term.Term, error) {
	v := subject.Atom(pool)
	malformed := func() error {
		return errors.Errorf("malformed %s constraint on %s", c.ConstraintType, subject)
	}
	switch c.ConstraintType {
	case "mandatory":
		return v, nil
	case "prohibited", "not":
		return pool.MkNot(v), nil
	case "dependency":
		ids, ok := c.Properties["ids"].([]Identifier)
		if !ok {
			return term.NoTerm, malformed()
		}
		return pool.MkImplies(v, pool.MkOr(atoms(pool, ids)...)), nil
	case "conflict":
		id, ok := c.Properties["id"].(Identifier)
		if !ok {
			return term.NoTerm, malformed()
		}
		return pool.MkNot(pool.MkAnd(v, id.Atom(pool))), nil
	case "atmost":
		n, ok := c.Properties["n"].(int)
		ids, idsOk := c.Properties["ids"].([]Identifier)
		if !ok || !idsOk {
			return term.NoTerm, malformed()
		}
		return atMost(pool, n, atoms(pool, ids)), nil
	case "or":
		id, ok := c.Properties["id"].(Identifier)
		subjectNegated, sok := c.Properties["issubjectnegated"].(bool)
		operandNegated, ook := c.Properties["isoperandnegated"].(bool)
		if !ok || !sok || !ook {
			return term.NoTerm, malformed()
		}
		other := id.Atom(pool)
		if subjectNegated {
			v = pool.MkNot(v)
		}
		if operandNegated {
			other = pool.MkNot(other)
		}
		return pool.MkOr(v, other), nil
	}
	return term.NoTerm, errors.Errorf("unknown constraint type %q on %s", c.ConstraintType, subject)
}

func atoms(pool *term.Pool, ids []Identifier) []term.Term {
	ts := make([]term.Term, len(ids))
	for i, id := range ids {
		ts[i] = id.Atom(pool)
	}
	return ts
}

// atMost forbids every subset of n+1 atoms from being true together.
// The encoding grows with the binomial coefficient, so it is meant for
// small candidate sets.
func atMost(pool *term.Pool, n int, ts []term.Term) term.Term {
	if n < 0 {
		return pool.False()
	}
	var clauses []term.Term
	subset := make([]term.Term, 0, n+1)
	var choose func(from int)
	choose = func(from int) {
		if len(subset) == n+1 {
			clauses = append(clauses, pool.MkNot(pool.MkAnd(subset...)))
			return
		}
		for i := from; i <= len(ts)-(n+1-len(subset)); i++ {
			subset = append(subset, ts[i])
			choose(i + 1)
			subset = subset[:len(subset)-1]
		}
	}
	choose(0)
	return pool.MkAnd(clauses...)
}

func ConstraintMessage(subject Identifier, constraint Constraint) string {
	switch constraint.ConstraintType {
	case "mandatory":
		return fmt.Sprintf("%s is mandatory", subject)
	case "prohibited", "not":
		return fmt.Sprintf("%s is prohibited", subject)
	case "dependency":
		ids, _ := constraint.Properties["ids"].([]Identifier)
		if len(ids) == 0 {
			return fmt.Sprintf("%s has a dependency without any candidates to satisfy it", subject)
		}
		return fmt.Sprintf("%s requires at least one of %s", subject, join(ids))
	case "conflict":
		id, _ := constraint.Properties["id"].(Identifier)
		return fmt.Sprintf("%s conflicts with %s", subject, id)
	case "atmost":
		n, _ := constraint.Properties["n"].(int)
		ids, _ := constraint.Properties["ids"].([]Identifier)
		return fmt.Sprintf("%s permits at most %d of %s", subject, n, join(ids))
	case "or":
		id, _ := constraint.Properties["id"].(Identifier)
		lhs, rhs := subject.String(), id.String()
		if negated, _ := constraint.Properties["issubjectnegated"].(bool); negated {
			lhs = "not " + lhs
		}
		if negated, _ := constraint.Properties["isoperandnegated"].(bool); negated {
			rhs = "not " + rhs
		}
		return fmt.Sprintf("%s or %s", lhs, rhs)
	}
	return ""
}

func join(ids []Identifier) string {
	s := make([]string, len(ids))
	for i, each := range ids {
		s[i] = string(each)
	}
	return strings.Join(s, ", ")
}
