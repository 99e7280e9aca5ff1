package sat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/go-logr/logr"

	"github.com/xgqt/opensmt/pkg/term"
)

var ErrIncomplete = errors.New("cancelled before a solution could be found")

const (
	satisfiable   = 1
	unsatisfiable = -1
	unknown       = 0
)

// Conflict is a root formula that took part in a refutation.
type Conflict struct {
	Term term.Term
	Text string
}

// String implements fmt.Stringer and returns a human-readable message
// representing the receiver.
func (c Conflict) String() string {
	return c.Text
}

type NotSatisfiable []Conflict

func (e NotSatisfiable) Error() string {
	const msg = "formulas not satisfiable"
	if len(e) == 0 {
		return msg
	}
	s := make([]string, len(e))
	for i, a := range e {
		s[i] = a.String()
	}
	return fmt.Sprintf("%s: %s", msg, strings.Join(s, ", "))
}

// Solver decides the Boolean abstraction of a set of root formulas.
type Solver struct {
	g       *gini.Gini
	termMap *TermMapping
	tracer  Tracer
	log     logr.Logger
	poll    time.Duration
	model   map[term.Term]bool
}

type Option func(s *Solver) error

func WithTermMapping(m *TermMapping) Option {
	return func(s *Solver) error {
		s.termMap = m
		return nil
	}
}

func WithTracer(t Tracer) Option {
	return func(s *Solver) error {
		s.tracer = t
		return nil
	}
}

func WithLogger(l logr.Logger) Option {
	return func(s *Solver) error {
		s.log = l
		return nil
	}
}

// WithPollInterval sets how often a running search checks for context
// cancellation.
func WithPollInterval(d time.Duration) Option {
	return func(s *Solver) error {
		if d <= 0 {
			return fmt.Errorf("poll interval must be positive, got %s", d)
		}
		s.poll = d
		return nil
	}
}

var defaults = []Option{
	func(s *Solver) error {
		if s.termMap == nil {
			return errors.New("a term mapping is required")
		}
		return nil
	},
	func(s *Solver) error {
		if s.tracer == nil {
			s.tracer = DefaultTracer{}
		}
		return nil
	},
	func(s *Solver) error {
		if s.poll == 0 {
			s.poll = 10 * time.Millisecond
		}
		return nil
	},
}

func NewSolver(options ...Option) (*Solver, error) {
	s := Solver{g: gini.New(), log: logr.Discard()}
	for _, option := range append(options, defaults...) {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// Solve decides the conjunction of roots. It returns nil if the Boolean
// abstraction is satisfiable, NotSatisfiable listing the roots involved
// in the refutation, or ErrIncomplete if ctx ends first.
func (s *Solver) Solve(ctx context.Context, roots ...term.Term) (err error) {
	defer func() {
		// This likely indicates a bug, so discard whatever
		// return values were produced.
		if derr := s.termMap.Error(); derr != nil {
			s.model = nil
			err = derr
		}
	}()

	assumptions := make([]z.Lit, len(roots))
	for i, root := range roots {
		assumptions[i] = s.termMap.Encode(root)
	}

	// teach the new part of the circuit to the solver
	s.termMap.AddConstraints(s.g, assumptions...)
	if ctx.Err() != nil {
		s.model = nil
		return ErrIncomplete
	}
	s.g.Assume(assumptions...)

	outcome := s.search(ctx)
	s.log.V(1).Info("search finished", "outcome", outcome, "roots", len(roots))

	switch outcome {
	case satisfiable:
		s.model = s.termMap.Assignment(s.g)
		s.tracer.Trace(position{roots: s.texts(roots), model: s.model})
		return nil
	case unsatisfiable:
		s.model = nil
		conflicts := s.conflicts(roots, assumptions)
		s.tracer.Trace(position{roots: s.texts(roots), conflicts: conflicts})
		return NotSatisfiable(conflicts)
	}
	s.model = nil
	return ErrIncomplete
}

// search runs the solver in the background so that ctx can stop it.
func (s *Solver) search(ctx context.Context) int {
	running := s.g.GoSolve()
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		if result, done := running.Test(); done {
			return result
		}
		select {
		case <-ctx.Done():
			return running.Stop()
		case <-ticker.C:
		}
	}
}

func (s *Solver) conflicts(roots []term.Term, assumptions []z.Lit) []Conflict {
	byLit := make(map[z.Lit]term.Term, len(roots))
	for i, m := range assumptions {
		byLit[m] = roots[i]
	}
	whys := s.g.Why(nil)
	cs := make([]Conflict, 0, len(whys))
	seen := make(map[term.Term]struct{}, len(whys))
	for _, why := range whys {
		root, ok := byLit[why]
		if !ok {
			continue
		}
		if _, dup := seen[root]; dup {
			continue
		}
		seen[root] = struct{}{}
		cs = append(cs, Conflict{Term: root, Text: s.termMap.pool.String(root)})
	}
	return cs
}

func (s *Solver) texts(ts []term.Term) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = s.termMap.pool.String(t)
	}
	return out
}

// Assignment returns the truth value of every registered atom from the
// last satisfiable Solve, or nil.
func (s *Solver) Assignment() map[term.Term]bool {
	return s.model
}
