// Package solver wires the term pool, the theory plugin, the egraph,
// the term mapping and the SAT search into one solving session.
package solver

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xgqt/opensmt/internal/egraph"
	"github.com/xgqt/opensmt/internal/invariant"
	"github.com/xgqt/opensmt/internal/logging"
	"github.com/xgqt/opensmt/internal/sat"
	"github.com/xgqt/opensmt/internal/theory"
	"github.com/xgqt/opensmt/pkg/config"
	"github.com/xgqt/opensmt/pkg/constraints"
	"github.com/xgqt/opensmt/pkg/model"
	pkgsolver "github.com/xgqt/opensmt/pkg/solver"
	"github.com/xgqt/opensmt/pkg/term"
)

type Session struct {
	id      string
	pool    *term.Pool
	cfg     *config.Config
	frames  *theory.FrameStore
	plugin  theory.Plugin
	egraph  *egraph.Store
	termMap *sat.TermMapping
	sat     *sat.Solver
	tracer  sat.Tracer
	log     logr.Logger
}

var _ pkgsolver.Solver = &Session{}

type Option func(s *Session)

func WithLogger(l logr.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithTracer replaces the tracer that reports every search outcome.
func WithTracer(t sat.Tracer) Option {
	return func(s *Session) {
		s.tracer = t
	}
}

// NewSession returns a session over pool. The logic of cfg must agree
// with the theories enabled on pool.
func NewSession(pool *term.Pool, cfg *config.Config, options ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Arrays() != pool.HasArrays() {
		return nil, errors.Errorf("logic %s does not match a pool with arrays=%t", cfg.Logic, pool.HasArrays())
	}

	s := &Session{
		id:     uuid.NewString(),
		pool:   pool,
		cfg:    cfg,
		frames: theory.NewFrameStore(),
		log:    logr.Discard(),
	}
	for _, option := range options {
		option(s)
	}
	s.log = s.log.WithValues("session", s.id)
	if s.tracer == nil {
		s.tracer = sat.LogrTracer{Log: s.log.V(1)}
	}

	s.plugin = theory.New(pool, theory.WithKeepPartitions(cfg.KeepPartitions), theory.WithLogger(s.log))
	s.egraph = egraph.NewStore(pool, egraph.WithLogger(s.log), egraph.WithCapacity(cfg.ArenaCapacity))
	s.termMap = sat.NewTermMapping(pool, sat.WithPedanticDebug(cfg.PedanticDebug), sat.WithCapacity(cfg.ArenaCapacity))

	var err error
	s.sat, err = sat.NewSolver(
		sat.WithTermMapping(s.termMap),
		sat.WithTracer(s.tracer),
		sat.WithLogger(s.log),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) Assert(formula term.Term) error {
	if !s.pool.HasSortBool(formula) {
		return errors.Errorf("asserting non-Boolean term %s", s.pool.String(formula))
	}
	s.frames.Add(formula)
	return nil
}

// AssertVariables asserts the formula of every constraint of vars. An
// identifier that names a non-Boolean symbol of the pool is an error.
func (s *Session) AssertVariables(vars ...constraints.Variable) (err error) {
	defer invariant.Recover(&err)
	for _, v := range vars {
		for _, c := range v.Constraints() {
			f, err := constraints.Formula(s.pool, v.Identifier(), c)
			if err != nil {
				return err
			}
			s.log.V(1).Info("constraint asserted", "constraint", constraints.ConstraintMessage(v.Identifier(), c))
			if err := s.Assert(f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) AssertGenerated(ctx context.Context, g constraints.Generator) error {
	vars, err := g.GetVariables(ctx, s.pool)
	if err != nil {
		return err
	}
	return s.AssertVariables(vars...)
}

func (s *Session) Push() int {
	return s.frames.Push()
}

// Solve simplifies every new frame, registers the terms of the
// simplified roots and decides their Boolean abstraction. A broken
// internal invariant is reported as an error instead of a panic.
func (s *Session) Solve(ctx context.Context) (solution pkgsolver.Solution, err error) {
	ctx, span := otel.Tracer("opensmt").Start(ctx, "opensmt.Solve",
		trace.WithAttributes(
			attribute.String("session", s.id),
			attribute.String("logic", string(s.cfg.Logic)),
			attribute.Int("frames", s.frames.Len()),
		),
	)
	defer span.End()
	defer func() {
		var ns sat.NotSatisfiable
		switch {
		case err == nil:
			span.SetAttributes(attribute.Bool("satisfiable", true))
		case errors.As(err, &ns):
			span.SetAttributes(attribute.Bool("satisfiable", false), attribute.Int("conflicts", len(ns)))
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "solve failed")
		}
	}()
	defer invariant.Recover(&err)

	for i := 0; i < s.frames.Len(); i++ {
		if s.frames.Frame(i).Simplified() {
			continue
		}
		if err := s.plugin.Simplify(s.frames, i); err != nil {
			return nil, errors.Wrapf(err, "simplifying frame %d", i)
		}
	}

	roots := s.frames.Roots()
	s.register(roots)
	span.SetAttributes(
		attribute.Int("roots", len(roots)),
		attribute.Int("enodes", s.egraph.Len()),
		attribute.Int("atoms", len(s.termMap.Terms())),
	)

	if err := s.sat.Solve(ctx, roots...); err != nil {
		return nil, err
	}
	return pkgsolver.Solution(s.sat.Assignment()), nil
}

// register gives enodes to every term that needs theory identity,
// children first, and maps the Boolean ones to SAT variables.
func (s *Session) register(roots []term.Term) {
	term.Visit(s.pool, func(t term.Term) {
		if s.egraph.HasTerm(t) || !s.egraph.NeedsEnode(t) {
			return
		}
		var created []egraph.Pair
		if s.pool.IsNot(t) {
			// The core had no enode of its own, so the negation is
			// registered directly.
			e := s.egraph.AddTerm(t, !s.egraph.NeedsRecursiveDefinition(t))
			created = []egraph.Pair{{Term: t, ERef: e}}
		} else {
			created = s.egraph.ConstructTerm(t)
		}
		for _, pair := range created {
			if !s.pool.HasSortBool(pair.Term) {
				continue
			}
			s.termMap.Register(pair.Term)
			s.termMap.MarkTheoryTerm(pair.Term)
		}
	}, roots...)
}

// Assignment returns the truth values of the atoms of the last
// satisfiable Solve, or nil.
func (s *Session) Assignment() map[term.Term]bool {
	return s.sat.Assignment()
}

func (s *Session) ModelBuilder() *model.Builder {
	b := model.NewBuilder(s.pool, model.WithFormalArgPrefix(s.cfg.FormalArgPrefix))
	for t, v := range s.sat.Assignment() {
		if !s.pool.IsVar(t) {
			continue
		}
		val := s.pool.False()
		if v {
			val = s.pool.True()
		}
		b.AddVarValue(t, val)
	}
	return b
}

// Close flushes the logger of the session. The session stays usable.
func (s *Session) Close() error {
	return logging.Sync(s.log)
}

// ID returns the identifier attached to the logs and spans of the
// session.
func (s *Session) ID() string {
	return s.id
}

// Egraph exposes the congruence-closure store of the session.
func (s *Session) Egraph() *egraph.Store {
	return s.egraph
}

// TermMapping exposes the term mapping of the session.
func (s *Session) TermMapping() *sat.TermMapping {
	return s.termMap
}
