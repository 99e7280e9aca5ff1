// Package theory holds the theory plugins that rewrite a frame before
// its formulas reach the egraph and the SAT layer.
package theory

import (
	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"github.com/xgqt/opensmt/pkg/term"
)

// ErrPartitionsUnsupported is returned by plugins whose rewriting
// loses partition provenance when partition tracking is requested.
var ErrPartitionsUnsupported = errors.New("partition tracking is not supported")

// Plugin rewrites the formulas of a frame. Simplify is called at most
// once per frame, is deterministic, and only adds logical content.
type Plugin interface {
	Name() string
	KeepPartitions() bool
	Simplify(frames *FrameStore, curr int) error
}

// Option configures a plugin.
type Option func(b *base)

// WithKeepPartitions requests partition tracking.
func WithKeepPartitions(keep bool) Option {
	return func(b *base) {
		b.keepPartitions = keep
	}
}

// WithLogger sets the plugin logger.
func WithLogger(l logr.Logger) Option {
	return func(b *base) {
		b.log = l
	}
}

type base struct {
	pool           *term.Pool
	keepPartitions bool
	log            logr.Logger
}

func newBase(pool *term.Pool, options []Option) base {
	b := base{pool: pool, log: logr.Discard()}
	for _, option := range options {
		option(&b)
	}
	return b
}

func (b *base) KeepPartitions() bool {
	return b.keepPartitions
}

// UFTheory is the plugin for uninterpreted functions: it only
// normalises distinct terms.
type UFTheory struct {
	base
}

var _ Plugin = &UFTheory{}

func NewUFTheory(pool *term.Pool, options ...Option) *UFTheory {
	return &UFTheory{base: newBase(pool, options)}
}

func (*UFTheory) Name() string {
	return "uf"
}

func (u *UFTheory) Simplify(frames *FrameStore, curr int) error {
	f := frames.Frame(curr)
	if f.simplified {
		return nil
	}
	f.Root = term.RewriteDistincts(u.pool, frames.Collate(u.pool, curr))
	f.simplified = true
	u.log.V(1).Info("frame simplified", "theory", u.Name(), "frame", curr)
	return nil
}

// New returns the plugin for the logic of pool: the array theory when
// arrays are enabled, the UF theory otherwise.
func New(pool *term.Pool, options ...Option) Plugin {
	if pool.HasArrays() {
		return NewArrayTheory(pool, options...)
	}
	return NewUFTheory(pool, options...)
}
