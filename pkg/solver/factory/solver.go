package factory

import (
	"github.com/xgqt/opensmt/internal/logging"
	internalsolver "github.com/xgqt/opensmt/internal/solver"
	"github.com/xgqt/opensmt/pkg/config"
	pkgsolver "github.com/xgqt/opensmt/pkg/solver"
	"github.com/xgqt/opensmt/pkg/term"
)

// NewSolver returns a solving session over pool configured by cfg. A
// nil cfg selects config.Default().
func NewSolver(pool *term.Pool, cfg *config.Config) (pkgsolver.Solver, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	log, err := logging.FromConfig(cfg.Log.Enabled, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	return internalsolver.NewSession(pool, cfg, internalsolver.WithLogger(log.WithName("opensmt")))
}

// NewPool returns an empty term pool for the logic of cfg.
func NewPool(cfg *config.Config) *term.Pool {
	if cfg == nil {
		cfg = config.Default()
	}
	var options []term.Option
	if cfg.Arrays() {
		options = append(options, term.WithArrays())
	}
	if cfg.ArenaCapacity > 0 {
		options = append(options, term.WithCapacity(cfg.ArenaCapacity))
	}
	return term.NewPool(options...)
}
