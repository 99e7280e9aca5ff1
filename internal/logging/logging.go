// Package logging builds the structured logger used by solving
// sessions.
package logging

import (
	"errors"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
)

// New returns a logr.Logger backed by zap. Development mode logs in a
// human-readable console format down to debug level.
func New(development bool) (logr.Logger, error) {
	var (
		zl  *zap.Logger
		err error
	)
	if development {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}

// FromConfig returns a discarding logger unless enabled is set.
func FromConfig(enabled, development bool) (logr.Logger, error) {
	if !enabled {
		return logr.Discard(), nil
	}
	return New(development)
}

// Sync flushes the zap core behind l, if any. Errors from syncing a
// terminal or pipe, which cannot be synced, are ignored.
func Sync(l logr.Logger) error {
	u, ok := l.GetSink().(zapr.Underlier)
	if !ok {
		return nil
	}
	err := u.GetUnderlying().Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
