package logging_test

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xgqt/opensmt/internal/logging"
)

func TestFromConfig(t *testing.T) {
	type tc struct {
		Name        string
		Enabled     bool
		Development bool
		Discard     bool
	}

	for _, tt := range []tc{
		{Name: "disabled", Discard: true},
		{Name: "production", Enabled: true},
		{Name: "development", Enabled: true, Development: true},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			l, err := logging.FromConfig(tt.Enabled, tt.Development)
			require.NoError(t, err)
			assert.Equal(t, tt.Discard, l.GetSink() == nil)
			l.V(1).Info("probe", "name", tt.Name)
		})
	}
}

type countingSyncer struct {
	zapcore.Core
	syncs *int
}

func (c countingSyncer) With(fields []zapcore.Field) zapcore.Core {
	return countingSyncer{Core: c.Core.With(fields), syncs: c.syncs}
}

func (c countingSyncer) Sync() error {
	*c.syncs++
	return c.Core.Sync()
}

func TestSync(t *testing.T) {
	assert.NoError(t, logging.Sync(logr.Discard()))

	syncs := 0
	core, logs := observer.New(zap.InfoLevel)
	l := zapr.NewLogger(zap.New(countingSyncer{Core: core, syncs: &syncs})).WithName("opensmt").WithValues("session", "s")
	l.Info("solved")
	require.NoError(t, logging.Sync(l))
	assert.Equal(t, 1, syncs)
	assert.Equal(t, 1, logs.Len())
}
