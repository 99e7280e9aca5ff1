package invariant_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgqt/opensmt/internal/invariant"
)

func guarded(fn func()) (err error) {
	defer invariant.Recover(&err)
	fn()
	return nil
}

func TestRecover(t *testing.T) {
	sentinel := errors.New("sentinel")

	type tc struct {
		Name    string
		Run     func()
		Message string
		Is      error
	}

	for _, tt := range []tc{
		{
			Name: "no violation",
			Run:  func() { invariant.Check(true, "unreachable") },
		},
		{
			Name:    "failed check",
			Run:     func() { invariant.Check(false, "term %d registered twice", 7) },
			Message: "internal solver failure: term 7 registered twice",
		},
		{
			Name:    "wrapped error",
			Run:     func() { invariant.Fail(sentinel) },
			Message: "internal solver failure: sentinel",
			Is:      sentinel,
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			err := guarded(tt.Run)
			if tt.Message == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.Message, err.Error())
			var v *invariant.Violation
			assert.True(t, errors.As(err, &v))
			if tt.Is != nil {
				assert.ErrorIs(t, err, tt.Is)
			}
		})
	}
}

func TestRecoverRepanics(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		_ = guarded(func() { panic("boom") })
	})
}
