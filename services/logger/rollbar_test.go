package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/user"
)

func TestRollbarLogger(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	lgr := NewRollbarLogger(zap.New(obs), core.NewTestConfig())

	lgr.Info("user logged in", user.User{ID: "sub-1"}, user.User{ID: "sub-2"})
	lgr.Error("computing failed", errors.New("boom"), map[string]interface{}{"catalog": "cs"})
	lgr.Debug("plain")

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, map[string]interface{}{"user": "sub-1"}, entries[0].ContextMap())

		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		ctx := entries[1].ContextMap()
		assert.Equal(t, "boom", ctx["error"])
		assert.Equal(t, "cs", ctx["catalog"])

		assert.Equal(t, "plain", entries[2].Message)
		assert.Empty(t, entries[2].Context)
	}
}

func TestNewZap(t *testing.T) {
	zl, err := NewZap(core.NewTestConfig())
	assert.NoError(t, err)
	assert.False(t, zl.Core().Enabled(zapcore.ErrorLevel))
}
