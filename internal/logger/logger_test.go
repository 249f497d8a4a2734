package logger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	l, err := New(true, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New(false, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  company  ", Value: "  Acme  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	require.Len(t, fields, 1)
	assert.Equal(t, "company", fields[0].Key)
	assert.Equal(t, "Acme", fields[0].String)
	assert.Empty(t, StringFields())
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithFields(zap.New(core), zap.String("foo", "bar")).Info("test log")

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bar", entries[0].ContextMap()["foo"])

	fallback := WithFields(nil, zap.String("baz", "qux"))
	require.NotNil(t, fallback)
	assert.NotPanics(t, func() { fallback.Info("another log") })
}

func TestPairFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	resumeID, companyID := uuid.New(), uuid.New()

	WithFields(zap.New(core), PairFields(resumeID, companyID, "Acme")...).Warn("scoring failed")

	ctx := observed.All()[0].ContextMap()
	assert.Equal(t, resumeID.String(), ctx[FieldResumeID])
	assert.Equal(t, companyID.String(), ctx[FieldCompanyID])
	assert.Equal(t, "Acme", ctx[FieldCompanyName])
	assert.NotContains(t, ctx, FieldResumeEmail)
}

func TestCompanyFields_SkipsNilID(t *testing.T) {
	fields := CompanyFields(uuid.Nil, "Acme")
	require.Len(t, fields, 1)
	assert.Equal(t, FieldCompanyName, fields[0].Key)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc...", Truncate("  abcdef ", 3))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "", Truncate("abc", 0))
}
