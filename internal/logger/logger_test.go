package logger

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSetsGlobalLevel(t *testing.T) {
	require.NoError(t, Init("warn"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	require.NoError(t, Init("debug"))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestInitEmptyLevelMeansInfo(t *testing.T) {
	require.NoError(t, Init(""))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init("verbose"))
}

func TestFromContextRoundTrip(t *testing.T) {
	base := FromContext(context.Background())
	l := WithValues(base, "component", "test")

	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}

func TestWithErrorNilKeepsLogger(t *testing.T) {
	base := FromContext(context.Background())
	assert.Same(t, base, WithError(base, nil))
}
