package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	assert.Equal(t, LevelInfo, FromCount(0))
	assert.Equal(t, LevelDebug, FromCount(1))
	assert.Equal(t, LevelVerbose, FromCount(3))

	lvl, err := Parse("Debug")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, lvl)

	_, err = Parse("loud")
	assert.Error(t, err)
}

func TestNewFiltersByLevel(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	l := New(&buf, LevelDebug)
	l.Debug("schema loaded")
	Verbose(ctx, l, "create collection")
	assert.Contains(t, buf.String(), "schema loaded")
	assert.NotContains(t, buf.String(), "create collection")

	buf.Reset()
	l = New(&buf, LevelVerbose)
	Verbose(ctx, l, "create collection")
	assert.Contains(t, buf.String(), "level=VERBOSE")
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("applied")
	assert.Contains(t, buf.String(), "applied")

	assert.NotNil(t, FromContext(context.Background()))
	assert.NotNil(t, OrDiscard(nil))
}
