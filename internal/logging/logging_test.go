package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, "json", "warn")
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "guess_id", 7)
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"guess_id":7`)

	buf.Reset()
	text, err := New(&buf, "text", "debug")
	require.NoError(t, err)
	text.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")

	_, err = New(io.Discard, "xml", "info")
	assert.Error(t, err)
	_, err = New(io.Discard, "json", "loud")
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := ContextWithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, logger, FromContextOr(ctx, fallback))

	assert.Nil(t, FromContext(context.Background()))
	assert.Same(t, fallback, FromContextOr(context.Background(), fallback))
	assert.Same(t, slog.Default(), FromContextOr(context.Background(), nil))

	bare := context.Background()
	assert.Equal(t, bare, ContextWithLogger(bare, nil))
}
