// internal/logger/logger_test.go
package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestOperationTagsEachRound(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	Operation(base, "buy").Info("first")
	Operation(base, "buy").Info("second")

	entries := logs.All()
	require.Len(t, entries, 2)

	var ids []string
	for _, entry := range entries {
		fields := entry.ContextMap()
		assert.Equal(t, "buy", fields["operation"])
		id, ok := fields["correlation_id"].(string)
		require.True(t, ok)
		assert.NotEmpty(t, id)
		ids = append(ids, id)
	}
	assert.NotEqual(t, ids[0], ids[1], "each round gets its own correlation id")
}
