package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockOutput captures log entries for inspection.
type mockOutput struct {
	entries []LogEntry
}

func (m *mockOutput) Write(e LogEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockOutput) Sync() error  { return nil }
func (m *mockOutput) Close() error { return nil }

func TestLoggerSeverityFiltering(t *testing.T) {
	out := &mockOutput{}
	logger := NewLogger(Config{Severity: WARN, Outputs: []Output{out}})

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	require.Len(t, out.entries, 2)
	assert.Equal(t, WARN, out.entries[0].Severity)
	assert.Equal(t, ERROR, out.entries[1].Severity)
}

func TestLoggerFormatting(t *testing.T) {
	out := &mockOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

	logger.Info(context.Background(), "processed %d events in %s", 3, "batch")

	require.Len(t, out.entries, 1)
	entry := out.entries[0]
	assert.Equal(t, "processed 3 events in batch", entry.Message)
	assert.NotEmpty(t, entry.File)
	assert.NotZero(t, entry.Line)
}

func TestLoggerModelIDFromContext(t *testing.T) {
	out := &mockOutput{}
	logger := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})

	ctx := WithModelID(context.Background(), "claude-sonnet-4-5")
	logger.Info(ctx, "reflection complete")

	require.Len(t, out.entries, 1)
	assert.Equal(t, "claude-sonnet-4-5", out.entries[0].ModelID)

	id, ok := GetModelID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "claude-sonnet-4-5", id)

	_, ok = GetModelID(context.Background())
	assert.False(t, ok)
}

func TestLoggerDefaultFields(t *testing.T) {
	out := &mockOutput{}
	logger := NewLogger(Config{
		Severity:      DEBUG,
		Outputs:       []Output{out},
		DefaultFields: map[string]interface{}{"component": "skills"},
	})

	logger.Info(context.Background(), "hello")

	require.Len(t, out.entries, 1)
	assert.Equal(t, "skills", out.entries[0].Fields["component"])
}

func TestGlobalLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	out := &mockOutput{}
	custom := NewLogger(Config{Severity: DEBUG, Outputs: []Output{out}})
	SetLogger(custom)

	assert.Same(t, custom, GetLogger())

	GetLogger().Info(context.Background(), "via global")
	require.Len(t, out.entries, 1)
}
