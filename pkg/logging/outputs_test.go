package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleOutputFormatting(t *testing.T) {
	var sb strings.Builder
	out := NewConsoleOutput(false, WithColor(false))
	out.writer = &sb

	err := out.Write(LogEntry{
		Time:     time.Now().UnixNano(),
		Severity: INFO,
		Message:  "engine started",
		File:     "engine.go",
		Line:     42,
		ModelID:  "claude-sonnet-4-5",
		Fields:   map[string]interface{}{"skills": 3},
	})
	require.NoError(t, err)

	line := sb.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "[engine.go:42]")
	assert.Contains(t, line, "engine started")
	assert.Contains(t, line, "[model=claude-sonnet-4-5]")
	assert.Contains(t, line, "skills=3")
	assert.NotContains(t, line, "\033[")
}

func TestConsoleOutputColors(t *testing.T) {
	var sb strings.Builder
	out := NewConsoleOutput(false, WithColor(true))
	out.writer = &sb

	require.NoError(t, out.Write(LogEntry{
		Time:     time.Now().UnixNano(),
		Severity: ERROR,
		Message:  "boom",
	}))
	assert.Contains(t, sb.String(), "\033[31m")
}

func TestFormatFieldsTruncatesPrompts(t *testing.T) {
	long := strings.Repeat("x", 200)
	got := formatFields(map[string]interface{}{"prompt": long})
	assert.Contains(t, got, "...")
	assert.Less(t, len(got), 150)
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")

	out, err := NewFileOutput(path)
	require.NoError(t, err)

	require.NoError(t, out.Write(LogEntry{
		Time:     time.Now().UnixNano(),
		Severity: WARN,
		Message:  "queue full, processing inline",
		File:     "worker.go",
		Line:     7,
	}))
	require.NoError(t, out.Sync())
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "queue full, processing inline")
	assert.Contains(t, string(data), "WARN")

	// Reopening appends rather than truncates.
	out, err = NewFileOutput(path)
	require.NoError(t, err)
	require.NoError(t, out.Write(LogEntry{Time: time.Now().UnixNano(), Severity: INFO, Message: "second line"}))
	require.NoError(t, out.Close())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "queue full, processing inline")
	assert.Contains(t, string(data), "second line")
}
