package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warn"))
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLevel("info"))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"), "unknown levels default to info")
}

func TestDeskLoggerAttachesConversationContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})

	scoped := logger.WithConversation("ag-1", "+49123").WithContext("component", "dispatch")
	scoped.Warn("action failed", "action", "report", "error", "upstream timeout")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "action failed", entry["msg"])
	assert.Equal(t, "ag-1", entry["agent_id"])
	assert.Equal(t, "+49123", entry["identity"])
	assert.Equal(t, "dispatch", entry["component"])
	assert.Equal(t, "report", entry["action"])
	assert.Equal(t, "upstream timeout", entry["error"])
}

func TestDeskLoggerCloningDoesNotLeakContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})

	_ = logger.WithConversation("ag-1", "+49123")
	logger.Info("plain entry")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, hasAgent := entry["agent_id"]
	assert.False(t, hasAgent, "With* returns a copy, the receiver stays unscoped")
}

func TestDeskLoggerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "json", Output: &buf})

	logger.Debug("dropped")
	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Error("kept")
	assert.NotZero(t, buf.Len())
}

func TestNoOpLoggerImplementsLogger(t *testing.T) {
	var _ Logger = NoOpLogger{}
	var _ Logger = (*DeskLogger)(nil)
	var _ Logger = (*SlogAdapter)(nil)

	NoOpLogger{}.Info("discarded", "key", "value")
}
