package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require := require.New(t)

	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"", InfoLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"fatal", FatalLevel},
	}
	for _, tt := range tests {
		lv, err := ParseLevel(tt.in)
		require.NoError(err, tt.in)
		require.Equal(tt.want, lv, tt.in)
	}

	_, err := ParseLevel("verbose")
	require.Error(err)
}

func TestSlogLevels(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	l := NewSlog(&buf, WarnLevel, false)
	require.Equal(WarnLevel, l.Level())

	l.Info("hidden")
	require.Zero(buf.Len())

	l.Warn("shown", "device", "/dev/i3c-0")
	require.Contains(buf.String(), "shown")
	require.Contains(buf.String(), "/dev/i3c-0")

	l.SetLevel(DebugLevel)
	require.Equal(DebugLevel, l.Level())

	child := l.With("records", 3)
	require.Equal(DebugLevel, child.Level())
}

func TestSlogJSONFormat(t *testing.T) {
	t.Setenv(FormatEnv, "json")
	require := require.New(t)

	var buf bytes.Buffer
	l := NewSlog(&buf, InfoLevel, false)
	l.With("device", "sim:").Info("batch submitted", "records", 2)

	var entry map[string]any
	require.NoError(json.Unmarshal(buf.Bytes(), &entry))
	require.Equal("batch submitted", entry["msg"])
	require.Equal("sim:", entry["device"])
	require.EqualValues(2, entry["records"])
	require.Contains(entry, "ts")
}

func TestMockLogger(t *testing.T) {
	m := NewMockLogger()
	m.On("Info", "hello", []any{"k", 1}).Once()
	m.On("Level").Return(InfoLevel)

	m.With("ignored", true).Info("hello", "k", 1)
	require.Equal(t, InfoLevel, m.Level())
	m.AssertExpectations(t)
}
