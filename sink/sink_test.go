package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-i3c/payload"
)

func seq(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}

	return out
}

func TestHexDump(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		data     []byte
		expected string
	}{
		{name: "empty", header: "read block", data: nil, expected: "---- read block ----\n"},
		{name: "no header", data: []byte{0xab}, expected: "000000 ab \n"},
		{
			name:   "partial row is not padded",
			header: "read block",
			data:   seq(18),
			expected: "---- read block ----\n" +
				"000000 00 01 02 03 04 05 06 07 08 09 0a 0b 0c 0d 0e 0f \n" +
				"000010 10 11 \n",
		},
		{
			name:   "exact rows",
			data:   seq(32),
			expected: "000000 00 01 02 03 04 05 06 07 08 09 0a 0b 0c 0d 0e 0f \n" +
				"000010 10 11 12 13 14 15 16 17 18 19 1a 1b 1c 1d 1e 1f \n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			var buf bytes.Buffer
			require.NoError(HexDump(&buf, tt.header, tt.data))
			require.Equal(tt.expected, buf.String())
		})
	}
}

func TestListAndInline(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	require.NoError(List(&buf, []byte{0x01, 0xff}))
	require.Equal("  received data:\n    0x01\n    0xff\n", buf.String())

	buf.Reset()
	require.NoError(Inline(&buf, []byte{0x01, 0xff}))
	require.Equal("received data: 0x01 0xff \n", buf.String())
}

func TestNew(t *testing.T) {
	require := require.New(t)

	_, err := New(WithStdout(nil))
	require.Error(err)

	_, err = New(WithFormat(Format(9)))
	require.Error(err)

	_, err = New(WithLogger(nil))
	require.Error(err)

	s, err := New()
	require.NoError(err)
	require.Equal(FormatList, s.format)
	require.Equal("hex", FormatHex.String())

	f, err := ParseFormat("inline")
	require.NoError(err)
	require.Equal(FormatInline, f)

	_, err = ParseFormat("table")
	require.Error(err)
}

func TestSink_Emit(t *testing.T) {
	require := require.New(t)

	var out bytes.Buffer
	s, err := New(WithStdout(&out), WithFormat(FormatHex))
	require.NoError(err)

	require.NoError(s.Success(0, "i2c:0x50:2"))
	require.NoError(s.Emit("read block", []byte{0xca, 0xfe}, ""))
	require.Equal("Success on message 0: i2c:0x50:2\n---- read block ----\n000000 ca fe \n", out.String())

	out.Reset()
	path := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(os.WriteFile(path, bytes.Repeat([]byte{0xee}, 10), 0o600))
	require.NoError(s.Emit("read block", []byte{1, 2, 3}, path))
	require.Empty(out.String())

	got, err := os.ReadFile(path)
	require.NoError(err)
	require.Equal([]byte{1, 2, 3}, got, "output file must be overwritten")
}

func TestWriteFile_Error(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "missing", "out.bin")
	err := WriteFile(path, []byte{1})
	require.ErrorIs(err, payload.ErrIO)
	require.True(strings.Contains(err.Error(), "missing"))
}
