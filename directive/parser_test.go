package directive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T, files ...string) *Parser {
	t.Helper()
	known := make(map[string]bool, len(files))
	for _, f := range files {
		known[f] = true
	}
	p, err := NewParser(WithFileProbe(func(path string) bool { return known[path] }))
	require.NoError(t, err)

	return p
}

func TestParseRead(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		in     string
		bus    BusKind
		addr   uint8
		length int
		output string
	}{
		{"i2c:0x50:4", I2C, 0x50, 4, ""},
		{"i3c:0x08:16", I3C, 0x08, 16, ""},
		{"0x50:4", I2C, 0x50, 4, ""},
		{":4", I3C, 0, 4, ""},
		{"4", I3C, 0, 4, ""},
		{"i2c:0x50:65535:out.bin", I2C, 0x50, 65535, "out.bin"},
		{"0x10:2:/tmp/a:b.bin", I2C, 0x10, 2, "/tmp/a:b.bin"},
		{"I2C:010:1", I2C, 8, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require := require.New(t)

			xfer, err := p.ParseRead(tt.in)
			require.NoError(err)
			require.Equal(PrivateTransferKind, xfer.Kind())
			require.Equal(Read, xfer.Dir)
			require.Equal(tt.bus, xfer.Bus)
			require.Equal(tt.addr, xfer.Addr)
			require.Equal(tt.length, xfer.Length)
			require.Equal(tt.output, xfer.Output)
			require.Equal(None{}, xfer.Source)
			require.Equal(tt.in, xfer.Text)
			require.NoError(xfer.Validate())
		})
	}
}

func TestParseReadErrors(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		in    string
		field string
	}{
		{"", "length"},
		{"i2c", "address"},
		{"i2c::4", "address"},
		{"spi:0x50:4", "type"},
		{"i2c:0x50", "length"},
		{"i2c:0x50:65536", "length"},
		{"i2c:0x80:1", "address"},
		{"i2c:0x50:abc", "length"},
		{"0x50:4:", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require := require.New(t)

			_, err := p.ParseRead(tt.in)
			require.ErrorIs(err, ErrMalformedDirective)

			var se *SyntaxError
			require.ErrorAs(err, &se)
			require.Equal(tt.field, se.Field)
			require.Equal(tt.in, se.Directive)
		})
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	require := require.New(t)
	p := newTestParser(t)

	_, err := p.ParseRead("i2c:0x50:70000")
	var se *SyntaxError
	require.ErrorAs(err, &se)
	require.Equal(9, se.Pos)
	require.Contains(se.Error(), "column 10")
	require.Contains(se.Error(), "<length>")

	_, err = p.ParseWrite("0x50:1,2,0x1ff")
	require.ErrorAs(err, &se)
	require.Equal(9, se.Pos)
}

func TestParseWriteInline(t *testing.T) {
	require := require.New(t)
	p := newTestParser(t)

	xfer, err := p.ParseWrite("i2c:0x50:1,2,0xff")
	require.NoError(err)
	require.Equal(Write, xfer.Dir)
	require.Equal(I2C, xfer.Bus)
	require.Equal(uint8(0x50), xfer.Addr)
	require.Equal(InlineValues{1, 2, 0xff}, xfer.Source)
	require.Equal(3, xfer.Length)

	xfer, err = p.ParseWrite("1,2,3")
	require.NoError(err)
	require.Equal(I3C, xfer.Bus)
	require.Equal(InlineValues{1, 2, 3}, xfer.Source)

	xfer, err = p.ParseWrite(":7")
	require.NoError(err)
	require.Equal(I3C, xfer.Bus)
	require.Equal(InlineValues{7}, xfer.Source)

	// empty items are skipped
	xfer, err = p.ParseWrite("0x50:1,,2,")
	require.NoError(err)
	require.Equal(InlineValues{1, 2}, xfer.Source)
	require.Equal(2, xfer.Length)
}

func TestParseWriteTruncatesInlineList(t *testing.T) {
	require := require.New(t)
	p := newTestParser(t)

	items := make([]string, 300)
	for i := range items {
		items[i] = "1"
	}
	items[299] = "garbage"

	xfer, err := p.ParseWrite("0x50:" + strings.Join(items, ","))
	require.NoError(err)
	require.Len(xfer.Source, MaxInlineValues)
	require.Equal(MaxInlineValues, xfer.Length)
}

func TestParseWriteFile(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "payload.bin")
	require.NoError(os.WriteFile(path, []byte{9, 8, 7}, 0o600))

	p, err := NewParser()
	require.NoError(err)

	xfer, err := p.ParseWrite("i2c:0x50:" + path)
	require.NoError(err)
	require.Equal(FilePath(path), xfer.Source)
	require.Equal(0, xfer.Length, "file payload length is resolved at provisioning")

	// a directory is not a readable payload file
	_, err = p.ParseWrite("i2c:0x50:" + dir)
	require.ErrorIs(err, ErrMalformedDirective)
}

func TestParseWriteErrors(t *testing.T) {
	p := newTestParser(t)

	for _, in := range []string{
		"i2c:0x50",
		"i2c:0x50:",
		"0x50:missing.bin",
		"0x50:,,",
		"0x50:1,256",
		"spi:0x50:1,2",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := p.ParseWrite(in)
			require.ErrorIs(t, err, ErrMalformedDirective)
		})
	}
}

func TestParseCCC(t *testing.T) {
	require := require.New(t)
	p := newTestParser(t, "ccc.bin")

	cmd, err := p.ParseCCC("0x10:r:0x50:4")
	require.NoError(err)
	require.Equal(CCCCommandKind, cmd.Kind())
	require.Equal(uint8(0x10), cmd.Code)
	require.Equal(Read, cmd.Dir)
	require.Equal(uint8(0x50), cmd.Addr)
	require.Equal(4, cmd.Length)
	require.True(cmd.Direct)
	require.Equal(I3C, cmd.Bus)
	require.NoError(cmd.Validate())

	cmd, err = p.ParseCCC("0x00:w::0x01")
	require.NoError(err)
	require.False(cmd.Direct)
	require.Equal(Write, cmd.Dir)
	require.Equal(InlineValues{0x01}, cmd.Source)

	cmd, err = p.ParseCCC("255:w:0x3a:ccc.bin")
	require.NoError(err)
	require.Equal(uint8(255), cmd.Code)
	require.Equal(FilePath("ccc.bin"), cmd.Source)

	for _, bad := range []string{"256:r:0x50:4", ":r:0x50:4", "0x10:x:0x50:4", "0x10:r", "0x10:r:0x50", "0x10:w:0x50:", "0x9a:w:0:1"} {
		_, err = p.ParseCCC(bad)
		require.ErrorIs(err, ErrMalformedDirective, bad)
	}

	var se *SyntaxError
	_, err = p.ParseCCC("0x9a:w:0:1")
	require.ErrorAs(err, &se)
	require.Equal("address", se.Field)
	require.Equal(7, se.Pos)
}

func TestParseCombo(t *testing.T) {
	require := require.New(t)
	p := newTestParser(t)

	combo, err := p.ParseCombo("0x50:0x20:w:1,2,3")
	require.NoError(err)
	require.Equal(ComboTransferKind, combo.Kind())
	require.Equal(uint8(0x50), combo.Addr)
	require.Equal(I2C, combo.Bus)
	require.Equal(uint16(0x20), combo.Offset)
	require.Equal(Write, combo.Dir)
	require.Equal(InlineValues{1, 2, 3}, combo.Source)

	combo, err = p.ParseCombo("0x1234:r:8")
	require.NoError(err)
	require.Equal(I3C, combo.Bus)
	require.Equal(uint16(0x1234), combo.Offset)
	require.Equal(Read, combo.Dir)
	require.Equal(8, combo.Length)

	combo, err = p.ParseCombo(":0xffff:r:2:dump.bin")
	require.NoError(err)
	require.Equal(I3C, combo.Bus)
	require.Equal(uint16(0xffff), combo.Offset)
	require.Equal("dump.bin", combo.Output)

	for _, bad := range []string{"0x50:0x10000:r:1", "0x50", "0x50:0x20:q:1", "0x50::r:1", "0x50:0x20:r:70000"} {
		_, err = p.ParseCombo(bad)
		require.ErrorIs(err, ErrMalformedDirective, bad)
	}
}

func TestParser_Parse(t *testing.T) {
	require := require.New(t)
	p := newTestParser(t)

	in, err := p.Parse(VariantRead, "i2c:0x50:4")
	require.NoError(err)
	require.Equal(PrivateTransferKind, in.Kind())

	in, err = p.Parse(VariantCCC, "0x10:r:0x50:4")
	require.NoError(err)
	require.IsType(&CCCCommand{}, in)

	in, err = p.Parse(VariantCombo, "0x50:0x20:r:1")
	require.NoError(err)
	require.IsType(&ComboTransfer{}, in)

	_, err = p.Parse(Variant(99), "x")
	require.ErrorIs(err, ErrMalformedDirective)

	_, err = NewParser(WithFileProbe(nil))
	require.Error(err)
}

func TestIntentValidate(t *testing.T) {
	require := require.New(t)

	read := &PrivateTransfer{Transfer{Dir: Read, Source: InlineValues{1}}}
	require.ErrorIs(read.Validate(), ErrInvalidIntent)

	write := &PrivateTransfer{Transfer{Dir: Write, Source: None{}}}
	require.ErrorIs(write.Validate(), ErrInvalidIntent)

	write = &PrivateTransfer{Transfer{Dir: Write, Source: FilePath("a"), Output: "b"}}
	require.ErrorIs(write.Validate(), ErrInvalidIntent)

	ccc := &CCCCommand{Transfer: Transfer{Bus: I2C, Dir: Read, Source: None{}}}
	require.ErrorIs(ccc.Validate(), ErrInvalidIntent)

	ccc = &CCCCommand{Transfer: Transfer{Bus: I3C, Dir: Read, Source: None{}}, Direct: true}
	require.ErrorIs(ccc.Validate(), ErrInvalidIntent)

	ccc = &CCCCommand{Transfer: Transfer{Bus: I3C, Addr: 0x08, Dir: Read, Source: None{}}}
	require.ErrorIs(ccc.Validate(), ErrInvalidIntent)

	long := &PrivateTransfer{Transfer{Dir: Read, Length: MaxLength + 1}}
	require.ErrorIs(long.Validate(), ErrInvalidIntent)

	require.Contains(String(&ComboTransfer{Offset: 0x20}), "offset=0x0020")
}
