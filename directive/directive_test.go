package directive

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVariant(t *testing.T) {
	require := require.New(t)

	for _, v := range []Variant{VariantRead, VariantWrite, VariantCCC, VariantCombo} {
		got, err := ParseVariant(v.String())
		require.NoError(err)
		require.Equal(v, got)
	}

	_, err := ParseVariant("xfer")
	require.ErrorIs(err, ErrMalformedDirective)
}

func TestParser_ParseAll(t *testing.T) {
	require := require.New(t)

	p, err := NewParser(WithFileProbe(func(string) bool { return false }))
	require.NoError(err)

	intents, err := p.ParseAll([]Directive{
		{Variant: VariantWrite, Text: "i2c:0x50:0x00"},
		{Variant: VariantRead, Text: "i2c:0x50:2", Group: true},
		{Variant: VariantCCC, Text: "0x06:w::0x0f", Group: true},
		{Variant: VariantCombo, Text: "0x50:0x20:r:2"},
	})
	require.NoError(err)
	require.Len(intents, 4)

	require.False(intents[0].Common().Group)
	require.True(intents[1].Common().Group)
	require.False(intents[2].Common().Group, "group only applies to read and write transfers")
	require.Equal(CCCCommandKind, intents[2].Kind())
	require.Equal(ComboTransferKind, intents[3].Kind())

	_, err = p.ParseAll([]Directive{
		{Variant: VariantRead, Text: "4"},
		{Variant: VariantRead, Text: "i2c:0x50"},
	})
	require.ErrorIs(err, ErrMalformedDirective)
	require.Contains(err.Error(), "message 1")
}

func TestDirective_String(t *testing.T) {
	require.Equal(t, "ccc 0x06:w::0x0f", Directive{Variant: VariantCCC, Text: "0x06:w::0x0f"}.String())
}
