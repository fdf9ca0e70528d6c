package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUint(t *testing.T) {
	require := require.New(t)

	v8, err := ParseUint[uint8]("0xff", 0xff)
	require.NoError(err)
	require.Equal(uint8(0xff), v8)

	v16, err := ParseUint[uint16]("65535", 0xffff)
	require.NoError(err)
	require.Equal(uint16(65535), v16)

	v, err := ParseUint[int]("010", 0xff)
	require.NoError(err)
	require.Equal(8, v, "leading zero is octal")

	_, err = ParseUint[uint16]("65536", 0xffff)
	require.ErrorIs(err, ErrOutOfRange)

	_, err = ParseUint[uint8]("0x100", 0xff)
	require.ErrorIs(err, ErrOutOfRange)

	_, err = ParseUint[uint64]("99999999999999999999999", ^uint64(0))
	require.ErrorIs(err, ErrOutOfRange)

	for _, bad := range []string{"", "abc", "-1", "1_000", "0x"} {
		_, err = ParseUint[uint16](bad, 0xffff)
		require.ErrorIs(err, ErrNotNumber, bad)
	}
}

func TestIsNumber(t *testing.T) {
	require.True(t, IsNumber("0x50"))
	require.True(t, IsNumber(" 7 "))
	require.False(t, IsNumber("i2c"))
	require.False(t, IsNumber("data.bin"))
}

func TestCloneSlice(t *testing.T) {
	require := require.New(t)

	src := []byte{1, 2, 3}
	clone := CloneSlice(src, 0)
	require.Equal(src, clone)
	clone[0] = 9
	require.Equal(byte(1), src[0])

	require.Equal([]byte{1, 2, 3, 0}, CloneSlice(src, 4))
}
