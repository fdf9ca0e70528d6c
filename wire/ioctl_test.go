package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestCode(t *testing.T) {
	require := require.New(t)

	code, err := RequestCode(1)
	require.NoError(err)
	// _IOC(_IOC_READ|_IOC_WRITE, 0x07, 30, 32)
	require.Equal(uint(0xC020071E), code)

	code, err = RequestCode(2)
	require.NoError(err)
	require.Equal(uint(0xC040071E), code)

	code, err = RequestCode(MaxRecords)
	require.NoError(err)
	require.Equal(uint(MaxRecords*RecordSize), (code>>16)&0x3FFF)
}

func TestCheckCapacity(t *testing.T) {
	require := require.New(t)

	require.Equal(511, MaxRecords)
	require.NoError(CheckCapacity(1))
	require.NoError(CheckCapacity(MaxRecords))
	require.ErrorIs(CheckCapacity(MaxRecords+1), ErrCapacityExceeded)
	require.ErrorIs(CheckCapacity(0), ErrEmptyBatch)

	_, err := RequestCode(600)
	require.ErrorIs(err, ErrCapacityExceeded)
}
