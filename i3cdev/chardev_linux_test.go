//go:build linux

package i3cdev

import (
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-i3c/wire"
)

func TestOpen_Missing(t *testing.T) {
	_, err := Open("/nonexistent/i3c-tools-0")
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = OpenPath("/nonexistent/i3c-tools-0")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// /dev/null accepts reads and writes but rejects every ioctl.
func TestCharDevice_DevNull(t *testing.T) {
	require := require.New(t)

	dev, err := Open(os.DevNull)
	require.NoError(err)
	require.Equal(os.DevNull, dev.String())

	err = dev.Submit([]wire.Record{privRecord(0, false, true, make([]byte, 4))})
	require.ErrorIs(err, syscall.ENOTTY)

	require.ErrorIs(dev.Submit(nil), wire.ErrEmptyBatch)

	n, err := dev.Read(make([]byte, 4))
	require.NoError(err)
	require.Equal(0, n)

	n, err = dev.Write([]byte{1, 2})
	require.NoError(err)
	require.Equal(2, n)

	require.NoError(dev.Close())
	require.ErrorIs(dev.Close(), ErrDeviceClosed)
	require.ErrorIs(dev.Submit(nil), ErrDeviceClosed)
}
