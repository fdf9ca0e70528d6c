package i3cdev

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-i3c/logger"
	"github.com/arloliu/go-i3c/wire"
)

func TestNewDispatcher(t *testing.T) {
	require := require.New(t)

	_, err := NewDispatcher(nil)
	require.Error(err)

	_, err = NewDispatcher(NewSimulator(), WithLogger(nil))
	require.Error(err)

	d, err := NewDispatcher(NewSimulator(), WithLogger(logger.GetLogger()))
	require.NoError(err)
	require.Equal("sim:", d.Device().String())
}

func TestDispatcher_Dispatch(t *testing.T) {
	require := require.New(t)

	sim := NewSimulator()
	sim.I3C().Poke(0, []byte{1, 2, 3, 4})
	d, err := NewDispatcher(sim)
	require.NoError(err)

	buf := make([]byte, 4)
	records := []wire.Record{privRecord(0, false, true, buf)}
	require.NoError(d.Dispatch(records))
	require.Equal([]byte{1, 2, 3, 4}, records[0].Payload())
	require.Equal(1, sim.Submissions())
}

func TestDispatcher_DispatchErrors(t *testing.T) {
	require := require.New(t)

	sim := NewSimulator()
	d, err := NewDispatcher(sim)
	require.NoError(err)

	require.ErrorIs(d.Dispatch(nil), wire.ErrEmptyBatch)

	records := make([]wire.Record, wire.MaxRecords+1)
	err = d.Dispatch(records)
	require.ErrorIs(err, wire.ErrCapacityExceeded)
	require.Equal(0, sim.Submissions(), "capacity must be checked before the device call")

	err = d.Dispatch([]wire.Record{privRecord(0x51, true, true, make([]byte, 1))})
	require.ErrorIs(err, ErrDeviceTransaction)
	require.ErrorIs(err, syscall.ENXIO)
	require.Contains(err.Error(), "transfer failed")
}

func TestDispatcher_Control(t *testing.T) {
	require := require.New(t)

	sim := NewSimulator()
	sim.Attach(0x50)
	d, err := NewDispatcher(sim)
	require.NoError(err)

	require.ErrorIs(d.Control(wire.TypePrivXfer, 0, false), wire.ErrInvalidRecord)
	require.NoError(d.Control(wire.TypeStartBlocks, 0x50, true))
	require.ErrorIs(d.Control(wire.TypeStartBlocks, 0x50, true), ErrDeviceTransaction)
	require.NoError(d.Reset())
	require.Equal([]string{"start-blocks", "start-blocks", "reset"}, sim.Ops())
}

func TestDispatcher_Blocks(t *testing.T) {
	require := require.New(t)

	sim := NewSimulator()
	sim.I3C().Poke(0, []byte{0x11, 0x22})
	d, err := NewDispatcher(sim)
	require.NoError(err)

	_, err = d.ReadBlock(make([]byte, 2))
	require.ErrorIs(err, ErrDeviceTransaction)

	require.NoError(d.Control(wire.TypeStartBlocks, 0, false))
	data, err := d.ReadBlock(make([]byte, 2))
	require.NoError(err)
	require.Equal([]byte{0x11, 0x22}, data)

	require.NoError(d.WriteBlock([]byte{0x00, 0x33}))
	require.Equal([]byte{0x33}, sim.I3C().Peek(0, 1))

	sim.FailNext(errors.New("nak"))
	require.ErrorIs(d.WriteBlock([]byte{1}), ErrDeviceTransaction)
}

type shortWriter struct {
	*Simulator
}

func (w shortWriter) Write(p []byte) (int, error) { return len(p) - 1, nil }

func TestDispatcher_ShortWrite(t *testing.T) {
	require := require.New(t)

	d, err := NewDispatcher(shortWriter{NewSimulator()})
	require.NoError(err)
	require.ErrorIs(d.WriteBlock([]byte{1, 2}), ErrDeviceTransaction)
}
