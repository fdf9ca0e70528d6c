package i3cdev

import (
	"fmt"

	"github.com/arloliu/go-i3c/logger"
	"github.com/arloliu/go-i3c/wire"
)

// Dispatcher issues batches and block-session calls on a device.
//
// Every device failure is returned wrapped in ErrDeviceTransaction so that the
// caller can tell it apart from parse and I/O failures.
type Dispatcher struct {
	dev    Device
	logger logger.Logger
}

// NewDispatcher creates a dispatcher for dev.
func NewDispatcher(dev Device, opts ...Option) (*Dispatcher, error) {
	if dev == nil {
		return nil, fmt.Errorf("i3cdev: device must not be nil")
	}

	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{dev: dev, logger: o.logger.With("device", dev.String())}, nil
}

// Device returns the underlying device.
func (d *Dispatcher) Device() Device { return d.dev }

// Dispatch submits records as exactly one device transaction.
//
// The capacity is checked before the device is touched. On failure no record
// is complete and every buffer must be treated as undefined.
func (d *Dispatcher) Dispatch(records []wire.Record) error {
	if err := wire.CheckCapacity(len(records)); err != nil {
		return err
	}

	d.logger.Debug("dispatch batch", "records", len(records))
	if err := d.dev.Submit(records); err != nil {
		d.logger.Debug("dispatch failed", "records", len(records), "error", err)
		return fmt.Errorf("%w: %w", ErrDeviceTransaction, err)
	}

	return nil
}

// Control submits a single control record such as START_BLOCKS or RESET.
func (d *Dispatcher) Control(t wire.RecordType, addr uint8, i2c bool) error {
	if !t.IsControl() {
		return fmt.Errorf("%w: %s is not a control record", wire.ErrInvalidRecord, t)
	}

	d.logger.Debug("dispatch control", "type", t, "addr", addr, "i2c", i2c)

	return d.Dispatch([]wire.Record{wire.Control(t, addr, i2c)})
}

// ReadBlock receives one block into buf and returns the bytes the driver
// delivered. A short read is not an error.
func (d *Dispatcher) ReadBlock(buf []byte) ([]byte, error) {
	n, err := d.dev.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: read block: %w", ErrDeviceTransaction, err)
	}

	return buf[:n], nil
}

// WriteBlock sends one block.
func (d *Dispatcher) WriteBlock(data []byte) error {
	n, err := d.dev.Write(data)
	if err != nil {
		return fmt.Errorf("%w: write block: %w", ErrDeviceTransaction, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: write block: %d of %d bytes written", ErrDeviceTransaction, n, len(data))
	}

	return nil
}

// Reset asks the driver to reset the bus controller.
func (d *Dispatcher) Reset() error {
	return d.Control(wire.TypeReset, 0, false)
}
