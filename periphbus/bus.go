// Package periphbus exposes an i3c tools device node as a periph.io I²C bus,
// so that periph device drivers built on i2c.Dev run unchanged over it.
package periphbus

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"

	"github.com/arloliu/go-i3c/directive"
	"github.com/arloliu/go-i3c/i3cdev"
	"github.com/arloliu/go-i3c/logger"
	"github.com/arloliu/go-i3c/wire"
)

var (
	// ErrShortRead indicates a read phase that returned fewer bytes than requested.
	ErrShortRead = errors.New("short read")

	// ErrSpeedUnsupported is returned by SetSpeed; the controller owns the bus clock.
	ErrSpeedUnsupported = errors.New("bus speed is controlled by the i3c master")
)

// Bus is an i2c.BusCloser backed by an i3c tools device.
//
// Each Tx is one batch: the write phase and the read phase are joined with a
// repeated start. Bus is safe for concurrent use.
type Bus struct {
	mu     sync.Mutex
	disp   *i3cdev.Dispatcher
	dev    i3cdev.Device
	i3c    bool
	logger logger.Logger
}

var _ i2c.BusCloser = (*Bus)(nil)

// Option configures a Bus.
type Option func(*Bus)

// WithI3C sends private I3C transfers to the device node's own target instead
// of addressed I2C transfers.
func WithI3C() Option {
	return func(b *Bus) { b.i3c = true }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a Bus over dev. Closing the bus closes dev.
func New(dev i3cdev.Device, opts ...Option) (*Bus, error) {
	b := &Bus{dev: dev, logger: logger.GetLogger()}
	for _, opt := range opts {
		opt(b)
	}

	disp, err := i3cdev.NewDispatcher(dev, i3cdev.WithLogger(b.logger))
	if err != nil {
		return nil, err
	}
	b.disp = disp

	return b, nil
}

func (b *Bus) String() string {
	return "i3c(" + b.dev.String() + ")"
}

// Tx writes w then reads len(r) bytes from addr in one transaction.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr > directive.MaxAddress {
		return fmt.Errorf("periphbus: address 0x%x out of range 0..0x%x", addr, directive.MaxAddress)
	}
	if len(w) > directive.MaxLength || len(r) > directive.MaxLength {
		return wire.ErrLengthOverflow
	}
	if len(w) == 0 && len(r) == 0 {
		return nil
	}

	records := make([]wire.Record, 0, 2)
	if len(w) > 0 {
		records = append(records, b.record(uint8(addr), w, false))
	}
	if len(r) > 0 {
		if len(records) > 0 {
			records[0].TOC = false
		}
		records = append(records, b.record(uint8(addr), r, true))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.disp.Dispatch(records); err != nil {
		return err
	}

	if len(r) > 0 {
		if got := int(records[len(records)-1].Len); got != len(r) {
			return fmt.Errorf("%w: %d of %d bytes from 0x%02x", ErrShortRead, got, len(r), addr)
		}
	}

	return nil
}

func (b *Bus) record(addr uint8, data []byte, read bool) wire.Record {
	return wire.Record{
		Type: wire.TypePrivXfer,
		Data: data,
		Len:  uint16(len(data)), //nolint:gosec // checked by Tx
		Addr: addr,
		I2C:  !b.i3c,
		Read: read,
		TOC:  true,
	}
}

// SetSpeed always fails with ErrSpeedUnsupported.
func (b *Bus) SetSpeed(physic.Frequency) error {
	return ErrSpeedUnsupported
}

// Close closes the device.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.dev.Close()
}

// Register publishes the device node at path in i2creg under name and number.
// The device is opened each time the bus is opened through i2creg.
func Register(name string, number int, path string, opts ...Option) error {
	return i2creg.Register(name, nil, number, func() (i2c.BusCloser, error) {
		dev, err := i3cdev.OpenPath(path)
		if err != nil {
			return nil, err
		}

		bus, err := New(dev, opts...)
		if err != nil {
			_ = dev.Close()
			return nil, err
		}

		return bus, nil
	})
}
