package i3cdev

import (
	"errors"
	"strings"

	"github.com/arloliu/go-i3c/logger"
	"github.com/arloliu/go-i3c/wire"
)

var (
	// ErrDeviceTransaction indicates that the device call itself failed.
	// The wrapped error carries the system error text.
	ErrDeviceTransaction = errors.New("transfer failed")

	// ErrDeviceClosed indicates use of a closed device.
	ErrDeviceClosed = errors.New("device closed")

	// ErrUnsupported indicates a platform without the character device interface.
	ErrUnsupported = errors.New("i3c character devices are not supported on this platform")
)

// SimPrefix selects the in-process simulator in OpenPath.
const SimPrefix = "sim:"

// Device is an open i3c tools device node.
type Device interface {
	// Submit executes records in order as one transaction. On success the Len
	// of each read record is the number of bytes the driver wrote back. On
	// failure every buffer is undefined.
	Submit(records []wire.Record) error
	// Read receives one block of a block session.
	Read(p []byte) (int, error)
	// Write sends one block of a block session.
	Write(p []byte) (int, error)
	// Close releases the device.
	Close() error
	// String names the device.
	String() string
}

// Option configures a device or dispatcher.
type Option interface {
	apply(*options) error
}

type options struct {
	logger logger.Logger
}

type optFunc func(*options) error

func (f optFunc) apply(o *options) error { return f(o) }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(o *options) error {
		if l == nil {
			return errors.New("i3cdev: logger must not be nil")
		}
		o.logger = l

		return nil
	})
}

func newOptions(opts []Option) (*options, error) {
	o := &options{logger: logger.GetLogger()}
	for _, opt := range opts {
		if err := opt.apply(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// OpenPath opens the device at path. A path starting with SimPrefix opens a
// simulator that attaches I2C targets on first use.
func OpenPath(path string, opts ...Option) (Device, error) {
	if strings.HasPrefix(path, SimPrefix) {
		o, err := newOptions(opts)
		if err != nil {
			return nil, err
		}

		return NewSimulator(WithAutoAttach(), WithSimLogger(o.logger)), nil
	}

	dev, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}

	return dev, nil
}
