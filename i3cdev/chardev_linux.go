//go:build linux

package i3cdev

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/arloliu/go-i3c/internal/pool"
	"github.com/arloliu/go-i3c/logger"
	"github.com/arloliu/go-i3c/wire"
)

// CharDevice is an i3c tools character device node.
//
// CharDevice is not goroutine-safe; calls must not be interleaved.
type CharDevice struct {
	f      *os.File
	path   string
	logger logger.Logger
}

var _ Device = (*CharDevice)(nil)

// Open opens the character device at path for reading and writing.
func Open(path string, opts ...Option) (*CharDevice, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &CharDevice{f: f, path: path, logger: o.logger.With("device", path)}, nil
}

func (d *CharDevice) String() string { return d.path }

// Submit encodes records into one array, passes it to the driver with a single
// ioctl and copies the driver's write-back into the records.
//
// Record buffers are pinned for the duration of the call because the encoded
// array carries their addresses.
func (d *CharDevice) Submit(records []wire.Record) error {
	if d.f == nil {
		return ErrDeviceClosed
	}

	req, err := wire.RequestCode(len(records))
	if err != nil {
		return err
	}

	buf := pool.GetBuffer(len(records) * wire.RecordSize)
	defer pool.PutBuffer(buf)

	var pinner runtime.Pinner
	defer pinner.Unpin()

	for i := range records {
		var addr uint64
		if len(records[i].Data) > 0 {
			p := &records[i].Data[0]
			pinner.Pin(p)
			addr = uint64(uintptr(unsafe.Pointer(p)))
		}
		raw := records[i].Raw(addr)
		if err := raw.Put(buf[i*wire.RecordSize:]); err != nil {
			return err
		}
	}

	if err := d.ioctl(req, unsafe.Pointer(&buf[0])); err != nil {
		return err
	}

	for i := range records {
		raw, err := wire.ParseRaw(buf[i*wire.RecordSize:])
		if err != nil {
			return err
		}
		records[i].Update(raw)
	}

	return nil
}

func (d *CharDevice) ioctl(req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), uintptr(req), uintptr(arg))
	runtime.KeepAlive(d.f)
	if errno != 0 {
		return errno
	}

	return nil
}

// Read receives one block. A zero-length read is not an error.
func (d *CharDevice) Read(p []byte) (int, error) {
	if d.f == nil {
		return 0, ErrDeviceClosed
	}

	n, err := d.f.Read(p)
	if errors.Is(err, io.EOF) {
		return n, nil
	}

	return n, err
}

// Write sends one block.
func (d *CharDevice) Write(p []byte) (int, error) {
	if d.f == nil {
		return 0, ErrDeviceClosed
	}

	return d.f.Write(p)
}

// Close closes the device node. Closing twice returns ErrDeviceClosed.
func (d *CharDevice) Close() error {
	if d.f == nil {
		return ErrDeviceClosed
	}
	err := d.f.Close()
	d.f = nil

	return err
}
