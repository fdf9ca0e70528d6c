//go:build !linux

package i3cdev

import "fmt"

// CharDevice is only available on Linux.
type CharDevice struct {
	Device
}

// Open always fails on this platform.
func Open(path string, _ ...Option) (*CharDevice, error) {
	return nil, fmt.Errorf("open %s: %w", path, ErrUnsupported)
}
