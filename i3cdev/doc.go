// Package i3cdev talks to an i3c tools character device.
//
// A Device executes batches of wire records with a single control call and
// moves raw block data with read and write calls while a block session is open.
// Open returns the Linux character device; NewSimulator returns an in-process
// model of the driver used for dry runs and tests.
//
// The Dispatcher is the only path the rest of the module uses to reach a
// device: it enforces the batch capacity, issues exactly one call per batch and
// reports every failure as ErrDeviceTransaction.
//
// All calls block until the driver returns. There is no timeout and no
// cancellation, matching the character device interface.
package i3cdev
