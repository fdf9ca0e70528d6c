// Package blocks runs block sessions: a START record, a series of read and
// write blocks, a LAST_BLOCK marker before the final block and a STOP record,
// all over one device handle.
package blocks

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-i3c/directive"
	"github.com/arloliu/go-i3c/i3cdev"
	"github.com/arloliu/go-i3c/logger"
	"github.com/arloliu/go-i3c/payload"
	"github.com/arloliu/go-i3c/sink"
	"github.com/arloliu/go-i3c/wire"
)

// ErrSessionAborted wraps every error that ended a session early.
var ErrSessionAborted = errors.New("block session aborted")

// header of hex dumps of read blocks
const readBlockHeader = "read block"

// Controller drives block sessions on one device.
//
// Controller is not goroutine-safe. A controller runs a single session; create
// a new one for the next session.
type Controller struct {
	disp     *i3cdev.Dispatcher
	parser   *directive.Parser
	prov     *payload.Provisioner
	sink     *sink.Sink
	endpoint uint8
	i2c      bool
	states   *StateMgr
	handlers []StateChangeHandler
	logger   logger.Logger
}

// Option configures a Controller.
type Option interface {
	apply(*Controller) error
}

type ctrlOptFunc func(*Controller) error

func (f ctrlOptFunc) apply(c *Controller) error { return f(c) }

// WithEndpoint sets the address carried by the START record.
func WithEndpoint(addr uint8) Option {
	return ctrlOptFunc(func(c *Controller) error {
		if addr > directive.MaxAddress {
			return fmt.Errorf("blocks: endpoint 0x%x out of range 0..0x%x", addr, directive.MaxAddress)
		}
		c.endpoint = addr

		return nil
	})
}

// WithI2C marks the session's endpoint as an I2C device.
func WithI2C(i2c bool) Option {
	return ctrlOptFunc(func(c *Controller) error {
		c.i2c = i2c
		return nil
	})
}

// WithStateHandler adds a handler invoked on every session state change.
func WithStateHandler(h StateChangeHandler) Option {
	return ctrlOptFunc(func(c *Controller) error {
		if h == nil {
			return errors.New("blocks: state handler must not be nil")
		}
		c.handlers = append(c.handlers, h)

		return nil
	})
}

// WithSink sets where read blocks are delivered.
func WithSink(s *sink.Sink) Option {
	return ctrlOptFunc(func(c *Controller) error {
		if s == nil {
			return errors.New("blocks: sink must not be nil")
		}
		c.sink = s

		return nil
	})
}

// WithParser sets the block directive parser.
func WithParser(p *directive.Parser) Option {
	return ctrlOptFunc(func(c *Controller) error {
		if p == nil {
			return errors.New("blocks: parser must not be nil")
		}
		c.parser = p

		return nil
	})
}

// WithProvisioner sets the buffer provisioner.
func WithProvisioner(p *payload.Provisioner) Option {
	return ctrlOptFunc(func(c *Controller) error {
		if p == nil {
			return errors.New("blocks: provisioner must not be nil")
		}
		c.prov = p

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return ctrlOptFunc(func(c *Controller) error {
		if l == nil {
			return errors.New("blocks: logger must not be nil")
		}
		c.logger = l

		return nil
	})
}

// NewController creates a controller for a session on dev.
func NewController(dev i3cdev.Device, opts ...Option) (*Controller, error) {
	c := &Controller{logger: logger.GetLogger()}
	for _, opt := range opts {
		if err := opt.apply(c); err != nil {
			return nil, err
		}
	}

	disp, err := i3cdev.NewDispatcher(dev, i3cdev.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	c.disp = disp

	if c.parser == nil {
		if c.parser, err = directive.NewParser(); err != nil {
			return nil, err
		}
	}
	if c.prov == nil {
		if c.prov, err = payload.NewProvisioner(payload.WithLogger(c.logger)); err != nil {
			return nil, err
		}
	}
	if c.sink == nil {
		if c.sink, err = sink.New(sink.WithFormat(sink.FormatHex), sink.WithLogger(c.logger)); err != nil {
			return nil, err
		}
	}

	c.states = NewStateMgr(c.logger, c.handlers...)

	return c, nil
}

// State returns the session state.
func (c *Controller) State() State { return c.states.State() }

// StartSession sends the START record addressed to the session's endpoint.
func (c *Controller) StartSession() error {
	if c.State() != IdleState {
		return fmt.Errorf("%w: start in state %s", ErrInvalidTransition, c.State())
	}
	if err := c.disp.Control(wire.TypeStartBlocks, c.endpoint, c.i2c); err != nil {
		return err
	}

	return c.states.ToStarted()
}

// SubmitBlock runs one block. For the final block the LAST_BLOCK record is
// sent first. Read data goes to the block's output file or to the sink.
func (c *Controller) SubmitBlock(blk *directive.PrivateTransfer, last bool) error {
	if c.State() != StartedState {
		return fmt.Errorf("%w: block in state %s", ErrInvalidTransition, c.State())
	}

	if last {
		if err := c.disp.Control(wire.TypeLastBlock, 0, false); err != nil {
			return err
		}
		if err := c.states.ToLastBlockMarked(); err != nil {
			return err
		}
	}

	buf, err := c.prov.Provision(blk)
	if err != nil {
		return err
	}
	defer c.prov.Release(buf)

	if blk.Dir == directive.Write {
		c.logger.Debug("write block", "directive", blk.Text, "len", len(buf))
		return c.disp.WriteBlock(buf)
	}

	data, err := c.disp.ReadBlock(buf)
	if err != nil {
		return err
	}
	c.logger.Debug("read block", "directive", blk.Text, "len", len(data))

	return c.sink.Emit(readBlockHeader, data, blk.Output)
}

// StopSession sends the STOP record.
func (c *Controller) StopSession() error {
	if c.State() != LastBlockMarkedState {
		return fmt.Errorf("%w: stop in state %s", ErrInvalidTransition, c.State())
	}
	if err := c.disp.Control(wire.TypeStopBlocks, 0, false); err != nil {
		return err
	}

	return c.states.ToStopped()
}

// Run executes a '+'-joined block directive as one session.
//
// Every block is syntax-checked before the device is touched. Blocks are then
// resolved and executed one at a time. A device failure aborts the session
// without a STOP record; any other failure after START sends STOP on a best
// effort basis before aborting.
func (c *Controller) Run(blocks string) error {
	texts, err := c.parser.SplitBlocks(blocks)
	if err != nil {
		return err
	}

	if err := c.StartSession(); err != nil {
		return c.abort(err)
	}

	for i, text := range texts {
		blk, err := c.parser.ParseBlock(text)
		if err == nil {
			err = c.SubmitBlock(blk, i == len(texts)-1)
		}
		if err != nil {
			return c.abort(fmt.Errorf("block %d %q: %w", i, text, err))
		}
	}

	if err := c.StopSession(); err != nil {
		return c.abort(err)
	}

	return nil
}

func (c *Controller) abort(cause error) error {
	if !errors.Is(cause, i3cdev.ErrDeviceTransaction) && c.State() != IdleState {
		if err := c.disp.Control(wire.TypeStopBlocks, 0, false); err != nil {
			c.logger.Warn("failed to stop aborted block session", "error", err)
		}
	}

	if err := c.states.ToAborted(); err != nil {
		c.logger.Debug("abort in terminal state", "state", c.State(), "error", err)
	}

	return fmt.Errorf("%w: %w", ErrSessionAborted, cause)
}
