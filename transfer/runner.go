// Package transfer runs a list of directives as one batched device transaction
// and reports the results.
package transfer

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

// Runner parses, provisions, encodes and dispatches directives.
//
// Runner is not goroutine-safe.
type Runner struct {
	disp   *i3cdev.Dispatcher
	parser *directive.Parser
	prov   *payload.Provisioner
	sink   *sink.Sink
	logger logger.Logger
}

// Option configures a Runner.
type Option interface {
	apply(*Runner) error
}

type runnerOptFunc func(*Runner) error

func (f runnerOptFunc) apply(r *Runner) error { return f(r) }

// WithParser sets the directive parser.
func WithParser(p *directive.Parser) Option {
	return runnerOptFunc(func(r *Runner) error {
		if p == nil {
			return errors.New("transfer: parser must not be nil")
		}
		r.parser = p

		return nil
	})
}

// WithProvisioner sets the buffer provisioner.
func WithProvisioner(p *payload.Provisioner) Option {
	return runnerOptFunc(func(r *Runner) error {
		if p == nil {
			return errors.New("transfer: provisioner must not be nil")
		}
		r.prov = p

		return nil
	})
}

// WithSink sets where results are reported.
func WithSink(s *sink.Sink) Option {
	return runnerOptFunc(func(r *Runner) error {
		if s == nil {
			return errors.New("transfer: sink must not be nil")
		}
		r.sink = s

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return runnerOptFunc(func(r *Runner) error {
		if l == nil {
			return errors.New("transfer: logger must not be nil")
		}
		r.logger = l

		return nil
	})
}

// NewRunner creates a Runner for dev.
func NewRunner(dev i3cdev.Device, opts ...Option) (*Runner, error) {
	r := &Runner{logger: logger.GetLogger()}
	for _, opt := range opts {
		if err := opt.apply(r); err != nil {
			return nil, err
		}
	}

	var err error
	if r.disp, err = i3cdev.NewDispatcher(dev, i3cdev.WithLogger(r.logger)); err != nil {
		return nil, err
	}
	if r.parser == nil {
		if r.parser, err = directive.NewParser(); err != nil {
			return nil, err
		}
	}
	if r.prov == nil {
		if r.prov, err = payload.NewProvisioner(payload.WithLogger(r.logger)); err != nil {
			return nil, err
		}
	}
	if r.sink == nil {
		if r.sink, err = sink.New(sink.WithLogger(r.logger)); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Run executes directives as one batch. Every directive is parsed before any
// buffer is provisioned and every buffer is provisioned before the device is
// called. On success each directive is reported as "Success on message <i>"
// followed by its read data, if any.
func (r *Runner) Run(ds []directive.Directive) error {
	intents, err := r.parser.ParseAll(ds)
	if err != nil {
		return err
	}

	return r.Execute(intents, func(records []wire.Record) error {
		for i := range records {
			if err := r.sink.Success(i, ds[i].Text); err != nil {
				return err
			}
			if !records[i].Read {
				continue
			}
			if err := r.sink.Emit("", records[i].Payload(), intents[i].Common().Output); err != nil {
				return err
			}
		}

		return nil
	})
}

// Execute provisions, encodes and dispatches intents as one batch, then passes
// the completed records to done. Buffers are released when Execute returns, so
// done must not retain record data.
func (r *Runner) Execute(intents []directive.Intent, done func(records []wire.Record) error) error {
	if err := wire.CheckCapacity(len(intents)); err != nil {
		return err
	}

	bufs := make([][]byte, 0, len(intents))
	defer func() {
		for _, buf := range bufs {
			r.prov.Release(buf)
		}
	}()

	for i, in := range intents {
		buf, err := r.prov.Provision(in)
		if err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		bufs = append(bufs, buf)
	}

	records, err := wire.EncodeBatch(intents, bufs)
	if err != nil {
		return err
	}

	r.logger.Debug("submit transfers", "records", len(records), "bytes", r.prov.Allocated())
	if err := r.disp.Dispatch(records); err != nil {
		return err
	}

	if done == nil {
		return nil
	}

	return done(records)
}
