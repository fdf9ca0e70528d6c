// Package payload resolves the data source of a transfer intent into an owned byte buffer.
package payload

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/go-i3c/directive"
	"github.com/arloliu/go-i3c/logger"
)

var (
	// ErrIO indicates a payload or result file that could not be opened, read or written.
	ErrIO = errors.New("i/o error")

	// ErrAllocationFailure indicates a buffer request beyond the provisioner's budget.
	ErrAllocationFailure = errors.New("buffer allocation failure")
)

// DefaultMaxTotal is the default number of buffer bytes one provisioner hands out.
const DefaultMaxTotal = 64 << 20

// Provisioner allocates transfer buffers and tracks them against a byte budget.
//
// Provisioner is not goroutine-safe; one invocation owns one provisioner.
type Provisioner struct {
	maxTotal  int
	allocated int
	logger    logger.Logger
}

// Option configures a Provisioner.
type Option interface {
	apply(*Provisioner) error
}

type provOptFunc func(*Provisioner) error

func (f provOptFunc) apply(p *Provisioner) error { return f(p) }

// WithMaxTotal limits the number of bytes outstanding at once.
func WithMaxTotal(n int) Option {
	return provOptFunc(func(p *Provisioner) error {
		if n <= 0 {
			return errors.New("payload: max total must be positive")
		}
		p.maxTotal = n

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return provOptFunc(func(p *Provisioner) error {
		if l == nil {
			return errors.New("payload: logger must not be nil")
		}
		p.logger = l

		return nil
	})
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(opts ...Option) (*Provisioner, error) {
	p := &Provisioner{
		maxTotal: DefaultMaxTotal,
		logger:   logger.GetLogger(),
	}
	for _, opt := range opts {
		if err := opt.apply(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Provision returns the buffer for in.
//
// Reads get a zeroed buffer of the requested length. Writes get a fresh copy of
// the inline literals or the whole content of the named file, and the intent's
// Length is set to the payload size.
func (p *Provisioner) Provision(in directive.Intent) ([]byte, error) {
	t := in.Common()

	if t.Dir == directive.Read {
		return p.alloc(t.Length)
	}

	var (
		buf []byte
		err error
	)
	switch src := t.Source.(type) {
	case directive.InlineValues:
		buf, err = p.alloc(len(src))
		if err == nil {
			copy(buf, src)
		}
	case directive.FilePath:
		buf, err = p.readFile(string(src))
	default:
		err = fmt.Errorf("%w: write %q has no data source", directive.ErrMalformedDirective, t.Text)
	}
	if err != nil {
		return nil, err
	}

	t.Length = len(buf)
	p.logger.Debug("payload provisioned", "directive", t.Text, "source", t.Source, "len", len(buf))

	return buf, nil
}

// Release returns the bytes of buf to the budget. The caller must not use buf afterwards.
func (p *Provisioner) Release(buf []byte) {
	p.allocated -= len(buf)
	if p.allocated < 0 {
		p.allocated = 0
	}
}

// Allocated returns the number of bytes currently handed out.
func (p *Provisioner) Allocated() int { return p.allocated }

func (p *Provisioner) alloc(n int) ([]byte, error) {
	if n < 0 || n > directive.MaxLength {
		return nil, fmt.Errorf("%w: length %d not in [0, %d]", directive.ErrMalformedDirective, n, directive.MaxLength)
	}
	if p.allocated+n > p.maxTotal {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrAllocationFailure, n, p.allocated, p.maxTotal)
	}
	p.allocated += n

	return make([]byte, n), nil
}

// readFile sizes the buffer by seeking to the end of the file, then reads it whole.
func (p *Provisioner) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: seek %s: %w", ErrIO, path, err)
	}
	if size > directive.MaxLength {
		return nil, fmt.Errorf("%w: %s is %d bytes, the limit is %d", directive.ErrMalformedDirective, path, size, directive.MaxLength)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek %s: %w", ErrIO, path, err)
	}

	buf, err := p.alloc(int(size))
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(f, buf); err != nil {
		p.Release(buf)
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}

	return buf, nil
}
