// Package sink delivers received transfer data to a file or to standard output.
package sink

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/go-i3c/logger"
	"github.com/arloliu/go-i3c/payload"
)

// Format selects how data without an output file is rendered.
type Format int

const (
	// FormatList prints one "0x.." line per byte under a "received data:" heading.
	FormatList Format = iota
	// FormatHex prints offset-prefixed rows of 16 bytes under a header line.
	FormatHex
	// FormatInline prints all bytes on one "received data:" line.
	FormatInline
)

func (f Format) String() string {
	switch f {
	case FormatList:
		return "list"
	case FormatHex:
		return "hex"
	case FormatInline:
		return "inline"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat returns the format named s: "list", "hex" or "inline".
func ParseFormat(s string) (Format, error) {
	for _, f := range []Format{FormatList, FormatHex, FormatInline} {
		if f.String() == s {
			return f, nil
		}
	}

	return FormatList, fmt.Errorf("sink: unknown format %q", s)
}

// Sink writes transfer results.
type Sink struct {
	stdout io.Writer
	format Format
	logger logger.Logger
}

// Option configures a Sink.
type Option interface {
	apply(*Sink) error
}

type sinkOptFunc func(*Sink) error

func (f sinkOptFunc) apply(s *Sink) error { return f(s) }

// WithStdout sets the writer used in place of standard output.
func WithStdout(w io.Writer) Option {
	return sinkOptFunc(func(s *Sink) error {
		if w == nil {
			return errors.New("sink: writer must not be nil")
		}
		s.stdout = w

		return nil
	})
}

// WithFormat sets the rendering of data without an output file.
func WithFormat(f Format) Option {
	return sinkOptFunc(func(s *Sink) error {
		if f < FormatList || f > FormatInline {
			return fmt.Errorf("sink: unknown format %d", int(f))
		}
		s.format = f

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return sinkOptFunc(func(s *Sink) error {
		if l == nil {
			return errors.New("sink: logger must not be nil")
		}
		s.logger = l

		return nil
	})
}

// New creates a Sink writing to os.Stdout in FormatList.
func New(opts ...Option) (*Sink, error) {
	s := &Sink{
		stdout: os.Stdout,
		format: FormatList,
		logger: logger.GetLogger(),
	}
	for _, opt := range opts {
		if err := opt.apply(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Success reports a completed transfer.
func (s *Sink) Success(i int, text string) error {
	_, err := fmt.Fprintf(s.stdout, "Success on message %d: %s\n", i, text)
	return err
}

// Emit delivers data. With a non-empty output path the exact bytes replace the
// file's content; otherwise they are rendered to stdout, using header for the
// hex format.
func (s *Sink) Emit(header string, data []byte, output string) error {
	if output != "" {
		s.logger.Debug("write result file", "path", output, "bytes", len(data))
		return WriteFile(output, data)
	}

	switch s.format {
	case FormatHex:
		return HexDump(s.stdout, header, data)
	case FormatInline:
		return Inline(s.stdout, data)
	default:
		return List(s.stdout, data)
	}
}

// WriteFile creates or truncates path and writes data to it.
// Failures wrap payload.ErrIO.
func WriteFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", payload.ErrIO, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write %s: %w", payload.ErrIO, path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", payload.ErrIO, path, err)
	}

	return nil
}

const bytesPerRow = 16

// HexDump renders data as rows of up to 16 bytes, each prefixed with its
// six-digit hex offset. An empty header omits the header line.
func HexDump(w io.Writer, header string, data []byte) error {
	bw := bufio.NewWriter(w)
	if header != "" {
		fmt.Fprintf(bw, "---- %s ----\n", header)
	}

	for off := 0; off < len(data); off += bytesPerRow {
		fmt.Fprintf(bw, "%06x ", off)
		for _, b := range data[off:min(off+bytesPerRow, len(data))] {
			fmt.Fprintf(bw, "%02x ", b)
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// List renders data as an indented list with one byte per line.
func List(w io.Writer, data []byte) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("  received data:\n")
	for _, b := range data {
		fmt.Fprintf(bw, "    0x%02x\n", b)
	}

	return bw.Flush()
}

// Inline renders data on a single line.
func Inline(w io.Writer, data []byte) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("received data: ")
	for _, b := range data {
		fmt.Fprintf(bw, "0x%02x ", b)
	}
	bw.WriteByte('\n')

	return bw.Flush()
}
