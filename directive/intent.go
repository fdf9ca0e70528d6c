package directive

import (
	"errors"
	"fmt"
)

// Kind selects the transfer variant of an Intent.
type Kind uint8

const (
	// PrivateTransferKind is a plain read or write to one endpoint.
	PrivateTransferKind Kind = iota
	// CCCCommandKind is a Common Command Code executed instead of a data transfer.
	CCCCommandKind
	// ComboTransferKind is a 16-bit offset write followed by a read or write.
	ComboTransferKind
)

func (k Kind) String() string {
	switch k {
	case PrivateTransferKind:
		return "private"
	case CCCCommandKind:
		return "ccc"
	case ComboTransferKind:
		return "combo"
	default:
		return "unknown"
	}
}

// BusKind determines the endpoint addressing flag of a transfer.
type BusKind uint8

const (
	// I3C endpoints are addressed by the driver out of band.
	I3C BusKind = iota
	// I2C endpoints are addressed by Transfer.Addr.
	I2C
)

func (b BusKind) String() string {
	if b == I2C {
		return "i2c"
	}

	return "i3c"
}

// Direction of a transfer.
type Direction uint8

const (
	Write Direction = iota
	Read
)

func (d Direction) String() string {
	if d == Read {
		return "read"
	}

	return "write"
}

// MaxAddress is the largest 7-bit endpoint address.
const MaxAddress = 0x7f

// MaxLength is the largest payload the 16-bit wire length field can carry.
const MaxLength = 0xffff

// MaxInlineValues is the number of comma separated literals kept from a data token.
// Extra literals are dropped.
const MaxInlineValues = 255

// Source describes where the payload of a transfer comes from.
type Source interface {
	isSource()
	String() string
}

// None is the source of a read: the buffer is allocated fresh.
type None struct{}

// InlineValues is a literal byte list given on the command line.
type InlineValues []byte

// FilePath names a file whose entire content is the payload.
type FilePath string

func (None) isSource()         {}
func (InlineValues) isSource() {}
func (FilePath) isSource()     {}

func (None) String() string           { return "none" }
func (v InlineValues) String() string { return fmt.Sprintf("inline[%d]", len(v)) }
func (p FilePath) String() string     { return "file:" + string(p) }

// ErrInvalidIntent indicates an intent whose fields contradict its variant.
var ErrInvalidIntent = errors.New("invalid transfer intent")

// Transfer holds the fields shared by every intent variant.
type Transfer struct {
	Bus    BusKind
	Dir    Direction
	Addr   uint8
	Length int    // requested length of a read; derived from the payload for writes
	Source Source // None for reads, InlineValues or FilePath for writes
	Output string // optional destination file for read data
	// Group marks a transfer that shares its electrical session with its
	// predecessor instead of issuing its own start/stop.
	Group bool
	Text  string // the directive this intent was parsed from
}

// Common returns the shared transfer fields.
func (t *Transfer) Common() *Transfer { return t }

// validate checks the source/direction invariant.
func (t *Transfer) validate() error {
	if t.Length < 0 || t.Length > MaxLength {
		return fmt.Errorf("%w: length %d not in [0, %d]", ErrInvalidIntent, t.Length, MaxLength)
	}
	if t.Addr > MaxAddress {
		return fmt.Errorf("%w: address %#x exceeds %#x", ErrInvalidIntent, t.Addr, MaxAddress)
	}

	switch src := t.Source.(type) {
	case nil, None:
		if t.Dir == Write {
			return fmt.Errorf("%w: write without a data source", ErrInvalidIntent)
		}
	case InlineValues:
		if t.Dir == Read {
			return fmt.Errorf("%w: read with inline data", ErrInvalidIntent)
		}
		if len(src) > MaxInlineValues {
			return fmt.Errorf("%w: %d inline values exceed %d", ErrInvalidIntent, len(src), MaxInlineValues)
		}
	case FilePath:
		if t.Dir == Read {
			return fmt.Errorf("%w: read with a file data source", ErrInvalidIntent)
		}
		if src == "" {
			return fmt.Errorf("%w: empty file path", ErrInvalidIntent)
		}
	}

	if t.Dir == Write && t.Output != "" {
		return fmt.Errorf("%w: write with an output file", ErrInvalidIntent)
	}

	return nil
}

// Intent is a parsed, protocol-agnostic description of one requested operation.
// The concrete type is one of *PrivateTransfer, *CCCCommand or *ComboTransfer.
type Intent interface {
	Kind() Kind
	Common() *Transfer
	// Validate reports ErrInvalidIntent if the variant's fields are inconsistent.
	Validate() error
	isIntent()
}

// PrivateTransfer is a plain read or write.
type PrivateTransfer struct {
	Transfer
}

// CCCCommand executes a Common Command Code, optionally directed at Addr.
type CCCCommand struct {
	Transfer
	Code uint8
	// Direct is true when the command targets a single endpoint rather than broadcasting.
	Direct bool
}

// ComboTransfer writes Offset as a 16-bit register offset, then reads or writes
// in the same electrical transaction.
type ComboTransfer struct {
	Transfer
	Offset uint16
}

var (
	_ Intent = (*PrivateTransfer)(nil)
	_ Intent = (*CCCCommand)(nil)
	_ Intent = (*ComboTransfer)(nil)
)

func (*PrivateTransfer) Kind() Kind { return PrivateTransferKind }
func (*CCCCommand) Kind() Kind      { return CCCCommandKind }
func (*ComboTransfer) Kind() Kind   { return ComboTransferKind }

func (*PrivateTransfer) isIntent() {}
func (*CCCCommand) isIntent()      {}
func (*ComboTransfer) isIntent()   {}

func (p *PrivateTransfer) Validate() error { return p.validate() }

func (c *CCCCommand) Validate() error {
	if c.Bus != I3C {
		return fmt.Errorf("%w: CCC commands are I3C only", ErrInvalidIntent)
	}
	// the wire has no direct flag; a nonzero address is what makes a CCC direct
	if c.Direct != (c.Addr != 0) {
		return fmt.Errorf("%w: direct CCC needs a nonzero address, broadcast needs none", ErrInvalidIntent)
	}

	return c.validate()
}

func (c *ComboTransfer) Validate() error { return c.validate() }

// String renders an intent for logs.
func String(in Intent) string {
	t := in.Common()
	switch v := in.(type) {
	case *CCCCommand:
		return fmt.Sprintf("ccc(%#02x) %s addr=%#02x len=%d src=%s", v.Code, t.Dir, t.Addr, t.Length, t.Source)
	case *ComboTransfer:
		return fmt.Sprintf("combo %s %s addr=%#02x offset=%#04x len=%d src=%s", t.Bus, t.Dir, t.Addr, v.Offset, t.Length, t.Source)
	default:
		return fmt.Sprintf("private %s %s addr=%#02x len=%d src=%s", t.Bus, t.Dir, t.Addr, t.Length, t.Source)
	}
}
