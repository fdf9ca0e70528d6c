package wire

import (
	"fmt"

	"github.com/arloliu/go-i3c/directive"
)

// Encode maps one intent and its provisioned buffer into a record.
//
// The record owns buf. TOC is set; EncodeBatch clears it where the next
// transfer is grouped with this one.
func Encode(in directive.Intent, buf []byte) (Record, error) {
	if err := in.Validate(); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if len(buf) > directive.MaxLength {
		return Record{}, fmt.Errorf("%w: %d bytes", ErrLengthOverflow, len(buf))
	}

	t := in.Common()
	if t.Dir == directive.Read && len(buf) != t.Length {
		return Record{}, fmt.Errorf("%w: read buffer of %d bytes for length %d", ErrInvalidRecord, len(buf), t.Length)
	}

	rec := Record{
		Type: TypePrivXfer,
		Data: buf,
		Len:  uint16(len(buf)), //nolint:gosec // checked above
		Addr: t.Addr,
		I2C:  t.Bus == directive.I2C,
		Read: t.Dir == directive.Read,
		TOC:  true,
	}

	switch v := in.(type) {
	case *directive.PrivateTransfer:
	case *directive.CCCCommand:
		rec.Type = TypeCCC
		rec.CCC = v.Code
	case *directive.ComboTransfer:
		rec.Type = TypeComboXfer
		rec.Combo = true
		rec.Offset = v.Offset
	default:
		return Record{}, fmt.Errorf("%w: unsupported intent %T", ErrInvalidRecord, in)
	}

	return rec, nil
}

// EncodeBatch encodes intents with their buffers, in order, into one batch.
//
// It fails with ErrCapacityExceeded before encoding anything if the batch does
// not fit one submission.
func EncodeBatch(intents []directive.Intent, bufs [][]byte) ([]Record, error) {
	if len(intents) != len(bufs) {
		return nil, fmt.Errorf("%w: %d intents, %d buffers", ErrInvalidRecord, len(intents), len(bufs))
	}
	if err := CheckCapacity(len(intents)); err != nil {
		return nil, err
	}

	records := make([]Record, len(intents))
	for i, in := range intents {
		rec, err := Encode(in, bufs[i])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records[i] = rec
	}

	for i := 0; i+1 < len(intents); i++ {
		if intents[i+1].Common().Group {
			records[i].TOC = false
		}
	}

	return records, nil
}

// Control builds a zero-payload control record.
func Control(t RecordType, addr uint8, i2c bool) Record {
	return Record{Type: t, Addr: addr, I2C: i2c, TOC: true}
}

// Fields is the protocol view of a decoded record, used to compare an encoded
// record with the intent it came from.
type Fields struct {
	Type   RecordType
	Addr   uint8
	Len    uint16
	Offset uint16
	RnW    bool
	I2C    bool
	CCC    uint8
}

// Decode extracts the protocol fields of an encoded record.
func Decode(src []byte) (Fields, error) {
	raw, err := ParseRaw(src)
	if err != nil {
		return Fields{}, err
	}

	return Fields{
		Type:   raw.Type,
		Addr:   raw.Addr,
		Len:    raw.Len,
		Offset: raw.Offset,
		RnW:    raw.RnW != 0,
		I2C:    raw.I2CnI3C != 0,
		CCC:    raw.CCC,
	}, nil
}
