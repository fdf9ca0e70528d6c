package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// RecordType selects how the driver interprets a record.
type RecordType uint32

const (
	TypePrivXfer RecordType = iota
	TypeCCC
	TypeComboXfer
	TypeStartBlocks
	TypeLastBlock
	TypeStopBlocks
	TypeReset
)

func (t RecordType) String() string {
	switch t {
	case TypePrivXfer:
		return "priv-xfer"
	case TypeCCC:
		return "ccc"
	case TypeComboXfer:
		return "combo-xfer"
	case TypeStartBlocks:
		return "start-blocks"
	case TypeLastBlock:
		return "last-block"
	case TypeStopBlocks:
		return "stop-blocks"
	case TypeReset:
		return "reset"
	default:
		return fmt.Sprintf("type(%d)", uint32(t))
	}
}

// IsControl reports whether t is a zero-payload control record.
func (t RecordType) IsControl() bool {
	return t >= TypeStartBlocks && t <= TypeReset
}

// RecordSize is the size of one encoded record, padding included.
const RecordSize = 32

// field offsets inside an encoded record
const (
	offType    = 0
	offData    = 8
	offLen     = 16
	offAddr    = 18
	offOffset  = 20
	offCombo   = 22
	offI2CnI3C = 23
	offRnW     = 24
	offCCC     = 25
	offTOCWA   = 26
)

var (
	// ErrInvalidRecord indicates a record buffer or field that cannot be encoded or decoded.
	ErrInvalidRecord = errors.New("invalid transfer record")

	// ErrLengthOverflow indicates a payload longer than the 16-bit len field.
	ErrLengthOverflow = errors.New("payload exceeds 65535 bytes")
)

// Record is one transfer as submitted to the device. Data is owned by the
// record for the lifetime of one submission: the driver reads it for writes and
// fills it for reads.
type Record struct {
	Type   RecordType
	Data   []byte
	Len    uint16 // payload length; after a read, the count the driver wrote back
	Addr   uint8
	Offset uint16
	Combo  bool
	I2C    bool
	Read   bool
	CCC    uint8
	// TOC terminates the transaction after this record. A record followed by a
	// grouped record clears it so the driver issues a repeated start instead.
	TOC bool
}

// Payload returns the bytes the driver reported for this record.
func (r *Record) Payload() []byte {
	n := int(r.Len)
	if n > len(r.Data) {
		n = len(r.Data)
	}

	return r.Data[:n]
}

// Raw is the wire image of a record, with the data buffer reduced to its address.
type Raw struct {
	Type    RecordType
	Data    uint64
	Len     uint16
	Addr    uint8
	Offset  uint16
	Combo   uint8
	I2CnI3C uint8
	RnW     uint8
	CCC     uint8
	TOCWA   uint8
}

// Raw converts r to its wire image. dataAddr is the address of r.Data as seen by the driver.
func (r *Record) Raw(dataAddr uint64) Raw {
	return Raw{
		Type:    r.Type,
		Data:    dataAddr,
		Len:     r.Len,
		Addr:    r.Addr,
		Offset:  r.Offset,
		Combo:   b2u(r.Combo),
		I2CnI3C: b2u(r.I2C),
		RnW:     b2u(r.Read),
		CCC:     r.CCC,
		TOCWA:   b2u(r.TOC),
	}
}

// Update copies the driver's write-back from raw into r. Only the length can
// change; it is clamped to the buffer the record owns.
func (r *Record) Update(raw Raw) {
	n := raw.Len
	if int(n) > len(r.Data) {
		n = uint16(len(r.Data)) //nolint:gosec // len(r.Data) <= 0xffff by construction
	}
	r.Len = n
}

// Put encodes raw into dst, which must hold at least RecordSize bytes.
// Padding bytes are zeroed.
func (raw *Raw) Put(dst []byte) error {
	if len(dst) < RecordSize {
		return fmt.Errorf("%w: buffer of %d bytes, need %d", ErrInvalidRecord, len(dst), RecordSize)
	}

	clear(dst[:RecordSize])
	ne := binary.NativeEndian
	ne.PutUint32(dst[offType:], uint32(raw.Type))
	ne.PutUint64(dst[offData:], raw.Data)
	ne.PutUint16(dst[offLen:], raw.Len)
	dst[offAddr] = raw.Addr
	ne.PutUint16(dst[offOffset:], raw.Offset)
	dst[offCombo] = raw.Combo
	dst[offI2CnI3C] = raw.I2CnI3C
	dst[offRnW] = raw.RnW
	dst[offCCC] = raw.CCC
	dst[offTOCWA] = raw.TOCWA

	return nil
}

// ParseRaw decodes the first RecordSize bytes of src.
func ParseRaw(src []byte) (Raw, error) {
	if len(src) < RecordSize {
		return Raw{}, fmt.Errorf("%w: buffer of %d bytes, need %d", ErrInvalidRecord, len(src), RecordSize)
	}

	ne := binary.NativeEndian

	return Raw{
		Type:    RecordType(ne.Uint32(src[offType:])),
		Data:    ne.Uint64(src[offData:]),
		Len:     ne.Uint16(src[offLen:]),
		Addr:    src[offAddr],
		Offset:  ne.Uint16(src[offOffset:]),
		Combo:   src[offCombo],
		I2CnI3C: src[offI2CnI3C],
		RnW:     src[offRnW],
		CCC:     src[offCCC],
		TOCWA:   src[offTOCWA],
	}, nil
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}

	return 0
}
