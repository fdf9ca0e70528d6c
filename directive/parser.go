package directive

import (
	"errors"
	"os"
	"strings"

	"github.com/arloliu/go-i3c/internal/util"
)

// Variant selects the grammar used to parse a directive.
type Variant uint8

const (
	VariantRead Variant = iota
	VariantWrite
	VariantCCC
	VariantCombo
)

func (v Variant) String() string {
	switch v {
	case VariantRead:
		return "read"
	case VariantWrite:
		return "write"
	case VariantCCC:
		return "ccc"
	case VariantCombo:
		return "combo"
	default:
		return "unknown"
	}
}

// FileProbe reports whether a data token names a readable file.
type FileProbe func(path string) bool

// Parser turns directive strings into intents. A Parser is stateless apart from
// its options and may be reused.
type Parser struct {
	probe FileProbe
}

// Option configures a Parser.
type Option interface {
	apply(*Parser) error
}

type parserOptFunc func(*Parser) error

func (f parserOptFunc) apply(p *Parser) error { return f(p) }

// WithFileProbe replaces the check used to decide whether a data token is a file path.
func WithFileProbe(probe FileProbe) Option {
	return parserOptFunc(func(p *Parser) error {
		if probe == nil {
			return errors.New("directive: file probe must not be nil")
		}
		p.probe = probe

		return nil
	})
}

// NewParser creates a Parser. By default a data token is a file path when it
// names an existing regular file.
func NewParser(opts ...Option) (*Parser, error) {
	p := &Parser{probe: regularFileExists}
	for _, opt := range opts {
		if err := opt.apply(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func regularFileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// Parse parses s with the grammar of v.
func (p *Parser) Parse(v Variant, s string) (Intent, error) {
	switch v {
	case VariantRead:
		return p.ParseRead(s)
	case VariantWrite:
		return p.ParseWrite(s)
	case VariantCCC:
		return p.ParseCCC(s)
	case VariantCombo:
		return p.ParseCombo(s)
	default:
		return nil, &SyntaxError{Directive: s, Field: "variant", Reason: "unknown directive variant"}
	}
}

// ParseRead parses "[type:]address:length[:file]". A lone "length" or an empty
// address reads from the I3C endpoint.
func (p *Parser) ParseRead(s string) (*PrivateTransfer, error) {
	t := newTokenizer(s, ':')
	xfer := &PrivateTransfer{Transfer: Transfer{Dir: Read, Source: None{}, Text: s}}

	if err := p.parseEndpoint(t, s, &xfer.Transfer); err != nil {
		return nil, err
	}
	if err := parseReadTail(t, s, &xfer.Transfer); err != nil {
		return nil, err
	}

	return xfer, nil
}

// ParseWrite parses "[type:]address:data|file".
func (p *Parser) ParseWrite(s string) (*PrivateTransfer, error) {
	t := newTokenizer(s, ':')
	xfer := &PrivateTransfer{Transfer: Transfer{Dir: Write, Text: s}}

	if err := p.parseEndpoint(t, s, &xfer.Transfer); err != nil {
		return nil, err
	}
	if err := p.parseData(t, s, &xfer.Transfer); err != nil {
		return nil, err
	}

	return xfer, nil
}

// ParseCCC parses "command:r|w:[address]:length[:file]|data|file".
//
// CCC commands are always I3C. An empty address broadcasts the command, a
// present one directs it at that endpoint.
func (p *Parser) ParseCCC(s string) (*CCCCommand, error) {
	t := newTokenizer(s, ':')
	cmd := &CCCCommand{Transfer: Transfer{Bus: I3C, Text: s}}

	f, ok := t.next()
	if !ok || f.text == "" {
		return nil, missingError(s, "command")
	}
	code, err := util.ParseUint[uint8](f.text, 0xff)
	if err != nil {
		return nil, fieldError(s, f, "command", "CCC code must be 0..255", err)
	}
	cmd.Code = code

	if err := parseDirection(t, s, &cmd.Transfer); err != nil {
		return nil, err
	}

	f, ok = t.next()
	if !ok {
		return nil, missingError(s, "address")
	}
	if f.text != "" {
		addr, err := parseAddress(s, f)
		if err != nil {
			return nil, err
		}
		if addr == 0 {
			return nil, fieldError(s, f, "address", "a direct CCC needs a nonzero address, leave it empty to broadcast", nil)
		}
		cmd.Addr = addr
		cmd.Direct = true
	}

	if cmd.Dir == Read {
		cmd.Source = None{}
		err = parseReadTail(t, s, &cmd.Transfer)
	} else {
		err = p.parseData(t, s, &cmd.Transfer)
	}
	if err != nil {
		return nil, err
	}

	return cmd, nil
}

// ParseCombo parses "[address:]offset:r|w:length[:file]|data|file".
func (p *Parser) ParseCombo(s string) (*ComboTransfer, error) {
	t := newTokenizer(s, ':')
	combo := &ComboTransfer{Transfer: Transfer{Text: s}}

	first, ok := t.next()
	if !ok {
		return nil, missingError(s, "offset")
	}
	second, ok := t.peek()
	if !ok {
		return nil, missingError(s, "r|w")
	}

	offsetField := first
	if !isDirection(second.text) {
		// address present (possibly empty)
		if first.text == "" {
			combo.Bus = I3C
		} else {
			addr, err := parseAddress(s, first)
			if err != nil {
				return nil, err
			}
			combo.Bus = I2C
			combo.Addr = addr
		}
		offsetField, _ = t.next()
	}

	if offsetField.text == "" {
		return nil, fieldError(s, offsetField, "offset", "missing value", nil)
	}
	offset, err := util.ParseUint[uint16](offsetField.text, 0xffff)
	if err != nil {
		return nil, fieldError(s, offsetField, "offset", "offset must be 0..0xffff", err)
	}
	combo.Offset = offset

	if err := parseDirection(t, s, &combo.Transfer); err != nil {
		return nil, err
	}

	if combo.Dir == Read {
		combo.Source = None{}
		err = parseReadTail(t, s, &combo.Transfer)
	} else {
		err = p.parseData(t, s, &combo.Transfer)
	}
	if err != nil {
		return nil, err
	}

	return combo, nil
}

// parseEndpoint consumes the optional type token and the address of a private transfer.
func (p *Parser) parseEndpoint(t *tokenizer, s string, xfer *Transfer) error {
	f, ok := t.peek()
	if !ok {
		return missingError(s, "address")
	}

	explicit := false
	switch strings.ToLower(f.text) {
	case "i2c":
		xfer.Bus = I2C
		explicit = true
	case "i3c":
		xfer.Bus = I3C
		explicit = true
	}

	if explicit {
		_, _ = t.next()
		f, ok = t.peek()
		if !ok {
			return missingError(s, "address")
		}
	} else if f.text != "" && !util.IsNumber(f.text) {
		if t.remaining() > 2 || (xfer.Dir == Read && t.remaining() > 1) {
			return fieldError(s, f, "type", "type must be i2c or i3c", nil)
		}
	}

	// a lone trailing field is the length or the data of an I3C transfer
	if !explicit && t.remaining() == 1 {
		xfer.Bus = I3C
		return nil
	}

	f, _ = t.next()
	if f.text == "" {
		if xfer.Bus == I2C && explicit {
			return fieldError(s, f, "address", "I2C transfers need an endpoint address", nil)
		}
		xfer.Bus = I3C

		return nil
	}

	addr, err := parseAddress(s, f)
	if err != nil {
		return err
	}
	xfer.Addr = addr
	if !explicit {
		xfer.Bus = I2C
	}

	return nil
}

// parseReadTail consumes "length[:file]".
func parseReadTail(t *tokenizer, s string, xfer *Transfer) error {
	f, ok := t.next()
	if !ok || f.text == "" {
		return missingError(s, "length")
	}

	length, err := util.ParseUint[int](f.text, MaxLength)
	if err != nil {
		return fieldError(s, f, "length", "length must be 0..65535", err)
	}
	xfer.Length = length

	if out, ok := t.rest(); ok {
		if out.text == "" {
			return fieldError(s, out, "file", "empty output file name", nil)
		}
		xfer.Output = out.text
	}

	return nil
}

// parseData consumes the remaining input as a data token.
func (p *Parser) parseData(t *tokenizer, s string, xfer *Transfer) error {
	f, ok := t.rest()
	if !ok || f.text == "" {
		return missingError(s, "data")
	}

	src, err := p.resolveData(s, f)
	if err != nil {
		return err
	}
	xfer.Source = src
	if v, ok := src.(InlineValues); ok {
		xfer.Length = len(v)
	}

	return nil
}

// resolveData prefers a readable file over a literal list, like the historical tools.
func (p *Parser) resolveData(s string, f field) (Source, error) {
	if p.probe(f.text) {
		return FilePath(f.text), nil
	}

	values, err := parseInline(s, f)
	if err != nil {
		return nil, err
	}

	return values, nil
}

// parseInline splits a comma separated literal list, keeping at most MaxInlineValues
// entries. Empty items are skipped, so "1,,2," packs [1 2].
func parseInline(s string, f field) (InlineValues, error) {
	lt := newTokenizer(f.text, ',')
	values := make(InlineValues, 0, 8)

	for len(values) < MaxInlineValues {
		item, ok := lt.next()
		if !ok {
			break
		}
		if item.text == "" {
			continue
		}
		item.pos += f.pos

		v, err := util.ParseUint[uint8](item.text, 0xff)
		if err != nil {
			if len(values) == 0 && !util.IsNumber(item.text) {
				return nil, fieldError(s, f, "data", "neither a readable file nor a literal list", err)
			}
			return nil, fieldError(s, item, "data", "data bytes must be 0..255", err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fieldError(s, f, "data", "empty literal list", nil)
	}

	return values, nil
}

func parseAddress(s string, f field) (uint8, error) {
	addr, err := util.ParseUint[uint8](f.text, MaxAddress)
	if err != nil {
		return 0, fieldError(s, f, "address", "address must be 0..0x7f", err)
	}

	return addr, nil
}

func isDirection(s string) bool {
	switch strings.ToLower(s) {
	case "r", "w":
		return true
	}

	return false
}

func parseDirection(t *tokenizer, s string, xfer *Transfer) error {
	f, ok := t.next()
	if !ok {
		return missingError(s, "r|w")
	}

	switch strings.ToLower(f.text) {
	case "r":
		xfer.Dir = Read
	case "w":
		xfer.Dir = Write
	default:
		return fieldError(s, f, "r|w", "direction must be r or w", nil)
	}

	return nil
}
