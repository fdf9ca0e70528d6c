package directive

import (
	"errors"
	"strconv"
	"strings"
)

// BlockSeparator joins the directives of one block session.
const BlockSeparator = "+"

// ParseBlock parses one block directive, "r:length[:file]" or "w:data|file".
//
// Blocks carry no endpoint; the session's START record addresses the target,
// so the returned transfer leaves Bus and Addr at their zero values.
func (p *Parser) ParseBlock(s string) (*PrivateTransfer, error) {
	t := newTokenizer(s, ':')
	xfer := &PrivateTransfer{Transfer: Transfer{Text: s}}

	if err := parseDirection(t, s, &xfer.Transfer); err != nil {
		return nil, err
	}

	if xfer.Dir == Read {
		xfer.Source = None{}
		if err := parseReadTail(t, s, &xfer.Transfer); err != nil {
			return nil, err
		}

		return xfer, nil
	}

	if err := p.parseData(t, s, &xfer.Transfer); err != nil {
		return nil, err
	}

	return xfer, nil
}

// SplitBlocks splits a '+'-joined block directive and checks every block
// before the device is touched.
//
// Write data that names an existing file, or the output file of an earlier
// read block of the same session, is left for ParseBlock to resolve. Any other
// write data must be a valid literal list.
func (p *Parser) SplitBlocks(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, missingError(s, "blocks")
	}

	blocks := strings.Split(s, BlockSeparator)
	outputs := make(map[string]bool)
	pos := 0
	for i, b := range blocks {
		if err := p.checkBlock(b, outputs); err != nil {
			err.Directive = s
			err.Pos += pos
			err.Field = "block " + strconv.Itoa(i) + " " + err.Field

			return nil, err
		}
		pos += len(b) + len(BlockSeparator)
	}

	return blocks, nil
}

// checkBlock validates one block and records the output file of a read block in outputs.
func (p *Parser) checkBlock(s string, outputs map[string]bool) *SyntaxError {
	t := newTokenizer(s, ':')
	var xfer Transfer

	err := parseDirection(t, s, &xfer)
	if err == nil {
		if xfer.Dir == Read {
			err = parseReadTail(t, s, &xfer)
			if err == nil && xfer.Output != "" {
				outputs[xfer.Output] = true
			}
		} else {
			err = p.checkBlockData(t, s, outputs)
		}
	}
	if err == nil {
		return nil
	}

	var se *SyntaxError
	if errors.As(err, &se) {
		return se
	}

	return &SyntaxError{Directive: s, Field: "block", Reason: err.Error(), Err: err}
}

func (p *Parser) checkBlockData(t *tokenizer, s string, outputs map[string]bool) error {
	f, ok := t.rest()
	if !ok || f.text == "" {
		return missingError(s, "data")
	}
	if outputs[f.text] || p.probe(f.text) {
		return nil
	}
	_, err := parseInline(s, f)

	return err
}
