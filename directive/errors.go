package directive

import (
	"errors"
	"fmt"
)

// ErrMalformedDirective indicates a directive with bad syntax or an out-of-range field.
var ErrMalformedDirective = errors.New("malformed directive")

// SyntaxError describes where a directive failed to parse.
type SyntaxError struct {
	Directive string // the full directive text
	Field     string // name of the positional field, e.g. "address"
	Pos       int    // byte offset of the field in Directive
	Reason    string
	Err       error // underlying cause, may be nil
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed directive %q: <%s> at column %d: %s", e.Directive, e.Field, e.Pos+1, e.Reason)
}

// Unwrap makes errors.Is match both ErrMalformedDirective and the underlying cause.
func (e *SyntaxError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedDirective}
	}

	return []error{ErrMalformedDirective, e.Err}
}

func fieldError(input string, f field, name string, reason string, cause error) *SyntaxError {
	if cause != nil {
		reason = fmt.Sprintf("%s: %v", reason, cause)
	}

	return &SyntaxError{Directive: input, Field: name, Pos: f.pos, Reason: reason, Err: cause}
}

func missingError(input string, name string) *SyntaxError {
	return &SyntaxError{Directive: input, Field: name, Pos: len(input), Reason: "missing field"}
}
