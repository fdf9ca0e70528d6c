package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotNumber indicates a token that is not a C-style integer literal.
var ErrNotNumber = errors.New("not an integer literal")

// ErrOutOfRange indicates a literal that does not fit the requested range.
var ErrOutOfRange = errors.New("value out of range")

// ParseUint parses a C-style unsigned integer literal: decimal, 0x hex, or leading-zero octal.
// The value must be in [0, limit].
func ParseUint[T uint8 | uint16 | uint32 | uint64 | int](s string, limit T) (T, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrNotNumber)
	}
	if strings.ContainsRune(s, '_') {
		return 0, fmt.Errorf("%w: %q", ErrNotNumber, s)
	}

	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s > %d", ErrOutOfRange, s, uint64(limit))
		}
		return 0, fmt.Errorf("%w: %q", ErrNotNumber, s)
	}
	if v > uint64(limit) {
		return 0, fmt.Errorf("%w: %s > %#x", ErrOutOfRange, s, uint64(limit))
	}

	return T(v), nil
}

// IsNumber reports whether s is a C-style unsigned integer literal of any size.
func IsNumber(s string) bool {
	_, err := ParseUint[uint64](s, ^uint64(0))
	return err == nil
}

// CloneSlice clones slice with cloneSize.
// This function will use src length as the clone size if cloneSize is 0.
func CloneSlice[T any](src []T, cloneSize int) []T {
	if cloneSize == 0 {
		cloneSize = len(src)
	}
	clone := make([]T, cloneSize)
	copy(clone, src)

	return clone
}
