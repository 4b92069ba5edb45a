// SPDX-License-Identifier: Apache-2.0

package report

import (
	"errors"
	"fmt"
)

var (
	// ErrParse wraps malformed markup reported by the decoder.
	ErrParse = errors.New("malformed report document")
	// ErrInvalidDate marks a date_range value that is absent or not epoch seconds.
	ErrInvalidDate = errors.New("invalid report date")
	// ErrOutOfOrder is returned in strict mode when a record precedes its metadata or policy.
	ErrOutOfOrder = errors.New("record section before report metadata and policy")
)

// FormatError reports a date field whose text could not be converted.
type FormatError struct {
	Path string
	// Text is the offending content; empty when the element was absent.
	Text    string
	Missing bool
	Err     error
}

func (e *FormatError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s: %q is missing", ErrInvalidDate, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %q has value %q: %v", ErrInvalidDate, e.Path, e.Text, e.Err)
	}
	return fmt.Sprintf("%s: %q has value %q", ErrInvalidDate, e.Path, e.Text)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidDate
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
