package types

import (
	"fmt"
)

// ErrUnsupportedFormat is returned when a container cannot be opened or its
// streams cannot be probed.
type ErrUnsupportedFormat struct {
	URL string
	Err error
}

var _ error = ErrUnsupportedFormat{}

func (e ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported format of '%s': %v", e.URL, e.Err)
}

func (e ErrUnsupportedFormat) Unwrap() error {
	return e.Err
}

// ErrCodec is returned when a codec is not found or cannot be opened.
type ErrCodec struct {
	StreamIndex int
	CodecName   string
	Err         error
}

var _ error = ErrCodec{}

func (e ErrCodec) Error() string {
	return fmt.Sprintf("codec '%s' of stream #%d is not usable: %v", e.CodecName, e.StreamIndex, e.Err)
}

func (e ErrCodec) Unwrap() error {
	return e.Err
}

// ErrRange is returned when a seek target cannot be reached.
type ErrRange struct {
	URL      string
	Position float64
	Err      error
}

var _ error = ErrRange{}

func (e ErrRange) Error() string {
	return fmt.Sprintf("unable to seek '%s' to %.6fs: %v", e.URL, e.Position, e.Err)
}

func (e ErrRange) Unwrap() error {
	return e.Err
}

// ErrRuntime is an unexpected failure while reading or decoding.
type ErrRuntime struct {
	Op  string
	Err error
}

var _ error = ErrRuntime{}

func (e ErrRuntime) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e ErrRuntime) Unwrap() error {
	return e.Err
}

// ErrInvariantViolation signals a bug in the caller or in this package
// (for example decoding with a codec that was never opened); it is never
// caused by bad input.
type ErrInvariantViolation struct {
	Reason string
}

var _ error = ErrInvariantViolation{}

func (e ErrInvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Reason)
}

type ErrNoConsumer struct{}

var _ error = ErrNoConsumer{}

func (ErrNoConsumer) Error() string { return "no frame consumer is given" }

// ErrNotRegularFile is returned when a local path does not point to a
// regular file.
type ErrNotRegularFile struct {
	Path string
}

var _ error = ErrNotRegularFile{}

func (e ErrNotRegularFile) Error() string {
	return fmt.Sprintf("'%s' is not a regular file", e.Path)
}
