package ld

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// Indicates that Finish was called on a writer with no channel records
	// or no channel payloads written. The header pointers would have to
	// hold the zero sentinel, which marks them as absent.
	ErrNoChannels = errors.New("no channel data written")
	// Indicates an attempt to decode samples of the recognized but
	// undecodable f16 datatype.
	ErrF16Unsupported = errors.New("decoding f16 samples is not supported")
	// Indicates an attempt to read the payload of a channel whose datatype
	// carries no usable data.
	ErrInvalidData = errors.New("channel datatype holds no decodable data")
	// Indicates a channel descriptor list that revisits an address instead
	// of terminating at the zero sentinel.
	ErrChannelCycle = errors.New("channel descriptor list contains a cycle")
)

// InvalidMarkerError indicates that the first four bytes of the file do not
// hold the expected magic marker. It almost certainly means the file is not
// an LD container, or is corrupt; decoding aborts before any further field
// is read.
type InvalidMarkerError struct {
	Found    uint32
	Expected uint32
}

func (err InvalidMarkerError) Error() string {
	return fmt.Sprintf("invalid header marker: found %d, expected %d", err.Found, err.Expected)
}

// TextError indicates that a fixed-width text field does not hold valid
// UTF-8 after null truncation.
type TextError struct {
	// Field names the offending record field.
	Field string
}

func (err TextError) Error() string {
	return fmt.Sprintf("text field %q is not valid UTF-8", err.Field)
}

// SampleTypeError indicates a sample supplied to the writer whose type does
// not match the owning channel's declared datatype.
type SampleTypeError struct {
	Channel string
	Want    string
	Got     string
}

func (err SampleTypeError) Error() string {
	return fmt.Sprintf("channel %q: sample type %s does not match declared datatype %s", err.Channel, err.Got, err.Want)
}

// DataError wraps an error that occurred while decoding or encoding byte
// data.
type DataError struct {
	// Offset is the byte offset where the error occurred.
	Offset int64

	Cause error
}

func (err DataError) Error() string {
	var s strings.Builder
	s.WriteString("data error")
	if err.Offset >= 0 {
		s.WriteString(" at ")
		s.Write(strconv.AppendInt(nil, err.Offset, 10))
	}
	if err.Cause != nil {
		s.WriteString(": ")
		s.WriteString(err.Cause.Error())
	}
	return s.String()
}

func (err DataError) Unwrap() error {
	return err.Cause
}

// ReserveError is a warning indicating unexpected content in bytes presumed
// to be reserved.
type ReserveError struct {
	// Offset is the byte offset of the reserved region.
	Offset int64
	Bytes  []byte
}

func (err ReserveError) Error() string {
	return fmt.Sprintf("reserved region at %d is non-zero: % 02X", err.Offset, err.Bytes)
}

// ChannelCountError is a warning indicating that the channel count declared
// by the header does not match the length of the channel descriptor list.
type ChannelCountError struct {
	Declared uint32
	Walked   int
}

func (err ChannelCountError) Error() string {
	return fmt.Sprintf("header declares %d channels, list walk found %d", err.Declared, err.Walked)
}
