package motec

import (
	"fmt"
	"strconv"
)

// Datatype identifies the on-file representation of a channel's samples.
type Datatype uint8

const (
	// DatatypeInvalid marks (code, width) pairs emitted by some exporters
	// for channels that carry no usable data. Channels tagged Invalid can
	// be enumerated but their payload cannot be decoded.
	DatatypeInvalid Datatype = iota

	// Beacon datatypes originate from the track beacon signal class. They
	// are bit-layout-identical to plain integers of the same width.
	DatatypeBeacon16
	DatatypeBeacon32

	DatatypeI16
	DatatypeI32

	// DatatypeF16 is recognized but not decodable.
	DatatypeF16
	DatatypeF32
)

var datatypeStrings = map[Datatype]string{
	DatatypeBeacon16: "beacon16",
	DatatypeBeacon32: "beacon32",
	DatatypeI16:      "i16",
	DatatypeI32:      "i32",
	DatatypeF16:      "f16",
	DatatypeF32:      "f32",
}

// String returns a string representation of the datatype. If the datatype is
// not valid, then the returned value will be "invalid".
func (t Datatype) String() string {
	s, ok := datatypeStrings[t]
	if !ok {
		return "invalid"
	}
	return s
}

// DatatypeFromString returns a Datatype from its string representation.
// DatatypeInvalid is returned if the string does not map to a datatype.
func DatatypeFromString(s string) Datatype {
	for t, ts := range datatypeStrings {
		if ts == s {
			return t
		}
	}
	return DatatypeInvalid
}

// Size returns the number of bytes one sample of this datatype occupies on
// file. Invalid datatypes occupy no bytes.
func (t Datatype) Size() int {
	switch t {
	case DatatypeBeacon16, DatatypeI16, DatatypeF16:
		return 2
	case DatatypeBeacon32, DatatypeI32, DatatypeF32:
		return 4
	}
	return 0
}

// TypeCode returns the on-file type code for the datatype, used together with
// Size when encoding a channel descriptor.
func (t Datatype) TypeCode() uint16 {
	switch t {
	case DatatypeBeacon16, DatatypeBeacon32:
		return 0
	case DatatypeI16, DatatypeI32:
		return 3
	case DatatypeF16, DatatypeF32:
		return 7
	}
	return 0
}

// UnrecognizedDatatypeError indicates a (type code, byte width) pair not
// known by the codec. Both values are carried for diagnosis.
type UnrecognizedDatatypeError struct {
	Code  uint16
	Width uint16
}

func (err UnrecognizedDatatypeError) Error() string {
	return fmt.Sprintf("unrecognized datatype (code: %d, width: %d)", err.Code, err.Width)
}

// DatatypeFromTypeAndSize maps the (type code, byte width) pair found in a
// channel descriptor to a Datatype. The mapping is a fixed table of pairs
// observed in files produced by known hardware and exporters; any other pair
// yields an UnrecognizedDatatypeError.
func DatatypeFromTypeAndSize(code, width uint16) (Datatype, error) {
	switch [2]uint16{code, width} {
	case [2]uint16{0, 2}:
		return DatatypeBeacon16, nil
	case [2]uint16{0, 4}:
		return DatatypeBeacon32, nil
	case [2]uint16{3, 2}, [2]uint16{5, 2}:
		return DatatypeI16, nil
	case [2]uint16{3, 4}, [2]uint16{5, 4}:
		return DatatypeI32, nil
	case [2]uint16{7, 2}:
		return DatatypeF16, nil
	case [2]uint16{7, 4}:
		return DatatypeF32, nil
	case [2]uint16{17536, 5}, [2]uint16{6566, 5}, [2]uint16{29813, 5},
		[2]uint16{0, 5}, [2]uint16{15, 5}:
		// Zero-sample artifacts written by the iRacing exporter on damper
		// position and ride height channels.
		return DatatypeInvalid, nil
	}
	return DatatypeInvalid, UnrecognizedDatatypeError{Code: code, Width: width}
}

// Sample holds one raw sample of a particular Datatype.
type Sample interface {
	// Type returns the datatype of the sample.
	Type() Datatype

	// Float returns the raw sample value widened to float64, before any
	// decode parameters are applied.
	Float() float64

	// String returns a string representation of the raw value.
	String() string
}

type (
	SampleI16 int16
	SampleI32 int32
	SampleF32 float32
)

func (s SampleI16) Type() Datatype { return DatatypeI16 }
func (s SampleI32) Type() Datatype { return DatatypeI32 }
func (s SampleF32) Type() Datatype { return DatatypeF32 }

func (s SampleI16) Float() float64 { return float64(s) }
func (s SampleI32) Float() float64 { return float64(s) }
func (s SampleF32) Float() float64 { return float64(s) }

func (s SampleI16) String() string { return strconv.FormatInt(int64(s), 10) }
func (s SampleI32) String() string { return strconv.FormatInt(int64(s), 10) }
func (s SampleF32) String() string {
	return strconv.FormatFloat(float64(s), 'g', -1, 32)
}
