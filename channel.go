package motec

import (
	"math"
	"time"
)

// Channel describes one logged signal: its display metadata, sample rate,
// on-file representation, and the parameters that turn raw samples into
// engineering-unit values.
type Channel struct {
	// Name is the full channel name (e.g. "Air Temp Inlet").
	Name string

	// ShortName is the abbreviated name shown in constrained displays.
	ShortName string

	// Unit is the display unit, stored as a plain string (e.g. "C"). The
	// codec does not interpret units.
	Unit string

	// Datatype is the on-file representation of the channel's samples.
	Datatype Datatype

	// SampleRate is the capture rate in Hz.
	SampleRate uint16

	// Offset, Mul, Scale, and DecPlaces parameterize the decode formula;
	// see Decode.
	Offset    uint16
	Mul       uint16
	Scale     uint16
	DecPlaces int16
}

// Decode derives the engineering-unit value of a raw sample:
//
//	value = raw / Scale * 10^-DecPlaces * Mul + Offset
//
// The term order is significant and all arithmetic is performed in float64.
// No rounding is applied.
func (c *Channel) Decode(s Sample) float64 {
	v := s.Float()
	v /= float64(c.Scale)
	v *= math.Pow10(-int(c.DecPlaces))
	v *= float64(c.Mul)
	v += float64(c.Offset)
	return v
}

// Duration returns the capture duration covered by n samples at the
// channel's sample rate. Returns 0 for a zero sample rate.
func (c *Channel) Duration(n int) time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(n) / float64(c.SampleRate) * float64(time.Second))
}
