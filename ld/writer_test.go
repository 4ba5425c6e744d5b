package ld_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	motec "github.com/afonso360/motec-i2"
	"github.com/afonso360/motec-i2/ld"
)

// memFile is a growable in-memory io.ReadWriteSeeker backing the codec
// tests.
type memFile struct {
	buf []byte
	pos int64
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.pos >= int64(len(f.buf)) {
		return 0, io.EOF
	}
	n := copy(p, f.buf[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	if need := f.pos + int64(len(p)); need > int64(len(f.buf)) {
		grown := make([]byte, need)
		copy(grown, f.buf)
		f.buf = grown
	}
	copy(f.buf[f.pos:], p)
	f.pos += int64(len(p))
	return len(p), nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.pos = offset
	case io.SeekCurrent:
		f.pos += offset
	case io.SeekEnd:
		f.pos = int64(len(f.buf)) + offset
	}
	return f.pos, nil
}

func airTempInlet() motec.Channel {
	return motec.Channel{
		Name:       "Air Temp Inlet",
		ShortName:  "Air Tem",
		Unit:       "C",
		Datatype:   motec.DatatypeI16,
		SampleRate: 2,
		Offset:     0,
		Mul:        1,
		Scale:      1,
		DecPlaces:  1,
	}
}

// Captured from a known-good encoding: one i16 descriptor at the file start
// followed by its four-sample payload at 0x7C.
var singleChannelEncoding = []byte{
	0x00, 0x00, 0x00, 0x00, // prev
	0x00, 0x00, 0x00, 0x00, // next
	0x7C, 0x00, 0x00, 0x00, // data
	0x04, 0x00, 0x00, 0x00, // count
	0x04, 0x00, 0x03, 0x00, 0x02, 0x00, 0x02, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x01, 0x00, 0x41, 0x69, 0x72, 0x20, 0x54, 0x65, 0x6D, 0x70, 0x20, 0x49, 0x6E, 0x6C,
	0x65, 0x74, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x41, 0x69, 0x72, 0x20, 0x54, 0x65, 0x6D, 0x00,
	0x43, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC9, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, // sample 0
	0x01, 0x00, // sample 1
	0x02, 0x00, // sample 2
	0x03, 0x00, // sample 3
}

// Two descriptors with empty payloads: the first descriptor's next pointer
// must be patched to 0x7C, and both data pointers land on 0xF8.
var multiChannelEncoding = []byte{
	// descriptor 0
	0x00, 0x00, 0x00, 0x00, // prev
	0x7C, 0x00, 0x00, 0x00, // next
	0xF8, 0x00, 0x00, 0x00, // data
	0x00, 0x00, 0x00, 0x00, // count
	0x04, 0x00, 0x03, 0x00, 0x02, 0x00, 0x02, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x01, 0x00, 0x41, 0x69, 0x72, 0x20, 0x54, 0x65, 0x6D, 0x70, 0x20, 0x49, 0x6E, 0x6C,
	0x65, 0x74, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x41, 0x69, 0x72, 0x20, 0x54, 0x65, 0x6D, 0x00,
	0x43, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC9, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	// descriptor 1
	0x00, 0x00, 0x00, 0x00, // prev
	0x00, 0x00, 0x00, 0x00, // next
	0xF8, 0x00, 0x00, 0x00, // data
	0x00, 0x00, 0x00, 0x00, // count
	0x04, 0x00, // unknown
	0x03, 0x00, // type code
	0x04, 0x00, // width
	0x0A, 0x00, // rate
	0x01, 0x00, // offset
	0x02, 0x00, // mul
	0x02, 0x00, // scale
	0x02, 0x00, // decimal places
	0x45, 0x6E, 0x67, 0x69, 0x6E, 0x65, 0x20, 0x74, 0x65, 0x6D, 0x70, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, // name
	0x45, 0x6E, 0x67, 0x54, 0x65, 0x6D, 0x70, 0x00, // short name
	0x43, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // unit
	0xC9, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

func TestWriteChannel(t *testing.T) {
	var f memFile
	w := ld.NewWriter(&f)

	channel := airTempInlet()
	samples := []motec.Sample{
		motec.SampleI16(0),
		motec.SampleI16(1),
		motec.SampleI16(2),
		motec.SampleI16(3),
	}

	handle, err := w.WriteChannel(&channel, samples)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteChannelData(handle, samples); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(f.buf, singleChannelEncoding) {
		t.Error("unexpected encoding of descriptor and payload")
	}
}

func TestWriteChannel_Linking(t *testing.T) {
	var f memFile
	w := ld.NewWriter(&f)

	channel0 := airTempInlet()
	channel1 := motec.Channel{
		Name:       "Engine temp",
		ShortName:  "EngTemp",
		Unit:       "C",
		Datatype:   motec.DatatypeI32,
		SampleRate: 10,
		Offset:     1,
		Mul:        2,
		Scale:      2,
		DecPlaces:  2,
	}

	h0, err := w.WriteChannel(&channel0, nil)
	if err != nil {
		t.Fatal(err)
	}
	h1, err := w.WriteChannel(&channel1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteChannelData(h0, nil); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteChannelData(h1, nil); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(f.buf, multiChannelEncoding) {
		t.Error("unexpected encoding of linked descriptors")
	}
}

func TestWriteChannelData_SampleMismatch(t *testing.T) {
	var f memFile
	w := ld.NewWriter(&f)

	channel := airTempInlet()
	handle, err := w.WriteChannel(&channel, nil)
	if err != nil {
		t.Fatal(err)
	}

	err = w.WriteChannelData(handle, []motec.Sample{motec.SampleF32(1)})
	var sampleErr ld.SampleTypeError
	if !errors.As(err, &sampleErr) {
		t.Fatalf("expected SampleTypeError, got %v", err)
	}
	if sampleErr.Channel != "Air Temp Inlet" {
		t.Error("unexpected channel name in sample error")
	}
}

func TestWriteHeader(t *testing.T) {
	var f memFile
	w := ld.NewWriter(&f)

	if err := w.WriteHeader(&motec.Header{
		DeviceSerial:  12007,
		DeviceType:    "ADL",
		DeviceVersion: 420,
		NumChannels:   1,
	}); err != nil {
		t.Fatal(err)
	}

	if len(f.buf) != 0x3448 {
		t.Fatalf("preamble is %d bytes, expected %d", len(f.buf), 0x3448)
	}
	if binary.LittleEndian.Uint32(f.buf[0:]) != 64 {
		t.Error("unexpected header marker")
	}
	if f.buf[1644] != 99 {
		t.Error("unexpected header trailer")
	}
	// Channel pointers stay zero until Finish.
	if binary.LittleEndian.Uint32(f.buf[8:]) != 0 || binary.LittleEndian.Uint32(f.buf[12:]) != 0 {
		t.Error("channel pointers written before Finish")
	}
}

func TestFinish(t *testing.T) {
	var f memFile
	w := ld.NewWriter(&f)

	if err := w.WriteHeader(&motec.Header{DeviceType: "ADL", NumChannels: 1}); err != nil {
		t.Fatal(err)
	}
	channel := airTempInlet()
	samples := []motec.Sample{motec.SampleI16(199)}
	handle, err := w.WriteChannel(&channel, samples)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteChannelData(handle, samples); err != nil {
		t.Fatal(err)
	}
	if err := w.Finish(); err != nil {
		t.Fatal(err)
	}

	if got := binary.LittleEndian.Uint32(f.buf[8:]); got != 0x3448 {
		t.Errorf("channel list pointer is 0x%X, expected 0x3448", got)
	}
	if got := binary.LittleEndian.Uint32(f.buf[12:]); got != 0x3448+124 {
		t.Errorf("channel data pointer is 0x%X, expected 0x%X", got, 0x3448+124)
	}
}

func TestFinish_NoChannels(t *testing.T) {
	var f memFile
	w := ld.NewWriter(&f)

	if err := w.WriteHeader(&motec.Header{DeviceType: "ADL"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Finish(); !errors.Is(err, ld.ErrNoChannels) {
		t.Fatalf("expected ErrNoChannels, got %v", err)
	}
}

func TestWriteEvent_RequiresHeader(t *testing.T) {
	var f memFile
	w := ld.NewWriter(&f)

	if err := w.WriteEvent(&motec.Event{Name: "Warmup"}); err == nil {
		t.Error("expected error writing event before header")
	}
}
