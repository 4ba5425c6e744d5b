package ld

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/anaminus/parse"

	motec "github.com/afonso360/motec-i2"
)

// Constants emitted into header and descriptor fields whose meaning is not
// understood, copied from files produced by known hardware.
const (
	headerUnknownA  uint16 = 0x4240
	headerUnknownB  uint16 = 0x000F
	headerUnknownC  uint16 = 0x0080
	headerUnknownD  uint32 = 0x0001_0064
	channelUnknown  uint16 = 4
	channelReserved uint8  = 201
)

// ChannelHandle identifies a channel descriptor written by WriteChannel so
// that its payload can be supplied later.
type ChannelHandle struct {
	index    int
	name     string
	datatype motec.Datatype
}

// Writer encodes the records of an LD container onto a random-access byte
// stream.
//
// The container stores forward pointers that are not known until later
// records are placed, so the writer works incrementally: records are
// appended with placeholder pointers, and each placeholder is patched in a
// seek-back write once its target address exists. The usual sequence is
// WriteHeader, optionally WriteEvent/WriteVenue/WriteVehicle, then
// WriteChannel and WriteChannelData per channel, then Finish.
type Writer struct {
	dst    io.WriteSeeker
	layout layout

	// pos is the write head: the address where the next appended record or
	// payload is placed.
	pos FileAddr

	// channels holds the address of each written descriptor in write
	// order; dataBlocks the address of each written payload.
	channels   []FileAddr
	dataBlocks []FileAddr

	headerWritten bool
	eventWritten  bool
	venueWritten  bool
}

// NewWriter prepares a writer over dst using the default revision.
func NewWriter(dst io.WriteSeeker) *Writer {
	return NewWriterRevision(dst, Revision102)
}

// NewWriterRevision prepares a writer over dst using the offset table of the
// given revision.
func NewWriterRevision(dst io.WriteSeeker, rev Revision) *Writer {
	return &Writer{dst: dst, layout: rev.layout()}
}

func (w *Writer) seek(addr FileAddr) error {
	_, err := w.dst.Seek(addr.Offset(), io.SeekStart)
	return err
}

// patchU32 overwrites the 4-byte field at addr, leaving the write head
// untouched for the caller to restore.
func (w *Writer) patchU32(addr FileAddr, v uint32) error {
	if err := w.seek(addr); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	if _, err := w.dst.Write(buf[:]); err != nil {
		return DataError{Offset: addr.Offset(), Cause: err}
	}
	return nil
}

func (w *Writer) patchU16(addr FileAddr, v uint16) error {
	if err := w.seek(addr); err != nil {
		return err
	}
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	if _, err := w.dst.Write(buf[:]); err != nil {
		return DataError{Offset: addr.Offset(), Cause: err}
	}
	return nil
}

// writeString emits a text field of exactly n bytes: the string's UTF-8
// bytes truncated to n, zero-padded to n.
func writeString(fw *parse.BinaryWriter, n int, s string) bool {
	buf := make([]byte, n)
	copy(buf, s)
	return fw.Bytes(buf)
}

func pad(fw *parse.BinaryWriter, n int) bool {
	return fw.Bytes(make([]byte, n))
}

// WriteHeader emits the file preamble: the header record with placeholder
// channel pointers, followed by zeros up to the canonical start of the
// channel region. The write head is left at the start of the channel region.
func (w *Writer) WriteHeader(hdr *motec.Header) error {
	// Zero-fill the whole preamble first so that records not subsequently
	// written (event, venue, vehicle) read back as absent.
	if err := w.seek(0); err != nil {
		return err
	}
	if _, err := w.dst.Write(make([]byte, w.layout.preambleSize)); err != nil {
		return DataError{Offset: 0, Cause: err}
	}
	if err := w.seek(0); err != nil {
		return err
	}

	fw := parse.NewBinaryWriter(w.dst)

	fw.Number(headerMarker)
	fw.Number(uint32(0))
	fw.Number(uint32(0)) // channel list pointer, patched by Finish
	fw.Number(uint32(0)) // channel data pointer, patched by Finish
	pad(fw, 20)
	fw.Number(uint32(0)) // event pointer, patched by WriteEvent
	pad(fw, 24)

	fw.Number(uint16(0))
	fw.Number(headerUnknownA)
	fw.Number(headerUnknownB)

	fw.Number(hdr.DeviceSerial)
	writeString(fw, 8, hdr.DeviceType)
	fw.Number(hdr.DeviceVersion)
	fw.Number(headerUnknownC)
	fw.Number(hdr.NumChannels)
	fw.Number(headerUnknownD)

	writeString(fw, 16, hdr.Date)
	pad(fw, 16)
	writeString(fw, 16, hdr.Time)
	pad(fw, 16)

	writeString(fw, 64, hdr.Driver)
	writeString(fw, 64, hdr.VehicleID)
	pad(fw, 64)
	writeString(fw, 64, hdr.Venue)
	pad(fw, 64)

	// The vendor region is not text; it is carried verbatim when present.
	opaque := make([]byte, 1024)
	copy(opaque, hdr.Opaque)
	fw.Bytes(opaque)

	fw.Number(hdr.ProLogging)
	fw.Number(uint16(0))
	writeString(fw, 64, hdr.Session)
	writeString(fw, 64, hdr.ShortComment)

	pad(fw, 8)
	fw.Number(uint8(99))
	pad(fw, 117)

	if _, err := fw.End(); err != nil {
		return DataError{Offset: 0, Cause: err}
	}

	w.headerWritten = true
	w.pos = FileAddr(w.layout.preambleSize)
	return nil
}

// WriteEvent emits the event record at its canonical address within the
// preamble and patches the header's event pointer. The header must have been
// written first.
func (w *Writer) WriteEvent(ev *motec.Event) error {
	if !w.headerWritten {
		return fmt.Errorf("event record requires a written header")
	}
	if err := w.seek(w.layout.eventAddr); err != nil {
		return err
	}

	fw := parse.NewBinaryWriter(w.dst)
	writeString(fw, 64, ev.Name)
	writeString(fw, 64, ev.Session)
	writeString(fw, 1024, ev.Comment)
	fw.Number(uint16(0)) // venue pointer, patched by WriteVenue
	if _, err := fw.End(); err != nil {
		return DataError{Offset: w.layout.eventAddr.Offset(), Cause: err}
	}

	if err := w.patchU32(FileAddr(w.layout.eventPtr), uint32(w.layout.eventAddr)); err != nil {
		return err
	}
	w.eventWritten = true
	return nil
}

// WriteVenue emits the venue record at its canonical address and patches the
// event record's venue pointer. An event record must have been written
// first.
func (w *Writer) WriteVenue(v *motec.Venue) error {
	if !w.eventWritten {
		return fmt.Errorf("venue record requires a written event record")
	}
	if err := w.seek(w.layout.venueAddr); err != nil {
		return err
	}

	fw := parse.NewBinaryWriter(w.dst)
	writeString(fw, 64, v.Name)
	pad(fw, 1034)
	fw.Number(uint16(0)) // vehicle pointer, patched by WriteVehicle
	if _, err := fw.End(); err != nil {
		return DataError{Offset: w.layout.venueAddr.Offset(), Cause: err}
	}

	venuePtr := w.layout.eventAddr.Add(w.layout.venuePtrOff)
	if err := w.patchU16(venuePtr, uint16(w.layout.venueAddr)); err != nil {
		return err
	}
	w.venueWritten = true
	return nil
}

// WriteVehicle emits the vehicle record at its canonical address and patches
// the venue record's vehicle pointer. A venue record must have been written
// first.
func (w *Writer) WriteVehicle(v *motec.Vehicle) error {
	if !w.venueWritten {
		return fmt.Errorf("vehicle record requires a written venue record")
	}
	if err := w.seek(w.layout.vehicleAddr); err != nil {
		return err
	}

	fw := parse.NewBinaryWriter(w.dst)
	writeString(fw, 64, v.ID)
	pad(fw, 128)
	fw.Number(v.Weight)
	writeString(fw, 32, v.Type)
	writeString(fw, 32, v.Comment)
	if _, err := fw.End(); err != nil {
		return DataError{Offset: w.layout.vehicleAddr.Offset(), Cause: err}
	}

	vehiclePtr := w.layout.venueAddr.Add(w.layout.vehiclePtrOff)
	return w.patchU16(vehiclePtr, uint16(w.layout.vehicleAddr))
}

// WriteChannel appends a channel descriptor at the write head, declaring
// len(samples) samples. The descriptor's data address is a placeholder until
// WriteChannelData supplies the payload. The previous descriptor's next
// pointer is patched to form the list.
func (w *Writer) WriteChannel(ch *motec.Channel, samples []motec.Sample) (ChannelHandle, error) {
	addr := w.pos
	prev := FileAddr(0)
	if len(w.channels) > 0 {
		prev = w.channels[len(w.channels)-1]
	}

	if err := w.seek(addr); err != nil {
		return ChannelHandle{}, err
	}
	fw := parse.NewBinaryWriter(w.dst)

	fw.Number(uint32(prev))
	fw.Number(uint32(0)) // next pointer, patched by the following WriteChannel
	fw.Number(uint32(0)) // data pointer, patched by WriteChannelData
	fw.Number(uint32(len(samples)))

	width := uint16(ch.Datatype.Size())
	if ch.Datatype == motec.DatatypeInvalid {
		// No sample width exists; (0, 5) is a pair that decodes back to
		// the invalid datatype, so such channels survive a re-encode.
		width = 5
	}
	fw.Number(channelUnknown)
	fw.Number(ch.Datatype.TypeCode())
	fw.Number(width)
	fw.Number(ch.SampleRate)

	fw.Number(ch.Offset)
	fw.Number(ch.Mul)
	fw.Number(ch.Scale)
	fw.Number(ch.DecPlaces)

	writeString(fw, 32, ch.Name)
	writeString(fw, 8, ch.ShortName)
	writeString(fw, 12, ch.Unit)
	fw.Number(channelReserved)
	pad(fw, 39)

	if _, err := fw.End(); err != nil {
		return ChannelHandle{}, DataError{Offset: addr.Offset(), Cause: err}
	}

	if !prev.IsZero() {
		if err := w.patchU32(prev.Add(channelNextAddrOff), uint32(addr)); err != nil {
			return ChannelHandle{}, err
		}
	}

	handle := ChannelHandle{
		index:    len(w.channels),
		name:     ch.Name,
		datatype: ch.Datatype,
	}
	w.channels = append(w.channels, addr)
	w.pos = addr.Add(channelRecordSize)
	return handle, nil
}

// WriteChannelData appends the payload for a previously written descriptor
// at the write head and patches that descriptor's data pointer. Every sample
// must match the channel's declared datatype.
func (w *Writer) WriteChannelData(handle ChannelHandle, samples []motec.Sample) error {
	if err := w.seek(w.pos); err != nil {
		return err
	}
	dataAddr := w.pos

	fw := parse.NewBinaryWriter(w.dst)
	for _, s := range samples {
		if writeSample(fw, handle, s) {
			break
		}
	}
	if _, err := fw.End(); err != nil {
		return DataError{Offset: dataAddr.Offset(), Cause: err}
	}

	dataPtr := w.channels[handle.index].Add(channelDataAddrOff)
	if err := w.patchU32(dataPtr, uint32(dataAddr)); err != nil {
		return err
	}

	w.dataBlocks = append(w.dataBlocks, dataAddr)
	w.pos = dataAddr.Add(uint32(len(samples)) * uint32(handle.datatype.Size()))
	return nil
}

func writeSample(fw *parse.BinaryWriter, handle ChannelHandle, s motec.Sample) bool {
	mismatch := func() bool {
		return fw.Add(0, SampleTypeError{
			Channel: handle.name,
			Want:    handle.datatype.String(),
			Got:     s.Type().String(),
		})
	}
	switch s := s.(type) {
	case motec.SampleI16:
		switch handle.datatype {
		case motec.DatatypeBeacon16, motec.DatatypeI16:
			return fw.Number(int16(s))
		}
		return mismatch()
	case motec.SampleI32:
		switch handle.datatype {
		case motec.DatatypeBeacon32, motec.DatatypeI32:
			return fw.Number(int32(s))
		}
		return mismatch()
	case motec.SampleF32:
		if handle.datatype == motec.DatatypeF32 {
			return fw.Number(float32(s))
		}
		return mismatch()
	}
	return mismatch()
}

// Finish patches the header's channel list and channel data pointers with
// the lowest descriptor and payload addresses. At least one descriptor and
// one payload must have been written; the pointers cannot hold the zero
// sentinel.
func (w *Writer) Finish() error {
	if len(w.channels) == 0 || len(w.dataBlocks) == 0 {
		return ErrNoChannels
	}

	meta := w.channels[0]
	for _, addr := range w.channels[1:] {
		if addr < meta {
			meta = addr
		}
	}
	data := w.dataBlocks[0]
	for _, addr := range w.dataBlocks[1:] {
		if addr < data {
			data = addr
		}
	}

	if err := w.patchU32(FileAddr(w.layout.dataPtr), uint32(data)); err != nil {
		return err
	}
	return w.patchU32(FileAddr(w.layout.metaPtr), uint32(meta))
}
