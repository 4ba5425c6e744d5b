package ld

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/anaminus/parse"

	motec "github.com/afonso360/motec-i2"
	"github.com/afonso360/motec-i2/errors"
)

// AddressTable holds the resolved addresses of the variable substructures
// within one file. The zero address marks an absent substructure.
type AddressTable struct {
	// ChannelMeta is the head of the channel descriptor list; ChannelData
	// is the start of the channel data region.
	ChannelMeta FileAddr
	ChannelData FileAddr

	// Event, Venue, and Vehicle are resolved in order; a zero address at
	// any link leaves that level and all deeper levels zero.
	Event   FileAddr
	Venue   FileAddr
	Vehicle FileAddr
}

// ChannelMetadata is one node of the channel descriptor list, combining the
// logical channel with its location within the file.
type ChannelMetadata struct {
	motec.Channel

	// PrevAddr and NextAddr link the descriptor to its list neighbors. A
	// zero address means no neighbor.
	PrevAddr FileAddr
	NextAddr FileAddr

	// DataAddr points at the channel's contiguous sample payload, which
	// holds DataCount samples of the channel's datatype.
	DataAddr  FileAddr
	DataCount uint32
}

// Reader decodes the records of an LD container from a random-access byte
// stream. The reader holds its source exclusively for its whole lifetime;
// interleaving other consumers of the same stream is not supported.
type Reader struct {
	src    io.ReadSeeker
	layout layout
	addrs  *AddressTable
	warns  errors.Errors
}

// NewReader prepares a reader over src using the default revision.
func NewReader(src io.ReadSeeker) *Reader {
	return NewReaderRevision(src, Revision102)
}

// NewReaderRevision prepares a reader over src using the offset table of the
// given revision.
func NewReaderRevision(src io.ReadSeeker, rev Revision) *Reader {
	return &Reader{src: src, layout: rev.layout()}
}

// Warnings returns the non-fatal observations accumulated so far, or nil if
// there are none.
func (r *Reader) Warnings() error {
	return r.warns.Return()
}

func (r *Reader) seek(addr FileAddr) error {
	_, err := r.src.Seek(addr.Offset(), io.SeekStart)
	return err
}

// dataError finalizes fr, wrapping any accumulated parse error with the
// absolute offset at which it occurred.
func dataError(base int64, fr *parse.BinaryReader) error {
	n, err := fr.End()
	if err != nil {
		return DataError{Offset: base + n, Cause: err}
	}
	return nil
}

func skip(fr *parse.BinaryReader, n int) bool {
	return fr.Bytes(make([]byte, n))
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// readString reads a text field of exactly n bytes, truncating at the first
// null byte.
func (r *Reader) readString(fr *parse.BinaryReader, field string, n int, out *string) bool {
	buf := make([]byte, n)
	if fr.Bytes(buf) {
		return true
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	if r.layout.trimSpaces {
		buf = bytes.TrimRight(buf, " ")
	}
	if !utf8.Valid(buf) {
		return fr.Add(0, TextError{Field: field})
	}
	*out = string(buf)
	return false
}

func (r *Reader) readU32At(off int64) (uint32, error) {
	if _, err := r.src.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	fr := parse.NewBinaryReader(r.src)
	var v uint32
	fr.Number(&v)
	if err := dataError(off, fr); err != nil {
		return 0, err
	}
	return v, nil
}

func (r *Reader) readU16At(off int64) (uint16, error) {
	if _, err := r.src.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	fr := parse.NewBinaryReader(r.src)
	var v uint16
	fr.Number(&v)
	if err := dataError(off, fr); err != nil {
		return 0, err
	}
	return v, nil
}

// AddressTable resolves the addresses of the file's variable substructures.
// Resolution is an ordered walk: the channel list, channel data, and event
// pointers are read from their fixed header offsets, then the venue pointer
// from within the event record, then the vehicle pointer from within the
// venue record. The result is computed once and memoized; it is only
// committed on full success.
func (r *Reader) AddressTable() (AddressTable, error) {
	if r.addrs != nil {
		return *r.addrs, nil
	}

	var tbl AddressTable

	meta, err := r.readU32At(r.layout.metaPtr)
	if err != nil {
		return tbl, err
	}
	tbl.ChannelMeta = FileAddr(meta)

	data, err := r.readU32At(r.layout.dataPtr)
	if err != nil {
		return tbl, err
	}
	tbl.ChannelData = FileAddr(data)

	event, err := r.readU32At(r.layout.eventPtr)
	if err != nil {
		return tbl, err
	}
	tbl.Event = FileAddr(event)

	if !tbl.Event.IsZero() {
		venue, err := r.readU16At(tbl.Event.Add(r.layout.venuePtrOff).Offset())
		if err != nil {
			return tbl, err
		}
		tbl.Venue = FileAddr(venue)
	}

	if !tbl.Venue.IsZero() {
		vehicle, err := r.readU16At(tbl.Venue.Add(r.layout.vehiclePtrOff).Offset())
		if err != nil {
			return tbl, err
		}
		tbl.Vehicle = FileAddr(vehicle)
	}

	r.addrs = &tbl
	return tbl, nil
}

// Header decodes the file header. The magic marker is checked before any
// other field is read; a mismatch aborts with InvalidMarkerError.
func (r *Reader) Header() (*motec.Header, error) {
	if err := r.seek(0); err != nil {
		return nil, err
	}
	fr := parse.NewBinaryReader(r.src)

	var marker uint32
	if fr.Number(&marker) {
		return nil, dataError(0, fr)
	}
	if marker != headerMarker {
		return nil, InvalidMarkerError{Found: marker, Expected: headerMarker}
	}

	var hdr motec.Header
	skip(fr, 4)
	skip(fr, 4) // channel list pointer, resolved via AddressTable
	skip(fr, 4) // channel data pointer, resolved via AddressTable

	reserved := make([]byte, 20)
	if !fr.Bytes(reserved) && !isZero(reserved) {
		r.warns = r.warns.Append(ReserveError{Offset: 16, Bytes: reserved})
	}

	skip(fr, 4) // event pointer, resolved via AddressTable
	skip(fr, 24)
	skip(fr, 6)

	fr.Number(&hdr.DeviceSerial)
	r.readString(fr, "device type", 8, &hdr.DeviceType)
	fr.Number(&hdr.DeviceVersion)
	skip(fr, 2)
	fr.Number(&hdr.NumChannels)
	skip(fr, 4)

	r.readString(fr, "date", 16, &hdr.Date)
	skip(fr, 16)
	r.readString(fr, "time", 16, &hdr.Time)
	skip(fr, 16)

	r.readString(fr, "driver", 64, &hdr.Driver)
	r.readString(fr, "vehicle id", 64, &hdr.VehicleID)
	skip(fr, 64)
	r.readString(fr, "venue", 64, &hdr.Venue)
	skip(fr, 64)

	hdr.Opaque = make([]byte, 1024)
	fr.Bytes(hdr.Opaque)

	fr.Number(&hdr.ProLogging)
	skip(fr, 2)
	r.readString(fr, "session", 64, &hdr.Session)
	r.readString(fr, "short comment", 64, &hdr.ShortComment)

	if err := dataError(0, fr); err != nil {
		return nil, err
	}
	return &hdr, nil
}

// Event decodes the event record, or returns nil if the file has none.
func (r *Reader) Event() (*motec.Event, error) {
	tbl, err := r.AddressTable()
	if err != nil {
		return nil, err
	}
	if tbl.Event.IsZero() {
		return nil, nil
	}
	if err := r.seek(tbl.Event); err != nil {
		return nil, err
	}
	fr := parse.NewBinaryReader(r.src)

	var ev motec.Event
	r.readString(fr, "event name", 64, &ev.Name)
	r.readString(fr, "event session", 64, &ev.Session)
	r.readString(fr, "event comment", 1024, &ev.Comment)

	if err := dataError(tbl.Event.Offset(), fr); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Venue decodes the venue record, or returns nil if the file has none.
func (r *Reader) Venue() (*motec.Venue, error) {
	tbl, err := r.AddressTable()
	if err != nil {
		return nil, err
	}
	if tbl.Venue.IsZero() {
		return nil, nil
	}
	if err := r.seek(tbl.Venue); err != nil {
		return nil, err
	}
	fr := parse.NewBinaryReader(r.src)

	var v motec.Venue
	r.readString(fr, "venue name", 64, &v.Name)

	if err := dataError(tbl.Venue.Offset(), fr); err != nil {
		return nil, err
	}
	return &v, nil
}

// Vehicle decodes the vehicle record, or returns nil if the file has none.
func (r *Reader) Vehicle() (*motec.Vehicle, error) {
	tbl, err := r.AddressTable()
	if err != nil {
		return nil, err
	}
	if tbl.Vehicle.IsZero() {
		return nil, nil
	}
	if err := r.seek(tbl.Vehicle); err != nil {
		return nil, err
	}
	fr := parse.NewBinaryReader(r.src)

	var v motec.Vehicle
	r.readString(fr, "vehicle id", 64, &v.ID)
	skip(fr, 128)
	fr.Number(&v.Weight)
	r.readString(fr, "vehicle type", 32, &v.Type)
	r.readString(fr, "vehicle comment", 32, &v.Comment)

	if err := dataError(tbl.Vehicle.Offset(), fr); err != nil {
		return nil, err
	}
	return &v, nil
}

// Channels walks the channel descriptor list from its head to the zero
// terminator and returns the descriptors in list order. A descriptor list
// that revisits an address yields ErrChannelCycle instead of looping.
func (r *Reader) Channels() ([]ChannelMetadata, error) {
	tbl, err := r.AddressTable()
	if err != nil {
		return nil, err
	}

	var channels []ChannelMetadata
	visited := map[FileAddr]struct{}{}
	next := tbl.ChannelMeta
	for !next.IsZero() {
		if _, ok := visited[next]; ok {
			return nil, fmt.Errorf("descriptor at %v: %w", next, ErrChannelCycle)
		}
		visited[next] = struct{}{}

		ch, err := r.channelMetadata(next)
		if err != nil {
			return nil, err
		}
		next = ch.NextAddr
		channels = append(channels, *ch)
	}
	return channels, nil
}

// channelMetadata decodes the descriptor record at addr.
func (r *Reader) channelMetadata(addr FileAddr) (*ChannelMetadata, error) {
	if err := r.seek(addr); err != nil {
		return nil, err
	}
	fr := parse.NewBinaryReader(r.src)

	var ch ChannelMetadata
	fr.Number((*uint32)(&ch.PrevAddr))
	fr.Number((*uint32)(&ch.NextAddr))
	fr.Number((*uint32)(&ch.DataAddr))
	fr.Number(&ch.DataCount)

	skip(fr, 2)

	var code, width uint16
	fr.Number(&code)
	fr.Number(&width)

	fr.Number(&ch.SampleRate)

	fr.Number(&ch.Offset)
	fr.Number(&ch.Mul)
	fr.Number(&ch.Scale)
	fr.Number(&ch.DecPlaces)

	r.readString(fr, "channel name", 32, &ch.Name)
	r.readString(fr, "channel short name", 8, &ch.ShortName)
	r.readString(fr, "channel unit", 12, &ch.Unit)
	skip(fr, 40)

	if err := dataError(addr.Offset(), fr); err != nil {
		return nil, err
	}

	datatype, err := motec.DatatypeFromTypeAndSize(code, width)
	if err != nil {
		return nil, fmt.Errorf("channel %q: %w", ch.Name, err)
	}
	ch.Datatype = datatype
	return &ch, nil
}

// ChannelData reads the channel's sample payload: exactly DataCount samples
// of the channel's datatype, in on-file order. Channels tagged with the f16
// or invalid datatypes fail fast rather than misdecode.
func (r *Reader) ChannelData(ch *ChannelMetadata) ([]motec.Sample, error) {
	if ch.DataCount == 0 {
		return nil, nil
	}
	switch ch.Datatype {
	case motec.DatatypeF16:
		return nil, fmt.Errorf("channel %q: %w", ch.Name, ErrF16Unsupported)
	case motec.DatatypeInvalid:
		return nil, fmt.Errorf("channel %q: %w", ch.Name, ErrInvalidData)
	}
	if err := r.seek(ch.DataAddr); err != nil {
		return nil, err
	}
	fr := parse.NewBinaryReader(r.src)

	samples := make([]motec.Sample, 0, ch.DataCount)
	for i := uint32(0); i < ch.DataCount; i++ {
		switch ch.Datatype {
		case motec.DatatypeBeacon16, motec.DatatypeI16:
			var v int16
			if fr.Number(&v) {
				return nil, dataError(ch.DataAddr.Offset(), fr)
			}
			samples = append(samples, motec.SampleI16(v))
		case motec.DatatypeBeacon32, motec.DatatypeI32:
			var v int32
			if fr.Number(&v) {
				return nil, dataError(ch.DataAddr.Offset(), fr)
			}
			samples = append(samples, motec.SampleI32(v))
		case motec.DatatypeF32:
			var v float32
			if fr.Number(&v) {
				return nil, dataError(ch.DataAddr.Offset(), fr)
			}
			samples = append(samples, motec.SampleF32(v))
		}
	}

	if err := dataError(ch.DataAddr.Offset(), fr); err != nil {
		return nil, err
	}
	return samples, nil
}

// rawChannelData reads the channel's payload as unparsed bytes.
func (r *Reader) rawChannelData(ch *ChannelMetadata) ([]byte, error) {
	n := int(ch.DataCount) * ch.Datatype.Size()
	if n == 0 {
		return nil, nil
	}
	if err := r.seek(ch.DataAddr); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		return nil, DataError{Offset: ch.DataAddr.Offset(), Cause: err}
	}
	return buf, nil
}
