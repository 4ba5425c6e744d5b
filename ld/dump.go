package ld

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"unicode"

	"golang.org/x/crypto/blake2b"

	"github.com/afonso360/motec-i2/errors"
)

// Fingerprint computes the digest used to identify byte content in dumps and
// sidecar archives.
func Fingerprint(data []byte) [blake2b.Size256]byte {
	return blake2b.Sum256(data)
}

// Dump writes to w a readable representation of the container decoded from
// r: the resolved address table, the header, the metadata chain, and each
// channel descriptor with a digest of its payload. Payload samples
// themselves are summarized, not listed.
func (d Decoder) Dump(w io.Writer, r io.ReadSeeker) (warn, err error) {
	if r == nil {
		return nil, errors.New("nil reader")
	}
	if w == nil {
		return nil, errors.New("nil writer")
	}

	fr := NewReaderRevision(r, d.Revision)

	hdr, err := fr.Header()
	if err != nil {
		return fr.Warnings(), err
	}
	tbl, err := fr.AddressTable()
	if err != nil {
		return fr.Warnings(), err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "Addresses: {")
	dumpNewline(bw, 1)
	fmt.Fprintf(bw, "ChannelMeta: %v", tbl.ChannelMeta)
	dumpNewline(bw, 1)
	fmt.Fprintf(bw, "ChannelData: %v", tbl.ChannelData)
	dumpNewline(bw, 1)
	fmt.Fprintf(bw, "Event: %v", tbl.Event)
	dumpNewline(bw, 1)
	fmt.Fprintf(bw, "Venue: %v", tbl.Venue)
	dumpNewline(bw, 1)
	fmt.Fprintf(bw, "Vehicle: %v", tbl.Vehicle)
	fmt.Fprint(bw, "\n}")

	fmt.Fprint(bw, "\nHeader: {")
	dumpNewline(bw, 1)
	fmt.Fprintf(bw, "Device: %s %d (serial %d)", hdr.DeviceType, hdr.DeviceVersion, hdr.DeviceSerial)
	dumpNewline(bw, 1)
	fmt.Fprintf(bw, "Channels: %d", hdr.NumChannels)
	dumpNewline(bw, 1)
	bw.WriteString("Date: ")
	dumpString(bw, hdr.Date)
	dumpNewline(bw, 1)
	bw.WriteString("Time: ")
	dumpString(bw, hdr.Time)
	dumpNewline(bw, 1)
	bw.WriteString("Driver: ")
	dumpString(bw, hdr.Driver)
	dumpNewline(bw, 1)
	bw.WriteString("VehicleID: ")
	dumpString(bw, hdr.VehicleID)
	dumpNewline(bw, 1)
	bw.WriteString("Venue: ")
	dumpString(bw, hdr.Venue)
	dumpNewline(bw, 1)
	bw.WriteString("Session: ")
	dumpString(bw, hdr.Session)
	dumpNewline(bw, 1)
	bw.WriteString("ShortComment: ")
	dumpString(bw, hdr.ShortComment)
	dumpNewline(bw, 1)
	fmt.Fprintf(bw, "ProLogging: 0x%X", hdr.ProLogging)
	fmt.Fprint(bw, "\n}")

	if ev, err := fr.Event(); err != nil {
		return fr.Warnings(), err
	} else if ev != nil {
		fmt.Fprint(bw, "\nEvent: {")
		dumpNewline(bw, 1)
		bw.WriteString("Name: ")
		dumpString(bw, ev.Name)
		dumpNewline(bw, 1)
		bw.WriteString("Session: ")
		dumpString(bw, ev.Session)
		dumpNewline(bw, 1)
		bw.WriteString("Comment: ")
		dumpString(bw, ev.Comment)
		fmt.Fprint(bw, "\n}")
	}
	if v, err := fr.Venue(); err != nil {
		return fr.Warnings(), err
	} else if v != nil {
		fmt.Fprint(bw, "\nVenue: {")
		dumpNewline(bw, 1)
		bw.WriteString("Name: ")
		dumpString(bw, v.Name)
		fmt.Fprint(bw, "\n}")
	}
	if v, err := fr.Vehicle(); err != nil {
		return fr.Warnings(), err
	} else if v != nil {
		fmt.Fprint(bw, "\nVehicle: {")
		dumpNewline(bw, 1)
		bw.WriteString("ID: ")
		dumpString(bw, v.ID)
		dumpNewline(bw, 1)
		fmt.Fprintf(bw, "Weight: %d", v.Weight)
		dumpNewline(bw, 1)
		bw.WriteString("Type: ")
		dumpString(bw, v.Type)
		dumpNewline(bw, 1)
		bw.WriteString("Comment: ")
		dumpString(bw, v.Comment)
		fmt.Fprint(bw, "\n}")
	}

	channels, err := fr.Channels()
	if err != nil {
		return fr.Warnings(), err
	}
	fmt.Fprint(bw, "\nChannels: {")
	for i := range channels {
		if err := dumpChannel(bw, fr, i, &channels[i]); err != nil {
			return fr.Warnings(), err
		}
	}
	fmt.Fprint(bw, "\n}")

	bw.Flush()
	return fr.Warnings(), nil
}

func dumpChannel(w *bufio.Writer, r *Reader, i int, ch *ChannelMetadata) error {
	dumpNewline(w, 1)
	fmt.Fprintf(w, "#%d: ", i)
	dumpString(w, ch.Name)
	w.WriteString(" {")
	dumpNewline(w, 2)
	fmt.Fprintf(w, "Datatype: %v", ch.Datatype)
	dumpNewline(w, 2)
	fmt.Fprintf(w, "Rate: %d Hz", ch.SampleRate)
	dumpNewline(w, 2)
	w.WriteString("Unit: ")
	dumpString(w, ch.Unit)
	dumpNewline(w, 2)
	fmt.Fprintf(w, "Decode: offset=%d mul=%d scale=%d dec=%d", ch.Offset, ch.Mul, ch.Scale, ch.DecPlaces)
	dumpNewline(w, 2)
	fmt.Fprintf(w, "Samples: %d at %v", ch.DataCount, ch.DataAddr)
	if ch.DataCount > 0 && ch.Datatype.Size() > 0 {
		raw, err := r.rawChannelData(ch)
		if err != nil {
			return err
		}
		sum := Fingerprint(raw)
		dumpNewline(w, 2)
		fmt.Fprintf(w, "Digest: %s", hex.EncodeToString(sum[:]))
	}
	dumpNewline(w, 1)
	w.WriteByte('}')
	return nil
}

func dumpNewline(w *bufio.Writer, indent int) {
	w.WriteByte('\n')
	for i := 0; i < indent; i++ {
		w.WriteByte('\t')
	}
}

func dumpString(w *bufio.Writer, s string) {
	for _, r := range s {
		if !unicode.IsGraphic(r) || r == '"' {
			fmt.Fprintf(w, "%q", s)
			return
		}
	}
	w.WriteString(s)
}
