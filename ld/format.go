// Package ld implements a decoder and encoder for MoTeC's binary LD log
// container.
//
// The easiest way to decode and encode files is through the Decoder and
// Encoder types, which convert between byte streams and Log structures
// specified by the motec package. The Reader and Writer types expose the
// underlying incremental operations: address resolution, record decoding,
// channel-list traversal, and the layout bookkeeping needed to emit a file
// that the reference analysis tool can open.
//
// The container has no directory section and no version field. Optional
// substructures are located through pointers stored at fixed offsets, and
// channel descriptors form a singly linked list threaded through the file.
// All multi-byte fields are little-endian.
package ld

// headerMarker is the magic value carried in the first four bytes of every
// LD file.
const headerMarker uint32 = 64

// Revision selects the layout variant of the container. Captured files
// exhibit incompatible layouts across logger generations; the offsets used
// to resolve substructures are keyed by Revision rather than hard-coded.
type Revision uint8

const (
	// Revision102 is the classic ADL/EDL layout: the header carries
	// explicit pointers to the channel list, the channel data region, and
	// the event record, while the venue and vehicle pointers are embedded
	// within the event and venue records.
	Revision102 Revision = iota
)

// layout is the offset table for one format revision.
type layout struct {
	// Header offsets of the three main pointers.
	metaPtr  int64
	dataPtr  int64
	eventPtr int64

	// Pointer sub-offsets within the event and venue records.
	venuePtrOff   uint32
	vehiclePtrOff uint32

	// preambleSize is where the first channel descriptor is placed on
	// encode. The region between the header record and this address holds
	// the event, venue, and vehicle records at their canonical addresses.
	preambleSize uint32

	eventAddr   FileAddr
	venueAddr   FileAddr
	vehicleAddr FileAddr

	// trimSpaces selects whether fixed-width text fields additionally trim
	// trailing spaces after null truncation.
	trimSpaces bool
}

func (rev Revision) layout() layout {
	switch rev {
	case Revision102:
		fallthrough
	default:
		return layout{
			metaPtr:       8,
			dataPtr:       12,
			eventPtr:      36,
			venuePtrOff:   1152,
			vehiclePtrOff: 1098,
			preambleSize:  0x3448,
			eventAddr:     0x06E2,
			venueAddr:     0x1336,
			vehicleAddr:   0x1F54,
			trimSpaces:    false,
		}
	}
}

// Sizes of the fixed records.
const (
	channelRecordSize = 124

	// Field offsets within a channel descriptor, used for back-patching.
	channelNextAddrOff = 4
	channelDataAddrOff = 8
)
