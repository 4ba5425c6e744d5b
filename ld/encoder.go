package ld

import (
	"io"

	motec "github.com/afonso360/motec-i2"
)

// Encoder encodes a whole motec.Log as an LD container.
type Encoder struct {
	// Revision selects the layout variant of the output.
	Revision Revision
}

// Encode writes log to dst: the header, whatever of the metadata chain is
// present, and every channel descriptor followed by its payload. At least
// one channel is required; Finish's pointer patching has no valid encoding
// otherwise and ErrNoChannels is returned.
//
// The metadata chain is written in pointer order, so a venue without an
// event, or a vehicle without a venue, cannot be represented and is skipped.
func (e Encoder) Encode(dst io.WriteSeeker, log *motec.Log) error {
	w := NewWriterRevision(dst, e.Revision)

	if err := w.WriteHeader(&log.Header); err != nil {
		return err
	}

	if log.Event != nil {
		if err := w.WriteEvent(log.Event); err != nil {
			return err
		}
		if log.Venue != nil {
			if err := w.WriteVenue(log.Venue); err != nil {
				return err
			}
			if log.Vehicle != nil {
				if err := w.WriteVehicle(log.Vehicle); err != nil {
					return err
				}
			}
		}
	}

	handles := make([]ChannelHandle, len(log.Channels))
	for i := range log.Channels {
		h, err := w.WriteChannel(&log.Channels[i].Channel, log.Channels[i].Samples)
		if err != nil {
			return err
		}
		handles[i] = h
	}
	for i := range log.Channels {
		if err := w.WriteChannelData(handles[i], log.Channels[i].Samples); err != nil {
			return err
		}
	}

	return w.Finish()
}
