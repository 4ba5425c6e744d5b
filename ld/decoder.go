package ld

import (
	"io"

	motec "github.com/afonso360/motec-i2"
	"github.com/afonso360/motec-i2/errors"
)

// Decoder decodes a whole LD container into a motec.Log.
type Decoder struct {
	// Revision selects the layout variant expected of the input.
	Revision Revision
}

// Decode reads a complete log from src: the header, the optional metadata
// chain, and every channel with its samples.
//
// Non-fatal observations (non-zero reserved regions, a header channel count
// that disagrees with the descriptor list) are returned in warn, which may
// be non-nil even on success. If err is non-nil, the returned log is nil.
func (d Decoder) Decode(src io.ReadSeeker) (log *motec.Log, warn, err error) {
	r := NewReaderRevision(src, d.Revision)
	var warns errors.Errors

	hdr, err := r.Header()
	if err != nil {
		return nil, r.Warnings(), err
	}
	log = &motec.Log{Header: *hdr}

	if log.Event, err = r.Event(); err != nil {
		return nil, r.Warnings(), err
	}
	if log.Venue, err = r.Venue(); err != nil {
		return nil, r.Warnings(), err
	}
	if log.Vehicle, err = r.Vehicle(); err != nil {
		return nil, r.Warnings(), err
	}

	channels, err := r.Channels()
	if err != nil {
		return nil, r.Warnings(), err
	}
	if uint32(len(channels)) != hdr.NumChannels {
		warns = warns.Append(ChannelCountError{
			Declared: hdr.NumChannels,
			Walked:   len(channels),
		})
	}

	log.Channels = make([]motec.LoggedChannel, 0, len(channels))
	for i := range channels {
		samples, err := r.ChannelData(&channels[i])
		if err != nil {
			return nil, errors.Union(r.Warnings(), warns.Return()), err
		}
		log.Channels = append(log.Channels, motec.LoggedChannel{
			Channel: channels[i].Channel,
			Samples: samples,
		})
	}

	return log, errors.Union(r.Warnings(), warns.Return()), nil
}
