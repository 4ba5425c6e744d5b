// Package report renders decoded telemetry logs into session summary
// documents for distribution outside the analysis tool.
package report

import (
	"encoding/hex"
	"time"

	motec "github.com/afonso360/motec-i2"
	"github.com/afonso360/motec-i2/ld"
)

// ChannelSummary aggregates one logged channel for presentation.
type ChannelSummary struct {
	Name     string
	Unit     string
	Datatype string
	Rate     uint16
	Samples  int
	Duration time.Duration

	// Min, Max, and Mean are engineering-unit values derived through the
	// channel's decode parameters. They are zero when the channel holds no
	// decodable samples.
	Min  float64
	Max  float64
	Mean float64
}

// Session is the flattened view of a log rendered into a report.
type Session struct {
	Device    string
	Serial    uint32
	Date      string
	Time      string
	Driver    string
	VehicleID string
	Venue     string
	Session   string
	Comment   string

	EventName    string
	EventComment string
	VehicleType  string

	// Digest identifies the source file the report was built from.
	Digest string

	Channels []ChannelSummary
}

// Build flattens log into a Session. source, when non-nil, is the encoded
// file the log was decoded from; its digest ties the report to that exact
// file.
func Build(log *motec.Log, source []byte) Session {
	s := Session{
		Device:    log.Header.DeviceType,
		Serial:    log.Header.DeviceSerial,
		Date:      log.Header.Date,
		Time:      log.Header.Time,
		Driver:    log.Header.Driver,
		VehicleID: log.Header.VehicleID,
		Venue:     log.Header.Venue,
		Session:   log.Header.Session,
		Comment:   log.Header.ShortComment,
	}
	if log.Event != nil {
		s.EventName = log.Event.Name
		s.EventComment = log.Event.Comment
	}
	if log.Vehicle != nil {
		s.VehicleType = log.Vehicle.Type
	}
	if source != nil {
		sum := ld.Fingerprint(source)
		s.Digest = hex.EncodeToString(sum[:])
	}

	s.Channels = make([]ChannelSummary, 0, len(log.Channels))
	for i := range log.Channels {
		s.Channels = append(s.Channels, summarize(&log.Channels[i]))
	}
	return s
}

func summarize(ch *motec.LoggedChannel) ChannelSummary {
	cs := ChannelSummary{
		Name:     ch.Name,
		Unit:     ch.Unit,
		Datatype: ch.Datatype.String(),
		Rate:     ch.SampleRate,
		Samples:  len(ch.Samples),
		Duration: ch.Duration(len(ch.Samples)),
	}
	if len(ch.Samples) == 0 {
		return cs
	}

	min := ch.Decode(ch.Samples[0])
	max := min
	sum := 0.0
	for _, s := range ch.Samples {
		v := ch.Decode(s)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	cs.Min = min
	cs.Max = max
	cs.Mean = sum / float64(len(ch.Samples))
	return cs
}
