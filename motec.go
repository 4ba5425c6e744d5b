// The motec package handles the decoding, encoding, and manipulation of
// MoTeC telemetry logs.
//
// This package can be used to work with logged vehicle data outside of the
// MoTeC i2 analysis tool. A complete log begins with a Log struct. A Log
// carries the file Header, the optional Event, Venue, and Vehicle metadata
// records, and a list of logged channels. Each channel pairs its descriptor
// (name, unit, sample rate, decode parameters) with the raw samples captured
// by the logging hardware.
//
// Raw samples are stored the way the hardware wrote them. The human-meaningful
// engineering value of a sample (degrees, kPa, RPM) is derived through the
// owning channel's decode parameters; see Channel.Decode.
//
// Log structures can be decoded from and encoded to MoTeC's native LD
// container through the "ld" sub-package. The "ldz" sub-package provides a
// compressed sidecar format for archival.
package motec

// Log is the root of a decoded telemetry log.
type Log struct {
	// Header is the file-level metadata record.
	Header Header

	// Event, Venue, and Vehicle describe the session. Each may be nil; a
	// nil record means it was absent from the source.
	Event   *Event
	Venue   *Venue
	Vehicle *Vehicle

	// Channels contains every logged channel in file order.
	Channels []LoggedChannel
}

// LoggedChannel pairs a channel descriptor with its captured samples.
type LoggedChannel struct {
	Channel

	// Samples holds the channel's raw samples in capture order. Index 0 is
	// the earliest in time.
	Samples []Sample
}

// Header is the file-level metadata record of a log.
type Header struct {
	// DeviceSerial is the serial number of the logging device.
	DeviceSerial uint32

	// DeviceType names the logging device family (e.g. "ADL").
	DeviceType string

	// DeviceVersion is the firmware version of the logging device.
	DeviceVersion uint16

	// NumChannels is the channel count declared by the device. It is
	// cross-checked against, but not required to equal, the number of
	// channels actually present.
	NumChannels uint32

	// Date and Time are free-form strings as written by the device.
	Date string
	Time string

	Driver       string
	VehicleID    string
	Venue        string
	Session      string
	ShortComment string

	// ProLogging carries the device's pro-logging capability word.
	ProLogging uint32

	// Opaque is a 1024-byte vendor region whose meaning is not understood.
	// It is captured on decode and re-emitted verbatim on encode; when
	// empty, zeros are emitted.
	Opaque []byte
}

// Event describes the logged event.
type Event struct {
	Name    string
	Session string
	Comment string
}

// Venue describes where the session took place.
type Venue struct {
	Name string
}

// Vehicle describes the instrumented vehicle.
type Vehicle struct {
	ID      string
	Weight  uint32
	Type    string
	Comment string
}
