package ld_test

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	motec "github.com/afonso360/motec-i2"
	"github.com/afonso360/motec-i2/ld"
)

func warmupLog() *motec.Log {
	return &motec.Log{
		Header: motec.Header{
			DeviceSerial:  12007,
			DeviceType:    "ADL",
			DeviceVersion: 420,
			NumChannels:   2,
			Date:          "23/11/2005",
			Time:          "09:53:00",
			VehicleID:     "11A",
			Venue:         "Calder",
			Session:       "2",
			ShortComment:  "second warmup",
			ProLogging:    0xD20822,
		},
		Event: &motec.Event{
			Name:    "i2 data generation",
			Session: "2",
			Comment: "second warmup",
		},
		Venue:   &motec.Venue{Name: "Calder"},
		Vehicle: &motec.Vehicle{ID: "11A", Weight: 1200, Type: "Sedan"},
		Channels: []motec.LoggedChannel{
			{
				Channel: airTempInlet(),
				Samples: []motec.Sample{
					motec.SampleI16(199),
					motec.SampleI16(199),
					motec.SampleI16(201),
					motec.SampleI16(199),
					motec.SampleI16(199),
				},
			},
			{
				Channel: motec.Channel{
					Name:       "Brake Pres Front",
					ShortName:  "BrPresF",
					Unit:       "kPa",
					Datatype:   motec.DatatypeF32,
					SampleRate: 50,
					Offset:     0,
					Mul:        1,
					Scale:      1,
					DecPlaces:  0,
				},
				Samples: []motec.Sample{
					motec.SampleF32(101.5),
					motec.SampleF32(230.25),
				},
			},
		},
	}
}

func encodeLog(t *testing.T, log *motec.Log) *memFile {
	t.Helper()
	var f memFile
	if err := (ld.Encoder{}).Encode(&f, log); err != nil {
		t.Fatal(err)
	}
	return &f
}

func TestRoundTrip(t *testing.T) {
	src := warmupLog()
	f := encodeLog(t, src)

	log, warn, err := ld.Decoder{}.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if warn != nil {
		t.Errorf("unexpected warnings: %v", warn)
	}

	hdr := log.Header
	if hdr.DeviceSerial != 12007 || hdr.DeviceType != "ADL" || hdr.DeviceVersion != 420 {
		t.Error("unexpected device fields in decoded header")
	}
	if hdr.Date != "23/11/2005" || hdr.Time != "09:53:00" {
		t.Error("unexpected date or time in decoded header")
	}
	if hdr.VehicleID != "11A" || hdr.Venue != "Calder" || hdr.Session != "2" {
		t.Error("unexpected session fields in decoded header")
	}
	if hdr.ShortComment != "second warmup" || hdr.ProLogging != 0xD20822 {
		t.Error("unexpected comment fields in decoded header")
	}

	if log.Event == nil || *log.Event != *src.Event {
		t.Error("unexpected result decoding event record")
	}
	if log.Venue == nil || *log.Venue != *src.Venue {
		t.Error("unexpected result decoding venue record")
	}
	if log.Vehicle == nil || *log.Vehicle != *src.Vehicle {
		t.Error("unexpected result decoding vehicle record")
	}

	if len(log.Channels) != 2 {
		t.Fatalf("decoded %d channels, expected 2", len(log.Channels))
	}
	air := log.Channels[0]
	if air.Name != "Air Temp Inlet" || air.Datatype != motec.DatatypeI16 || air.SampleRate != 2 {
		t.Error("unexpected descriptor for first channel")
	}
	if len(air.Samples) != 5 || air.Samples[2] != motec.SampleI16(201) {
		t.Error("unexpected samples for first channel")
	}
	if got := air.Decode(air.Samples[0]); math.Abs(got-19.9) > 1e-9 {
		t.Errorf("decoded value %v, expected 19.9", got)
	}
	if got := air.Decode(air.Samples[2]); math.Abs(got-20.1) > 1e-9 {
		t.Errorf("decoded value %v, expected 20.1", got)
	}

	brake := log.Channels[1]
	if brake.Datatype != motec.DatatypeF32 || brake.Unit != "kPa" {
		t.Error("unexpected descriptor for second channel")
	}
	if len(brake.Samples) != 2 || brake.Samples[1] != motec.SampleF32(230.25) {
		t.Error("unexpected samples for second channel")
	}
}

func TestAddressTable(t *testing.T) {
	f := encodeLog(t, warmupLog())

	r := ld.NewReader(f)
	tbl, err := r.AddressTable()
	if err != nil {
		t.Fatal(err)
	}
	if tbl.ChannelMeta != 0x3448 {
		t.Errorf("channel list at %v, expected 0x3448", tbl.ChannelMeta)
	}
	if tbl.ChannelData != 0x3448+2*124 {
		t.Errorf("channel data at %v, expected %v", tbl.ChannelData, ld.FileAddr(0x3448+2*124))
	}
	if tbl.Event != 0x6E2 || tbl.Venue != 0x1336 || tbl.Vehicle != 0x1F54 {
		t.Errorf("metadata chain at %v, %v, %v", tbl.Event, tbl.Venue, tbl.Vehicle)
	}
}

func TestAddressTable_AbsentChain(t *testing.T) {
	log := warmupLog()
	log.Event = nil
	log.Venue = nil
	log.Vehicle = nil
	f := encodeLog(t, log)

	r := ld.NewReader(f)
	tbl, err := r.AddressTable()
	if err != nil {
		t.Fatal(err)
	}
	if !tbl.Event.IsZero() || !tbl.Venue.IsZero() || !tbl.Vehicle.IsZero() {
		t.Error("expected the whole metadata chain to be absent")
	}

	if ev, err := r.Event(); err != nil || ev != nil {
		t.Error("unexpected result reading absent event record")
	}
	if v, err := r.Venue(); err != nil || v != nil {
		t.Error("unexpected result reading absent venue record")
	}
	if v, err := r.Vehicle(); err != nil || v != nil {
		t.Error("unexpected result reading absent vehicle record")
	}
}

func TestHeader_InvalidMarker(t *testing.T) {
	f := encodeLog(t, warmupLog())
	binary.LittleEndian.PutUint32(f.buf[0:], 0xDEAD)

	r := ld.NewReader(f)
	_, err := r.Header()
	var markerErr ld.InvalidMarkerError
	if !errors.As(err, &markerErr) {
		t.Fatalf("expected InvalidMarkerError, got %v", err)
	}
	if markerErr.Found != 0xDEAD || markerErr.Expected != 64 {
		t.Error("unexpected fields in marker error")
	}
}

func TestHeader_InvalidText(t *testing.T) {
	f := encodeLog(t, warmupLog())
	f.buf[74] = 0xFF // first byte of the device type field

	r := ld.NewReader(f)
	_, err := r.Header()
	var textErr ld.TextError
	if !errors.As(err, &textErr) {
		t.Fatalf("expected TextError, got %v", err)
	}
	if textErr.Field != "device type" {
		t.Errorf("text error names field %q", textErr.Field)
	}
}

func TestChannels_Cycle(t *testing.T) {
	f := encodeLog(t, warmupLog())
	// Point the second descriptor's next pointer back at the first.
	binary.LittleEndian.PutUint32(f.buf[0x3448+124+4:], 0x3448)

	r := ld.NewReader(f)
	if _, err := r.Channels(); !errors.Is(err, ld.ErrChannelCycle) {
		t.Fatalf("expected ErrChannelCycle, got %v", err)
	}
}

func TestChannelData_Undecodable(t *testing.T) {
	var f memFile
	r := ld.NewReader(&f)

	f16 := ld.ChannelMetadata{
		Channel:   motec.Channel{Name: "Exhaust Temp", Datatype: motec.DatatypeF16},
		DataCount: 3,
	}
	if _, err := r.ChannelData(&f16); !errors.Is(err, ld.ErrF16Unsupported) {
		t.Fatalf("expected ErrF16Unsupported, got %v", err)
	}

	invalid := ld.ChannelMetadata{
		Channel:   motec.Channel{Name: "Ride Height FL", Datatype: motec.DatatypeInvalid},
		DataCount: 3,
	}
	if _, err := r.ChannelData(&invalid); !errors.Is(err, ld.ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}

	// Zero-count channels are fine regardless of datatype.
	empty := ld.ChannelMetadata{
		Channel: motec.Channel{Name: "Ride Height FR", Datatype: motec.DatatypeInvalid},
	}
	if samples, err := r.ChannelData(&empty); err != nil || samples != nil {
		t.Error("unexpected result reading empty channel")
	}
}

func TestDecode_ChannelCountMismatch(t *testing.T) {
	log := warmupLog()
	log.Header.NumChannels = 9
	f := encodeLog(t, log)

	decoded, warn, err := ld.Decoder{}.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if decoded == nil || len(decoded.Channels) != 2 {
		t.Fatal("expected the decode to succeed despite the count mismatch")
	}
	var countErr ld.ChannelCountError
	if !errors.As(warn, &countErr) {
		t.Fatalf("expected ChannelCountError warning, got %v", warn)
	}
	if countErr.Declared != 9 || countErr.Walked != 2 {
		t.Error("unexpected fields in count warning")
	}
}
