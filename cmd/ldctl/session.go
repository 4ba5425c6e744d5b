package main

import (
	"fmt"

	"gopkg.in/yaml.v3"

	motec "github.com/afonso360/motec-i2"
)

// sessionFile is the YAML schema consumed by "ldctl make". It describes a
// whole log: the device, the session metadata, and each channel with its
// raw samples.
type sessionFile struct {
	Device struct {
		Type    string `yaml:"type"`
		Serial  uint32 `yaml:"serial"`
		Version uint16 `yaml:"version"`
	} `yaml:"device"`

	Date    string `yaml:"date"`
	Time    string `yaml:"time"`
	Driver  string `yaml:"driver"`
	Venue   string `yaml:"venue"`
	Session string `yaml:"session"`
	Comment string `yaml:"comment"`

	Vehicle *struct {
		ID      string `yaml:"id"`
		Weight  uint32 `yaml:"weight"`
		Type    string `yaml:"type"`
		Comment string `yaml:"comment"`
	} `yaml:"vehicle"`

	Event *struct {
		Name    string `yaml:"name"`
		Session string `yaml:"session"`
		Comment string `yaml:"comment"`
	} `yaml:"event"`

	Channels []sessionChannel `yaml:"channels"`
}

type sessionChannel struct {
	Name      string    `yaml:"name"`
	Short     string    `yaml:"short"`
	Unit      string    `yaml:"unit"`
	Datatype  string    `yaml:"datatype"`
	Rate      uint16    `yaml:"rate"`
	Offset    uint16    `yaml:"offset"`
	Mul       uint16    `yaml:"mul"`
	Scale     uint16    `yaml:"scale"`
	DecPlaces int16     `yaml:"decplaces"`
	Samples   []float64 `yaml:"samples"`
}

func parseSession(raw []byte) (*motec.Log, error) {
	var sf sessionFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return nil, err
	}
	return sf.toLog()
}

func (sf *sessionFile) toLog() (*motec.Log, error) {
	log := &motec.Log{
		Header: motec.Header{
			DeviceSerial:  sf.Device.Serial,
			DeviceType:    sf.Device.Type,
			DeviceVersion: sf.Device.Version,
			NumChannels:   uint32(len(sf.Channels)),
			Date:          sf.Date,
			Time:          sf.Time,
			Driver:        sf.Driver,
			Venue:         sf.Venue,
			Session:       sf.Session,
			ShortComment:  sf.Comment,
		},
	}
	if sf.Vehicle != nil {
		log.Header.VehicleID = sf.Vehicle.ID
		log.Vehicle = &motec.Vehicle{
			ID:      sf.Vehicle.ID,
			Weight:  sf.Vehicle.Weight,
			Type:    sf.Vehicle.Type,
			Comment: sf.Vehicle.Comment,
		}
	}
	if sf.Event != nil {
		log.Event = &motec.Event{
			Name:    sf.Event.Name,
			Session: sf.Event.Session,
			Comment: sf.Event.Comment,
		}
		// The venue record is reachable only through the event record.
		if sf.Venue != "" {
			log.Venue = &motec.Venue{Name: sf.Venue}
		}
	}

	for i := range sf.Channels {
		ch, err := sf.Channels[i].toChannel()
		if err != nil {
			return nil, err
		}
		log.Channels = append(log.Channels, ch)
	}
	return log, nil
}

func (sc *sessionChannel) toChannel() (motec.LoggedChannel, error) {
	datatype := motec.DatatypeFromString(sc.Datatype)
	if datatype == motec.DatatypeInvalid {
		return motec.LoggedChannel{}, fmt.Errorf("channel %q: unknown datatype %q", sc.Name, sc.Datatype)
	}

	ch := motec.LoggedChannel{
		Channel: motec.Channel{
			Name:       sc.Name,
			ShortName:  sc.Short,
			Unit:       sc.Unit,
			Datatype:   datatype,
			SampleRate: sc.Rate,
			Offset:     sc.Offset,
			Mul:        sc.Mul,
			Scale:      sc.Scale,
			DecPlaces:  sc.DecPlaces,
		},
	}

	for _, v := range sc.Samples {
		switch datatype {
		case motec.DatatypeBeacon16, motec.DatatypeI16:
			ch.Samples = append(ch.Samples, motec.SampleI16(int16(v)))
		case motec.DatatypeBeacon32, motec.DatatypeI32:
			ch.Samples = append(ch.Samples, motec.SampleI32(int32(v)))
		case motec.DatatypeF32:
			ch.Samples = append(ch.Samples, motec.SampleF32(float32(v)))
		default:
			return motec.LoggedChannel{}, fmt.Errorf("channel %q: datatype %v cannot carry samples", sc.Name, datatype)
		}
	}
	return ch, nil
}
