// The ldfile-stat command displays stats for a MoTeC LD log file.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/afonso360/motec-i2/ld"
)

const usage = `usage: ldfile-stat [INPUT] [OUTPUT]

Reads a MoTeC LD file from INPUT, and writes to OUTPUT statistics for the
file as JSON.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then
stdin is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings
and errors are written to stderr.
`

type ChannelStat struct {
	Name     string
	Datatype string
	Unit     string `json:",omitempty"`
	Rate     uint16
	Samples  int
	Seconds  float64
}

type Stats struct {
	Device  string
	Serial  uint32
	Version uint16

	Date    string `json:",omitempty"`
	Time    string `json:",omitempty"`
	Venue   string `json:",omitempty"`
	Session string `json:",omitempty"`

	// DeclaredChannels is the header's channel count; Channels is the
	// number of descriptors actually present.
	DeclaredChannels uint32
	Channels         int
	Samples          int

	// Seconds is the longest capture duration over all channels.
	Seconds float64

	ByDatatype  map[string]int
	ChannelList []ChannelStat
}

func main() {
	var input io.Reader = os.Stdin
	var output io.Writer = os.Stdout

	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) >= 1 && args[0] != "-" {
		in, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("open input: %w", err))
			return
		}
		input = in
		defer in.Close()
	}
	if len(args) >= 2 && args[1] != "-" {
		out, err := os.Create(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("create output: %w", err))
			return
		}
		defer out.Close()
		output = out
	}

	// The decoder needs random access; stdin may not provide it.
	raw, err := io.ReadAll(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("read input: %w", err))
		return
	}

	log, warn, err := ld.Decoder{}.Decode(bytes.NewReader(raw))
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("decode: %w", err))
		return
	}

	stats := Stats{
		Device:           log.Header.DeviceType,
		Serial:           log.Header.DeviceSerial,
		Version:          log.Header.DeviceVersion,
		Date:             log.Header.Date,
		Time:             log.Header.Time,
		Venue:            log.Header.Venue,
		Session:          log.Header.Session,
		DeclaredChannels: log.Header.NumChannels,
		Channels:         len(log.Channels),
		ByDatatype:       map[string]int{},
	}
	for i := range log.Channels {
		ch := &log.Channels[i]
		seconds := ch.Duration(len(ch.Samples)).Seconds()
		stats.Samples += len(ch.Samples)
		stats.ByDatatype[ch.Datatype.String()]++
		if seconds > stats.Seconds {
			stats.Seconds = seconds
		}
		stats.ChannelList = append(stats.ChannelList, ChannelStat{
			Name:     ch.Name,
			Datatype: ch.Datatype.String(),
			Unit:     ch.Unit,
			Rate:     ch.SampleRate,
			Samples:  len(ch.Samples),
			Seconds:  seconds,
		})
	}

	je := json.NewEncoder(output)
	je.SetIndent("", "\t")
	if err := je.Encode(&stats); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("encode stats: %w", err))
		return
	}
}
