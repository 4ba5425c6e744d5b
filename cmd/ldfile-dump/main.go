// The ldfile-dump command displays a readable representation of a MoTeC LD
// log file.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/afonso360/motec-i2/ld"
)

const usage = `usage: ldfile-dump [INPUT] [OUTPUT]

Reads a MoTeC LD file from INPUT, and writes to OUTPUT a readable
representation of the file: the resolved addresses, the header, the metadata
chain, and every channel descriptor with a digest of its payload.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then
stdin is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings
and errors are written to stderr.
`

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

	raw, err := io.ReadAll(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("read input: %w", err))
		return
	}

	warn, err := ld.Decoder{}.Dump(output, bytes.NewReader(raw))
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("dump: %w", err))
		return
	}
	fmt.Fprintln(output)
}
