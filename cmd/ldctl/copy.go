package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/afonso360/motec-i2/ld"
)

func copyCmd() *cli.Command {
	var in, out string
	return &cli.Command{
		Name:  "copy",
		Usage: "Decode a log and re-encode it with canonical layout",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input LD file", Required: true, Destination: &in},
			&cli.StringFlag{Name: "out", Usage: "output LD file", Required: true, Destination: &out},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return copyLog(in, out)
		},
	}
}

// copyLog rewrites a log through a full decode/encode cycle. Record order
// and addresses come out canonical; unknown regions that the codec does not
// carry are dropped.
func copyLog(in, out string) error {
	raw, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	log, warn, err := ld.Decoder{}.Decode(bytes.NewReader(raw))
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("warning: %w", warn))
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", in, err)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := (ld.Encoder{}).Encode(f, log); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", out, err)
	}
	return f.Close()
}
