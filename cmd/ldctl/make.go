package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/afonso360/motec-i2/ld"
)

func makeCmd() *cli.Command {
	var in, out string
	return &cli.Command{
		Name:  "make",
		Usage: "Encode a log file from a YAML session definition",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "session definition (YAML)", Required: true, Destination: &in},
			&cli.StringFlag{Name: "out", Usage: "output LD file", Required: true, Destination: &out},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return makeLog(in, out)
		},
	}
}

func makeLog(in, out string) error {
	raw, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	log, err := parseSession(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", in, err)
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
