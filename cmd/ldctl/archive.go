package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/afonso360/motec-i2/ldz"
)

func packCmd() *cli.Command {
	var in, out string
	return &cli.Command{
		Name:  "pack",
		Usage: "Compress a log file into an LDZ archive",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input LD file", Required: true, Destination: &in},
			&cli.StringFlag{Name: "out", Usage: "output archive (default: input + .ldz)", Destination: &out},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if out == "" {
				out = in + ".ldz"
			}
			return pack(in, out)
		},
	}
}

func unpackCmd() *cli.Command {
	var in, out string
	return &cli.Command{
		Name:  "unpack",
		Usage: "Extract and verify a log file from an LDZ archive",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input archive", Required: true, Destination: &in},
			&cli.StringFlag{Name: "out", Usage: "output LD file (default: input without .ldz)", Destination: &out},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if out == "" {
				out = strings.TrimSuffix(in, ".ldz")
				if out == in {
					return fmt.Errorf("cannot derive output name from %q, use --out", in)
				}
			}
			return unpack(in, out)
		},
	}
}

func pack(in, out string) error {
	raw, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := ldz.Compress(f, raw); err != nil {
		f.Close()
		return fmt.Errorf("compress %s: %w", in, err)
	}
	return f.Close()
}

func unpack(in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	raw, err := ldz.Decompress(f)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", in, err)
	}
	return os.WriteFile(out, raw, 0o644)
}
