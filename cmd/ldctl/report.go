package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/afonso360/motec-i2/ld"
	"github.com/afonso360/motec-i2/report"
)

func reportCmd() *cli.Command {
	var in, out string
	return &cli.Command{
		Name:  "report",
		Usage: "Render a session summary PDF from a log file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input LD file", Required: true, Destination: &in},
			&cli.StringFlag{Name: "out", Usage: "output PDF (default: input with .pdf)", Destination: &out},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if out == "" {
				out = strings.TrimSuffix(in, ".ld") + ".pdf"
			}
			return renderReport(in, out)
		},
	}
}

func renderReport(in, out string) error {
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

	return report.SaveSessionPDF(report.Build(log, raw), out)
}
