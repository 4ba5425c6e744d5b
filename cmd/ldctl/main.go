// The ldctl command inspects, converts, and archives MoTeC LD log files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "ldctl",
		Usage: "Inspect, convert, and archive MoTeC LD log files",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			copyCmd(),
			packCmd(),
			unpackCmd(),
			reportCmd(),
			makeCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
