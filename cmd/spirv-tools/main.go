// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	"github.com/urfave/cli/v3"

	"spirv/internal/asm"
	"spirv/internal/binary"
	"spirv/internal/diag"
	"spirv/internal/passes"
	"spirv/repl"
)

func main() {
	app := &cli.Command{
		Name:  "spirv-tools",
		Usage: "Assemble, disassemble, and optimize SPIR-V modules",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log verbosity",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored error output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			commonlog.Configure(int(cmd.Int("verbose")), nil)
			if cmd.Bool("no-color") {
				color.NoColor = true
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "as",
				Usage: "Assemble textual IL from stdin to a binary on stdout",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "optimize",
						Usage: "Optimize the module before writing",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return assemble(cmd.Bool("optimize"))
				},
			},
			{
				Name:  "dis",
				Usage: "Disassemble a binary from stdin to textual IL on stdout",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "raw",
						Usage: "Write the fully explicit form",
					},
					&cli.BoolFlag{
						Name:  "optimize",
						Usage: "Optimize the module before writing",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return disassemble(cmd.Bool("raw"), cmd.Bool("optimize"))
				},
			},
			{
				Name:  "opt",
				Usage: "Optimize a binary from stdin to a binary on stdout",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return optimizeBinary()
				},
			},
			{
				Name:  "repl",
				Usage: "Interactively assemble instructions",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return repl.Start()
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// assemble reads IL from stdin and writes the binary to stdout.
func assemble(optimize bool) error {
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	module, err := asm.ReadModule(strings.NewReader(string(source)))
	if err != nil {
		reportSourceError(string(source), err)
		os.Exit(1)
	}
	if optimize {
		if err := passes.Optimize(module); err != nil {
			return err
		}
	}
	return binary.WriteModule(os.Stdout, module)
}

// disassemble reads a binary from stdin and writes IL to stdout.
func disassemble(raw, optimize bool) error {
	module, err := binary.ReadModule(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
	if optimize {
		if err := passes.Optimize(module); err != nil {
			return err
		}
	}
	return asm.WriteModule(os.Stdout, module, raw)
}

// optimizeBinary reads a binary from stdin, optimizes it, and writes the
// binary to stdout.
func optimizeBinary() error {
	module, err := binary.ReadModule(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
	if err := passes.Optimize(module); err != nil {
		return err
	}
	return binary.WriteModule(os.Stdout, module)
}

// reportSourceError prints a one-line error, plus the source context
// when the error names a line.
func reportSourceError(source string, err error) {
	fmt.Fprintln(os.Stderr, err)
	line := 0
	var msg string
	switch e := err.(type) {
	case *asm.ParseError:
		line, msg = e.Line, e.Msg
	case *asm.VerificationError:
		line, msg = e.Line, e.Msg
	}
	if line > 0 {
		reporter := diag.NewReporter("<stdin>", source)
		fmt.Fprint(os.Stderr, reporter.Format(line, msg))
	}
}

