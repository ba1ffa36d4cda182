package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/rv32lab/kernel/internal/cli"
	"github.com/rv32lab/kernel/internal/kernel"
	"github.com/rv32lab/kernel/internal/log"
)

// Trace is the "trace" command: it runs the kernel headless with debug logging forced on, writing
// every scheduling and IPC decision to stdout instead of drawing to a terminal.
func Trace() cli.Command {
	return &trace{duration: 2 * time.Second}
}

type trace struct {
	duration time.Duration
}

func (trace) Description() string {
	return "run headless with debug logging to stdout"
}

func (t *trace) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
trace [ -duration D ]

Boot the kernel and run it headless for the given duration, logging every
scheduling and IPC decision at debug level.`)

	return err
}

func (t *trace) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	fs.DurationVar(&t.duration, "duration", t.duration, "how long to run before exiting")

	return fs
}

func (t *trace) Run(ctx context.Context, _ []string, out io.Writer, _ *log.Logger) int {
	log.LogLevel.Set(log.Debug)

	logger := log.NewFormattedLogger(out)
	log.SetDefault(logger)

	ctx, cancel := context.WithTimeout(ctx, t.duration)
	defer cancel()

	k := kernel.New(kernel.WithLogger(logger))

	if err := k.Boot(); err != nil {
		logger.Error("boot failed", "err", err)
		return 2
	}

	k.Run(ctx)

	logger.Info("trace completed")

	return 0
}
