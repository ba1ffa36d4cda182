package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rv32lab/kernel/internal/cli"
	"github.com/rv32lab/kernel/internal/kernel"
	"github.com/rv32lab/kernel/internal/log"
	"github.com/rv32lab/kernel/internal/tty"
)

// Run is the "run" command: it boots the kernel and its four demo processes for a bounded
// wall-clock duration, rendering the display multiplexer to the terminal if one is attached.
func Run() cli.Command {
	return &run{duration: 5 * time.Second}
}

type run struct {
	duration time.Duration
	headless bool
	quiet    bool
	debug    bool
}

func (run) Description() string {
	return "boot the kernel and run the demo processes"
}

func (r *run) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
run [ -duration D ] [ -headless ] [ -debug | -quiet ]

Boot the process table, the display multiplexer, and the four demo
processes, and run them for the given duration.`)

	return err
}

func (r *run) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)

	fs.DurationVar(&r.duration, "duration", r.duration, "how long to run before exiting")
	fs.BoolVar(&r.headless, "headless", false, "never attempt to draw to the terminal")
	fs.BoolVar(&r.quiet, "quiet", false, "enable quiet output, log errors only")
	fs.BoolVar(&r.debug, "debug", false, "enable debug logging")

	return fs
}

func (r *run) Run(ctx context.Context, _ []string, _ io.Writer, _ *log.Logger) int {
	if r.quiet {
		log.LogLevel.Set(log.Error)
	}

	if r.debug {
		log.LogLevel.Set(log.Debug)
	}

	logger := log.NewFormattedLogger(os.Stderr)
	log.SetDefault(logger)

	ctx, cancel := context.WithTimeout(ctx, r.duration)
	defer cancel()

	opts := []kernel.OptionFn{kernel.WithLogger(logger)}

	var restore func()

	if !r.headless {
		_, console, cancelConsole := tty.ConsoleContext(ctx)
		if console != nil {
			opts = append(opts, kernel.WithRenderer(console))
			restore = cancelConsole
		}
	}

	logger.Info("booting kernel")

	k := kernel.New(opts...)

	if err := k.Boot(); err != nil {
		logger.Error("boot failed", "err", err)
		return 2
	}

	k.Run(ctx)

	if restore != nil {
		restore()
	}

	if err := ctx.Err(); errors.Is(err, context.DeadlineExceeded) {
		logger.Info("run completed")
		return 0
	}

	return 0
}
