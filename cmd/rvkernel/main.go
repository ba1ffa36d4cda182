// Command rvkernel is the command-line interface to the simulated RISC-V microkernel: a process
// table, a cooperative scheduler, synchronous IPC, and a display multiplexer driving four demo
// processes.
package main

import (
	"context"
	"os"

	"github.com/rv32lab/kernel/internal/cli"
	"github.com/rv32lab/kernel/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Run(),
	cmd.Trace(),
}

func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
