// Package proc implements the process table, scheduler, and synchronous IPC subsystem as one
// package: the two are kept together because a process's IPC state (pending_send, waiting_for,
// senders, inbox) is inseparable from its scheduling state (a Blocked process always has a
// well-defined resumption reason), and splitting them into separate packages would force a Pid
// type through an import cycle for no benefit.
package proc

import "fmt"

// Pid identifies a process by its slot index in the process table.
type Pid int

// IdlePid is the reserved slot for the idle process. It is always Runnable, never blocks, carries
// no IPC state, and is never enqueued.
const IdlePid Pid = 0

// ProcsMax is the fixed size of the process table, matching the reference kernel.
const ProcsMax = 8

// StackSize is the size of each process's in-table kernel stack.
const StackSize = 8 * 1024

func (p Pid) String() string {
	if p == IdlePid {
		return "pid(idle)"
	}

	return fmt.Sprintf("pid(%d)", int(p))
}
