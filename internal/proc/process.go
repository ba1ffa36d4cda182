package proc

import (
	"fmt"

	"github.com/rv32lab/kernel/internal/addr"
	"github.com/rv32lab/kernel/internal/csr"
)

// State is a process's position in the scheduling state machine: Unused --create--> Runnable
// <--unblock-- Blocked, with no Exited state — processes loop forever.
type State int

const (
	Unused State = iota
	Runnable
	Blocked
)

func (s State) String() string {
	switch s {
	case Unused:
		return "unused"
	case Runnable:
		return "runnable"
	case Blocked:
		return "blocked"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Word is a 32-bit register-sized value.
type Word = uint32

// Context is the 14-word callee-saved register block (ra, sp, s0..s11) a real context switch
// would save and restore. The simulator drives process switching through goroutines and a resume
// channel instead of saving registers directly — Go's own runtime does that part — but the field
// is kept on Process so CreateProcess can be judged against the same ra/sp-priming contract the
// reference implementation uses, and so tests can assert against it directly.
type Context struct {
	RA Word
	SP Word
	S  [12]Word
}

// Process is one slot of the process table.
type Process struct {
	pid       Pid
	state     State
	pageTable addr.PhysAddr
	satp      csr.Satp
	sstatus   csr.Sstatus
	sie       csr.Sie
	context   Context
	sscratch  [2]Word // [0]: parked caller sp; [1]: top of kernel stack
	stack     []byte

	ipc ipcState

	// resume is the baton channel a goroutine waits on before it's allowed to run, and the
	// channel Switch sends to in order to hand control to it. It stands in for the hardware
	// context switch's restore-and-return.
	resume chan struct{}

	// entry is the body the process runs once first scheduled. Idle has no entry: it is the
	// boot goroutine itself.
	entry func(me Pid)

	started bool
}

func newProcess(pid Pid) *Process {
	return &Process{
		pid:    pid,
		state:  Unused,
		stack:  make([]byte, StackSize),
		resume: make(chan struct{}, 1),
	}
}

// Pid returns the process's slot index.
func (p *Process) Pid() Pid { return p.pid }

// State returns the process's current scheduling state.
func (p *Process) State() State { return p.state }

// PageTable returns the physical address of the process's root Sv32 table.
func (p *Process) PageTable() addr.PhysAddr { return p.pageTable }

// Satp returns the satp value a real hart would load to run this process: Sv32 mode plus the root
// page table's physical page number.
func (p *Process) Satp() csr.Satp { return p.satp }

// Sstatus returns the process's supervisor status register, reflecting whether this process runs
// with interrupts enabled.
func (p *Process) Sstatus() csr.Sstatus { return p.sstatus }

// Sie returns the process's supervisor interrupt-enable register.
func (p *Process) Sie() csr.Sie { return p.sie }

// setPageTable records a freshly allocated root page table and derives satp from it.
func (p *Process) setPageTable(root addr.PhysAddr) {
	p.pageTable = root
	p.satp = csr.MakeSatp(uint32(root) >> 12)
}

func (p *Process) String() string {
	return fmt.Sprintf("Process{%s state:%s pt:%s satp:%s}", p.pid, p.state, p.pageTable, p.satp)
}
