package proc

// manager.go is the process table, scheduler, and context switcher. The naked trap-entry-driven
// switch_context of a real hart has no meaning under the Go runtime, so it is replaced with a
// goroutine-and-channel baton: each non-idle process runs its entry point on its own goroutine,
// parked on a buffered "resume" channel until Manager hands it control, exactly mirroring the
// happens-before a real register save/restore would give for free.

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rv32lab/kernel/internal/addr"
	"github.com/rv32lab/kernel/internal/log"
	"github.com/rv32lab/kernel/internal/mem"
)

// Manager is the process-wide singleton: initialized once at boot and handed down to every
// component that needs to create processes or perform IPC.
type Manager struct {
	mut sync.Mutex

	procs   [ProcsMax]*Process
	rq      runQueue
	current Pid

	alloc  *mem.Allocator
	mapper *mem.Mapper

	preemptRequested atomic.Bool

	log *log.Logger
}

// NewManager creates a process table backed by the given allocator and mapper. Call Init before
// creating any process.
func NewManager(alloc *mem.Allocator, mapper *mem.Mapper) *Manager {
	m := &Manager{
		alloc:  alloc,
		mapper: mapper,
		log:    log.DefaultLogger(),
	}

	for i := range m.procs {
		m.procs[i] = newProcess(Pid(i))
	}

	return m
}

// Init prepares the idle slot: a root page table identity-mapping [kernelBase, kernelEnd) with
// R|W|X, marked Runnable, never enqueued and never blocked.
func (m *Manager) Init(kernelBase, kernelEnd addr.PhysAddr) error {
	m.mut.Lock()
	defer m.mut.Unlock()

	idle := m.procs[IdlePid]

	root, err := m.alloc.AllocPages(1)
	if err != nil {
		return fmt.Errorf("proc: init idle: %w", err)
	}

	if err := m.mapper.IdentityMapRange(root, kernelBase, kernelEnd, mem.PTRead|mem.PTWrite|mem.PTExec); err != nil {
		return fmt.Errorf("proc: init idle: %w", err)
	}

	idle.setPageTable(root)
	idle.state = Runnable
	idle.sscratch[1] = uint32(len(idle.stack))
	idle.sstatus.EnableInterrupts()
	idle.sie.EnableTimer()

	m.current = IdlePid

	m.log.Info("process manager initialized",
		"kernel_base", kernelBase, "kernel_end", kernelEnd, "satp", idle.satp)

	return nil
}

// CreateProcess finds the lowest-index Unused slot, gives it a fresh identity-mapped page table,
// marks it Runnable, and enqueues it. entry is the body the process goroutine will run once first
// scheduled. Returns false if the table is full.
func (m *Manager) CreateProcess(kernelBase, kernelEnd addr.PhysAddr, entry func(me Pid)) (Pid, bool) {
	m.mut.Lock()
	defer m.mut.Unlock()

	slot := Pid(-1)

	for i := 1; i < ProcsMax; i++ {
		if m.procs[i].state == Unused {
			slot = Pid(i)
			break
		}
	}

	if slot == -1 {
		m.log.Error("create_process: table full")
		return 0, false
	}

	p := m.procs[slot]

	root, err := m.alloc.AllocPages(1)
	if err != nil {
		m.log.Error("create_process: alloc page table", "error", err)
		return 0, false
	}

	if err := m.mapper.IdentityMapRange(root, kernelBase, kernelEnd, mem.PTRead|mem.PTWrite|mem.PTExec); err != nil {
		m.log.Error("create_process: identity map", "error", err)
		return 0, false
	}

	stackTop := uint32(len(p.stack))

	p.setPageTable(root)
	p.state = Runnable
	p.context = Context{SP: stackTop}
	p.sscratch = [2]Word{0, stackTop}
	p.sstatus.EnableInterrupts()
	p.sie.EnableTimer()
	p.ipc = ipcState{}
	p.entry = entry
	p.started = false

	m.rq.enqueue(slot)

	m.log.Debug("created process", "pid", slot, "page_table", root, "satp", p.satp)

	return slot, true
}

// CurrentPid returns the pid of the currently running process.
func (m *Manager) CurrentPid() Pid {
	m.mut.Lock()
	defer m.mut.Unlock()

	return m.current
}

// Process returns the table entry for pid, for tests and diagnostics.
func (m *Manager) Process(pid Pid) *Process {
	m.mut.Lock()
	defer m.mut.Unlock()

	return m.procs[pid]
}

// scheduler picks the next pid: dequeue the ready FIFO; else keep running the current process if
// it's still Runnable; else fall back to idle. Called with m.mut held.
func (m *Manager) scheduler() Pid {
	if pid, ok := m.rq.dequeue(); ok {
		return pid
	}

	if m.procs[m.current].state == Runnable {
		return m.current
	}

	return IdlePid
}

// Switch yields to the scheduler's chosen process. It may be called by cooperating code directly
// or by the timer tick handler.
func (m *Manager) Switch() {
	m.mut.Lock()
	m.switchLocked()
	m.mut.Unlock()
}

// switchLocked picks the next process and hands it control. It releases m.mut for the duration of
// the actual baton handoff — the resumed goroutine needs the lock back to do anything useful —
// and reacquires it before returning, so callers can treat it as an ordinary locked call.
func (m *Manager) switchLocked() {
	next := m.scheduler()

	if next == m.current {
		return
	}

	cur := m.procs[m.current]
	if cur.state == Runnable {
		m.rq.enqueue(m.current)
	}

	nextProc := m.procs[next]

	m.log.Debug("switch", "from", m.current, "to", next, "satp", nextProc.satp)

	m.current = next

	m.mut.Unlock()
	m.switchContext(cur, nextProc)
	m.mut.Lock()
}

// switchContext hands control to next and parks the caller until something switches back to cur.
// It is the goroutine-baton stand-in for the reference switch_context assembly routine: next must
// already be the scheduler's choice, dequeued from the ready queue, and cur must already be back on
// the ready queue if it is still Runnable.
func (m *Manager) switchContext(cur, next *Process) {
	if next.pid != IdlePid && !next.started {
		next.started = true

		go m.runProcess(next)
	}

	next.resume <- struct{}{}
	<-cur.resume
}

// runProcess is the goroutine body for every non-idle process: wait for the first handoff, then
// run the process's entry point forever. The entry point is responsible for calling CheckPoint,
// Send, or Recv at whatever points the spec's suspension model expects.
func (m *Manager) runProcess(p *Process) {
	<-p.resume

	p.entry(p.pid)
}

// blockCurrentLocked implements block_current(): Runnable -> Blocked, a no-op otherwise. Called
// with m.mut held.
func (m *Manager) blockCurrentLocked() {
	cur := m.procs[m.current]
	if cur.state == Runnable {
		cur.state = Blocked
	}
}

// BlockCurrent flips the current process to Blocked. It does not itself yield; callers must call
// Switch next.
func (m *Manager) BlockCurrent() {
	m.mut.Lock()
	defer m.mut.Unlock()

	m.blockCurrentLocked()
}

// unblockLocked implements unblock(): Blocked -> Runnable and enqueue. Idle is ignored; a process
// that isn't Blocked is left alone (a silent no-op).
func (m *Manager) unblockLocked(pid Pid) {
	if pid == IdlePid {
		return
	}

	p := m.procs[pid]
	if p.state != Blocked {
		return
	}

	p.state = Runnable

	m.rq.enqueue(pid)
}

// Unblock flips pid from Blocked to Runnable and enqueues it.
func (m *Manager) Unblock(pid Pid) {
	m.mut.Lock()
	defer m.mut.Unlock()

	m.unblockLocked(pid)
}

// RequestPreempt marks that the next CheckPoint should yield. It is called from the timer's expiry
// callback, which runs outside any process's goroutine and so must not call Switch directly.
func (m *Manager) RequestPreempt() {
	m.preemptRequested.Store(true)
}

// CheckPoint is the cooperative preemption point every process body calls once per loop iteration.
// A real hart takes the timer interrupt asynchronously, mid-instruction; Go gives no safe way to
// force an arbitrary goroutine to yield at an arbitrary point, so the timer instead sets a flag and
// each process polls it here, which is exactly what the reference demo applications already do by
// calling switch() every iteration of their own accord.
func (m *Manager) CheckPoint() {
	if m.preemptRequested.CompareAndSwap(true, false) {
		m.Switch()
	}
}

// Run drives the idle process: the boot goroutine repeatedly yields to the scheduler until ctx is
// cancelled, standing in for the wfi loop a real idle process would spin in.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.Switch()
	}
}
