// Package kernel wires memory, scheduling, IPC, the timer, and the demo processes into a single
// bootable machine, the way internal/vm.LC3 wires a CPU, memory, and devices together in the
// reference kernel this module grew out of.
package kernel

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rv32lab/kernel/internal/addr"
	"github.com/rv32lab/kernel/internal/apps"
	"github.com/rv32lab/kernel/internal/display"
	"github.com/rv32lab/kernel/internal/log"
	"github.com/rv32lab/kernel/internal/mem"
	"github.com/rv32lab/kernel/internal/proc"
	"github.com/rv32lab/kernel/internal/sbi"
	"github.com/rv32lab/kernel/internal/timer"
)

// OptionFn configures a Kernel during New. Like internal/vm.OptionFn, each option runs twice: once
// before the core subsystems exist (late == false, for options that only need to record a choice)
// and once after (late == true, for options that need alloc, mapper, or procs already built).
type OptionFn func(k *Kernel, late bool)

// Kernel bundles the simulated machine: RAM, the bump allocator and Sv32 mapper over it, the
// process table and scheduler, the SBI console/timer shim, and the display multiplexer and demo
// processes that run on top of it.
type Kernel struct {
	ram    *mem.RAM
	alloc  *mem.Allocator
	mapper *mem.Mapper
	procs  *proc.Manager
	timer  *timer.Timer
	sbi    *sbi.SBI

	display  *display.Server
	renderer display.Renderer
	console  io.Writer

	log *log.Logger
}

// WithConsole directs console output (the SBI console putchar shim) at w instead of os.Stdout.
func WithConsole(w io.Writer) OptionFn {
	return func(k *Kernel, late bool) {
		if !late {
			k.console = w
		}
	}
}

// WithRenderer installs a display.Renderer other than the default no-op one.
func WithRenderer(r display.Renderer) OptionFn {
	return func(k *Kernel, late bool) {
		if !late {
			k.renderer = r
		}
	}
}

// WithLogger overrides the kernel's logger.
func WithLogger(l *log.Logger) OptionFn {
	return func(k *Kernel, late bool) {
		if !late {
			k.log = l
		}
	}
}

// New builds a Kernel with RAM, allocator, mapper, process manager, timer, and SBI shim wired
// together, but does not yet create any process. Call Boot to populate the process table and
// start running.
func New(opts ...OptionFn) *Kernel {
	k := &Kernel{
		log:      log.DefaultLogger(),
		renderer: display.NullRenderer{},
		console:  os.Stdout,
	}

	for _, fn := range opts {
		fn(k, false)
	}

	ram := mem.NewRAM(KernelBase, RAMSize)
	alloc := mem.NewAllocator(ram, KernelBase, ram.End())
	mapper := mem.NewMapper(ram, alloc)

	k.ram = ram
	k.alloc = alloc
	k.mapper = mapper
	k.procs = proc.NewManager(alloc, mapper)
	k.timer = timer.New(TimerQuantum)
	k.sbi = sbi.New(&writerConsole{w: k.console}, k.timer)

	k.timer.OnExpire(func() {
		k.procs.RequestPreempt()
		k.timer.ArmNext()
	})

	for _, fn := range opts {
		fn(k, true)
	}

	return k
}

// kernelEnd returns the one-past-the-end address of the RAM window managed by this kernel.
func (k *Kernel) kernelEnd() addr.PhysAddr {
	return KernelBase.Add(RAMSize)
}

// Boot initializes the process table, creates the display server and the four demo processes, and
// arms the timer. It does not start running them; call Run for that.
func (k *Kernel) Boot() error {
	if err := k.procs.Init(KernelBase, k.kernelEnd()); err != nil {
		return fmt.Errorf("kernel: boot: init process table: %w", err)
	}

	srv := display.NewServer(k.procs, k.renderer)
	k.display = srv

	pid, ok := k.procs.CreateProcess(KernelBase, k.kernelEnd(), srv.Run)
	if !ok || pid != apps.DisplayServerPid {
		return fmt.Errorf("kernel: boot: display server landed on pid %d, want %d", pid, apps.DisplayServerPid)
	}

	demos := []func(*proc.Manager, uint8) func(proc.Pid){
		apps.MatrixEntry,
		apps.LifeEntry,
		apps.PlasmaEntry,
		apps.ClockEntry,
	}

	for i, entry := range demos {
		if _, ok := k.procs.CreateProcess(KernelBase, k.kernelEnd(), entry(k.procs, uint8(i))); !ok {
			return fmt.Errorf("kernel: boot: create demo process %d", i)
		}
	}

	k.timer.ArmNext()

	k.log.Info("kernel booted", "demo_procs", len(demos))

	return nil
}

// Run starts the timer driver and the scheduler's idle loop. It returns only after ctx is
// cancelled, and then only once the scheduler next hands control back to idle; processes never
// exit, so there is no other way for it to return.
func (k *Kernel) Run(ctx context.Context) {
	go k.timer.Run(ctx)

	k.procs.Run(ctx)
}

// Display returns the display server created by Boot, or nil if Boot has not run yet.
func (k *Kernel) Display() *display.Server {
	return k.display
}

// Manager returns the process manager backing this kernel, for tests and tools that need to poke
// at scheduling or IPC directly.
func (k *Kernel) Manager() *proc.Manager {
	return k.procs
}
