package kernel

import (
	"time"

	"github.com/rv32lab/kernel/internal/addr"
)

// TimerQuantumUS is the scheduling quantum, in microseconds.
const TimerQuantumUS = 10_000

// TimerQuantum is TimerQuantumUS expressed as a time.Duration.
const TimerQuantum = TimerQuantumUS * time.Microsecond

// Default physical memory layout for the simulated machine: enough RAM to back the kernel's own
// identity map plus page tables for a full process table.
const (
	KernelBase = addr.PhysAddr(0x8000_0000)
	RAMSize    = 4 * 1024 * 1024 // 4 MiB simulated RAM window.
)
