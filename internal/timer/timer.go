// Package timer implements the periodic tick that preempts processes: a free-running cycle
// counter, a quantum expressed in microseconds, and a single outstanding deadline armed through
// sbi.Clock.
package timer

import (
	"sync"
	"time"

	"github.com/rv32lab/kernel/internal/log"
)

// TimebaseFreq is the simulated timebase, matching QEMU's virt machine (10 MHz), so that a
// quantum expressed in microseconds converts to a whole number of cycles.
const TimebaseFreq = 10_000_000

// Timer is a free-running cycle counter with a single programmable deadline. Once the deadline is
// reached, every call to Advance invokes the callback registered with OnExpire until the deadline
// is moved, so the callback is responsible for rearming it for the next quantum (the kernel's
// callback calls ArmNext).
type Timer struct {
	mut sync.Mutex

	quantum  time.Duration
	deadline uint64
	now      uint64

	onExpire func()

	log *log.Logger
}

// New creates a timer that fires every quantum of simulated time.
func New(quantum time.Duration) *Timer {
	return &Timer{
		quantum: quantum,
		log:     log.DefaultLogger(),
	}
}

// OnExpire registers the callback Advance invokes when the deadline is reached.
func (t *Timer) OnExpire(fn func()) {
	t.mut.Lock()
	defer t.mut.Unlock()

	t.onExpire = fn
}

// cyclesPerQuantum converts the configured quantum into a whole number of timebase cycles.
func (t *Timer) cyclesPerQuantum() uint64 {
	return uint64(t.quantum.Microseconds()) * TimebaseFreq / 1_000_000
}

// SetTimer implements sbi.Clock: arm the deadline to an absolute cycle count. Called both at boot
// and by the expiry handler to rearm the next quantum.
func (t *Timer) SetTimer(deadline uint64) {
	t.mut.Lock()
	defer t.mut.Unlock()

	t.deadline = deadline

	t.log.Debug("timer: armed", "deadline", deadline)
}

// ArmNext arms the timer one quantum past the current simulated time.
func (t *Timer) ArmNext() {
	t.mut.Lock()
	next := t.now + t.cyclesPerQuantum()
	t.mut.Unlock()

	t.SetTimer(next)
}

// Advance moves simulated time forward by n cycles and fires the expiry callback, at most once,
// if the deadline was crossed.
func (t *Timer) Advance(n uint64) {
	t.mut.Lock()
	t.now += n
	expired := t.now >= t.deadline
	fn := t.onExpire
	t.mut.Unlock()

	if expired && fn != nil {
		fn()
	}
}

// Now returns the current simulated cycle count.
func (t *Timer) Now() uint64 {
	t.mut.Lock()
	defer t.mut.Unlock()

	return t.now
}
