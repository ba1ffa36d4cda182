package trap

// dispatch.go routes a trap cause to the handler registered for it. There is exactly one cause the
// kernel expects ever to see in normal operation — the supervisor timer interrupt — so the
// "table" collapses to a single comparison, with any other cause treated as fatal.

import "fmt"

// Cause is the value RISC-V's scause register would hold: the interrupt bit in the high bit, the
// exception/interrupt code in the rest.
type Cause uint32

// CauseSupervisorTimer is scause when a supervisor timer interrupt fires: interrupt bit set,
// code 5.
const CauseSupervisorTimer Cause = (1 << 31) | 5

func (c Cause) String() string {
	if c == CauseSupervisorTimer {
		return "supervisor-timer"
	}

	return fmt.Sprintf("cause(%#x)", uint32(c))
}

// Handlers are the callbacks Dispatch invokes for each cause it recognizes.
type Handlers struct {
	// OnTimerTick runs when cause is CauseSupervisorTimer. It returns the frame to resume into,
	// ordinarily the same frame the scheduler picks next.
	OnTimerTick func(f *Frame) (*Frame, error)

	// OnUnexpected runs for any other cause, which is always fatal; the default handler, if this
	// is left nil, panics.
	OnUnexpected func(cause Cause, f *Frame)
}

// Dispatch is the Go-level stand-in for handle_trap: given the cause that brought a process into
// the kernel and the frame the trap vector saved, it routes to the matching handler and returns
// the frame the (simulated) sret should resume.
func Dispatch(cause Cause, f *Frame, h Handlers) *Frame {
	switch cause {
	case CauseSupervisorTimer:
		next, err := h.OnTimerTick(f)
		if err != nil {
			panic(fmt.Sprintf("trap: timer tick handler failed: %v", err))
		}

		return next
	default:
		if h.OnUnexpected != nil {
			h.OnUnexpected(cause, f)
		}

		panic(fmt.Sprintf("trap: unexpected cause: %s", cause))
	}
}
