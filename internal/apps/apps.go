// Package apps implements four demo processes driving the display multiplexer: each demo's
// per-iteration state (the Matrix app's column heads, Life's two generation buffers, and so on) is
// captured by a closure rather than a package-level global, since nothing here needs to survive a
// process restart.
//
// Every loop iteration ends with a call to Manager.CheckPoint rather than an unconditional
// Manager.Switch: cooperative round robin still happens (IPC sends to the display server block
// whenever it hasn't drained its queue), and CheckPoint additionally yields whenever the timer has
// requested a preemption, which is the closest a goroutine-based simulator can come to a real
// hart's "every app yields every tick" discipline without unsafely preempting an arbitrary
// goroutine mid-instruction.
package apps

import (
	"github.com/rv32lab/kernel/internal/proc"
)

// DisplayServerPid is the fixed destination every demo app's display traffic targets. The display
// server is always created first so it lands on this slot.
const DisplayServerPid proc.Pid = 1

func sendClear(mgr *proc.Manager, display uint8) {
	_ = mgr.Send(DisplayServerPid, proc.DisplayClear{Display: display})
}

func sendPrint(mgr *proc.Manager, display, line uint8, text string) {
	var buf [32]byte

	n := copy(buf[:], text)

	_ = mgr.Send(DisplayServerPid, proc.DisplayPrint{Display: display, Line: line, Text: buf, Len: uint8(n)})
}

func sendDrawCell(mgr *proc.Manager, display, x, y, fg, bg uint8, ch rune) {
	_ = mgr.Send(DisplayServerPid, proc.DisplayDrawCell{Display: display, X: x, Y: y, FG: fg, BG: bg, Ch: ch})
}

// lfsr advances a 32-bit xorshift generator and returns its low byte.
func lfsr(state *uint32) uint8 {
	x := *state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	*state = x

	return uint8(x & 0xff)
}
