package apps

import "github.com/rv32lab/kernel/internal/proc"

// PlasmaEntry returns a process body painting a scrolling plasma color field, ported from
// a scrolling additive-color field.
func PlasmaEntry(mgr *proc.Manager, display uint8) func(proc.Pid) {
	return func(proc.Pid) {
		sendClear(mgr, display)
		sendPrint(mgr, display, 0, "Plasma effect")

		var t uint8

		for {
			for y := uint8(0); y < 20; y++ {
				for x := uint8(0); x < 80; x++ {
					v := (x*3 + y*5 + t*2) & 7
					bg := 1 + v

					sendDrawCell(mgr, display, x, y+1, 0, bg, ' ')
				}
			}

			t++

			mgr.CheckPoint()
		}
	}
}
