package apps

import "github.com/rv32lab/kernel/internal/proc"

// heartbeatPeriod is the length of one heartbeat cycle in simulated seconds; the glyph is lit for
// the first half of each cycle.
const heartbeatPeriod = 8

// ClockEntry returns a process body rendering a wall clock with an occasional glitch effect and a
// heartbeat glyph.
func ClockEntry(mgr *proc.Manager, display uint8) func(proc.Pid) {
	return func(proc.Pid) {
		sendClear(mgr, display)
		sendPrint(mgr, display, 0, "Clock + heartbeat")

		var (
			seconds uint32
			seed    = uint32(0xdead_beef)
		)

		for {
			total := seconds % 86400
			hour := uint8(total / 3600)
			minute := uint8((total % 3600) / 60)
			sec := uint8(total % 60)

			var buf [8]byte

			twoDigits(buf[0:2], hour)
			buf[2] = ':'
			twoDigits(buf[3:5], minute)
			buf[5] = ':'
			twoDigits(buf[6:8], sec)

			text := glitch(buf, seconds, &seed)

			sendPrint(mgr, display, 1, text)

			beatOn := seconds%heartbeatPeriod < 4
			heartChar := rune(' ')
			color := uint8(8)

			if beatOn {
				heartChar = '♥'
				color = 9
			}

			sendDrawCell(mgr, display, 0, 3, color, 0, heartChar)

			seconds++

			for i := 0; i < 20; i++ {
				mgr.CheckPoint()
			}
		}
	}
}

func twoDigits(out []byte, v uint8) {
	out[0] = '0' + v/10
	out[1] = '0' + v%10
}

// glitch occasionally scrambles the rendered time string with '?' glyphs, matching the
// once-every-thirty-seconds chance the original rolls against its own xorshift generator.
func glitch(buf [8]byte, seconds uint32, seed *uint32) string {
	if seconds%30 != 0 || lfsr(seed)&3 != 0 {
		return string(buf[:])
	}

	out := make([]byte, len(buf))

	for i := len(buf) - 1; i >= 0; i-- {
		if lfsr(seed)&7 == 0 {
			out[len(buf)-1-i] = '?'
		} else {
			out[len(buf)-1-i] = buf[i]
		}
	}

	return string(out)
}
