package apps

import "github.com/rv32lab/kernel/internal/proc"

const (
	matrixWidth  = 80
	matrixHeight = 20
)

// MatrixEntry returns a process body that drives a falling-character "digital rain" effect on
// the given display.
func MatrixEntry(mgr *proc.Manager, display uint8) func(proc.Pid) {
	return func(proc.Pid) {
		sendClear(mgr, display)
		sendPrint(mgr, display, 0, "Matrix")

		var (
			heads   [matrixWidth]int8
			lengths [matrixWidth]uint8
			seed    = uint32(0x1234_5678)
		)

		for i := range heads {
			heads[i] = -1
		}

		for {
			for col := 0; col < matrixWidth; col++ {
				if heads[col] < 0 {
					if lfsr(&seed)&7 == 0 {
						heads[col] = 0
						lengths[col] = 3 + lfsr(&seed)%4
					}

					continue
				}

				head := heads[col]
				length := int8(lengths[col])

				ch := matrixGlyph(lfsr(&seed))

				if head < matrixHeight {
					sendDrawCell(mgr, display, uint8(col), uint8(head+1), 10, 0, ch)
				}

				for t := int8(1); t < length; t++ {
					y := head - t
					if y >= 0 && y < matrixHeight {
						sendDrawCell(mgr, display, uint8(col), uint8(y+1), 2, 0, ch)
					}
				}

				if tail := head - length; tail >= 0 && tail < matrixHeight {
					sendDrawCell(mgr, display, uint8(col), uint8(tail+1), 0, 0, ' ')
				}

				heads[col]++

				if heads[col]-length > matrixHeight {
					heads[col] = -1
				}
			}

			mgr.CheckPoint()
		}
	}
}

func matrixGlyph(r uint8) rune {
	idx := r % 36
	if idx < 10 {
		return rune('0' + idx)
	}

	return rune('A' + (idx - 10))
}
