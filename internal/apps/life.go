package apps

import "github.com/rv32lab/kernel/internal/proc"

const (
	lifeWidth  = 80
	lifeHeight = 20
	lifeSize   = lifeWidth * lifeHeight
)

// LifeEntry returns a process body running Conway's Game of Life on the given display, ported
// The two generation buffers are closure-local state.
func LifeEntry(mgr *proc.Manager, display uint8) func(proc.Pid) {
	return func(proc.Pid) {
		sendClear(mgr, display)
		sendPrint(mgr, display, 0, "Game of Life")

		var cur, next [lifeSize]uint8

		seedGlider(cur[:])
		seedBlinker(cur[:], 10, 2)

		for {
			for y := 0; y < lifeHeight; y++ {
				for x := 0; x < lifeWidth; x++ {
					idx := y*lifeWidth + x
					if cur[idx] != 0 {
						sendDrawCell(mgr, display, uint8(x), uint8(y+1), 2, 0, '■')
					} else {
						sendDrawCell(mgr, display, uint8(x), uint8(y+1), 0, 0, ' ')
					}
				}
			}

			step(cur[:], next[:])
			cur, next = next, cur

			mgr.CheckPoint()
		}
	}
}

func seedGlider(cur []uint8) {
	cur[lifeWidth+2] = 1
	cur[2*lifeWidth+3] = 1
	cur[3*lifeWidth+1] = 1
	cur[3*lifeWidth+2] = 1
	cur[3*lifeWidth+3] = 1
}

func seedBlinker(cur []uint8, bx, by int) {
	cur[by*lifeWidth+bx+1] = 1
	cur[(by+1)*lifeWidth+bx+1] = 1
	cur[(by+2)*lifeWidth+bx+1] = 1
}

func step(cur, next []uint8) {
	for y := 0; y < lifeHeight; y++ {
		for x := 0; x < lifeWidth; x++ {
			neighbors := 0

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}

					nx := (x + dx + lifeWidth) % lifeWidth
					ny := (y + dy + lifeHeight) % lifeHeight

					if cur[ny*lifeWidth+nx] != 0 {
						neighbors++
					}
				}
			}

			idx := y*lifeWidth + x

			switch {
			case cur[idx] != 0 && (neighbors == 2 || neighbors == 3):
				next[idx] = 1
			case cur[idx] == 0 && neighbors == 3:
				next[idx] = 1
			default:
				next[idx] = 0
			}
		}
	}
}
