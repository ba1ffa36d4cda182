// Package display implements the text-mode display multiplexer server: a dedicated process,
// always pid 1, that receives proc.DisplayPrint/DisplayClear/DisplayDrawCell messages from the
// demo applications and multiplexes them into four independent 80x20 character-cell screens.
package display

import (
	"fmt"

	"github.com/rv32lab/kernel/internal/log"
	"github.com/rv32lab/kernel/internal/proc"
)

// NumDisplays is the count of independent screens the server multiplexes, one per demo app.
const NumDisplays = 4

// Width and Height are a screen's drawable cell grid, below the title row.
const (
	Width  = 80
	Height = 20
)

// Cell is one character position on a screen: a rune plus a foreground/background color pair.
type Cell struct {
	Ch     rune
	FG, BG uint8
}

// HeaderLines is the number of DisplayPrint text lines kept above the cell grid (title, status).
const HeaderLines = 2

// Screen is one display's header text lines plus its Width x Height cell grid.
type Screen struct {
	Header [HeaderLines]string
	Cells  [Height][Width]Cell
}

func (s *Screen) clear() {
	s.Header = [HeaderLines]string{}

	for y := range s.Cells {
		for x := range s.Cells[y] {
			s.Cells[y][x] = Cell{Ch: ' '}
		}
	}
}

func (s *Screen) set(x, y int, c Cell) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}

	s.Cells[y][x] = c
}

// Renderer is how the server's screens reach the outside world. Implementations must not block
// for long: Render is called from the display server's own process loop.
type Renderer interface {
	Render(screens *[NumDisplays]Screen)
}

// NullRenderer discards every frame. Useful for tests and headless runs.
type NullRenderer struct{}

func (NullRenderer) Render(*[NumDisplays]Screen) {}

// Server owns the four screens and drives them from IPC traffic.
type Server struct {
	mgr      *proc.Manager
	renderer Renderer
	screens  [NumDisplays]Screen

	log *log.Logger
}

// NewServer creates a display server that renders through r.
func NewServer(mgr *proc.Manager, r Renderer) *Server {
	if r == nil {
		r = NullRenderer{}
	}

	return &Server{mgr: mgr, renderer: r, log: log.DefaultLogger()}
}

// Run is the display server's process body: it must be registered as the kernel's first created
// process so it lands on pid 1, the address every demo app's DisplayPrint/Clear/DrawCell message
// targets.
func (s *Server) Run(me proc.Pid) {
	if me != 1 {
		panic(fmt.Sprintf("display: server must run as pid 1, got %s", me))
	}

	s.log.Info("display server started", "pid", me)

	for {
		msg, err := s.mgr.Recv(proc.AnySender())
		if err != nil {
			s.log.Error("display: recv failed", "error", err)
			continue
		}

		s.dispatch(msg)
		s.renderer.Render(&s.screens)
		s.mgr.CheckPoint()
	}
}

func (s *Server) dispatch(msg proc.Message) {
	switch m := msg.(type) {
	case proc.DisplayClear:
		if int(m.Display) < NumDisplays {
			s.screens[m.Display].clear()
		}
	case proc.DisplayPrint:
		if int(m.Display) >= NumDisplays || int(m.Line) >= HeaderLines {
			return
		}

		s.screens[m.Display].Header[m.Line] = string(m.Text[:m.Len])
	case proc.DisplayDrawCell:
		if int(m.Display) < NumDisplays {
			s.screens[m.Display].set(int(m.X), int(m.Y)-1, Cell{Ch: m.Ch, FG: m.FG, BG: m.BG})
		}
	default:
		s.log.Debug("display: ignoring unrecognized message", "message", msg)
	}
}

// Screen returns a snapshot of display d's current frame, for renderers that poll instead of
// implementing Renderer.
func (s *Server) Screen(d int) Screen {
	if d < 0 || d >= NumDisplays {
		return Screen{}
	}

	return s.screens[d]
}
