package display_test

import (
	"testing"

	"github.com/rv32lab/kernel/internal/addr"
	"github.com/rv32lab/kernel/internal/display"
	"github.com/rv32lab/kernel/internal/mem"
	"github.com/rv32lab/kernel/internal/proc"
)

type captureRenderer struct {
	calls int
	last  [display.NumDisplays]display.Screen
}

func (c *captureRenderer) Render(screens *[display.NumDisplays]display.Screen) {
	c.calls++
	c.last = *screens
}

func newTestManager(t *testing.T) *proc.Manager {
	t.Helper()

	base := addr.PhysAddr(0x8000_0000)
	ram := mem.NewRAM(base, 256*mem.PageSize)
	alloc := mem.NewAllocator(ram, base, ram.End())
	mapper := mem.NewMapper(ram, alloc)

	m := proc.NewManager(alloc, mapper)
	if err := m.Init(base, base.Add(64*mem.PageSize)); err != nil {
		t.Fatalf("Init: %v", err)
	}

	return m
}

func TestServerDispatchesMessages(t *testing.T) {
	m := newTestManager(t)
	capture := &captureRenderer{}
	srv := display.NewServer(m, capture)

	pid, ok := m.CreateProcess(0x8000_0000, 0x8000_0000+64*mem.PageSize, srv.Run)
	if !ok || pid != 1 {
		t.Fatalf("display server pid = %d, ok=%v, want 1", pid, ok)
	}

	sender := func(me proc.Pid) {
		_ = m.Send(1, proc.DisplayClear{Display: 0})
		_ = m.Send(1, proc.DisplayPrint{Display: 0, Line: 0, Text: textOf("Matrix"), Len: 6})
		_ = m.Send(1, proc.DisplayDrawCell{Display: 0, X: 5, Y: 1, FG: 2, BG: 0, Ch: 'A'})

		m.BlockCurrent()
		m.Switch()
	}

	if _, ok := m.CreateProcess(0x8000_0000, 0x8000_0000+64*mem.PageSize, sender); !ok {
		t.Fatal("CreateProcess(sender) failed")
	}

	m.Switch() // boot-equivalent first switch, from the (virtual) idle slot.

	screen := srv.Screen(0)

	if screen.Header[0] != "Matrix" {
		t.Errorf("Header[0] = %q, want %q", screen.Header[0], "Matrix")
	}

	if got := screen.Cells[0][5]; got.Ch != 'A' || got.FG != 2 {
		t.Errorf("Cells[0][5] = %+v, want Ch:'A' FG:2", got)
	}

	if capture.calls == 0 {
		t.Error("renderer was never invoked")
	}
}

func textOf(s string) [32]byte {
	var b [32]byte
	copy(b[:], s)

	return b
}
