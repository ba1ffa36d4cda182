package mem

// bump.go implements a monotonic, page-granular allocator over a RAM window: a bump pointer that
// only ever advances, aligning each request up and zero-filling it. There is no free; pages are
// never returned.

import (
	"fmt"

	"github.com/rv32lab/kernel/internal/addr"
	"github.com/rv32lab/kernel/internal/log"
)

// ErrOutOfMemory is returned when the bump pointer would advance past the end of RAM. Callers
// must treat this as fatal: the kernel has no recovery path for allocator exhaustion.
var ErrOutOfMemory = fmt.Errorf("%w: out of memory", errRAM)

// Allocator is a monotonic, page-granular allocator over a RAM window. It is not safe for
// concurrent use and must only be called during boot or process creation, never from a trap or
// interrupt handler.
type Allocator struct {
	ram  *RAM
	next addr.PhysAddr
	end  addr.PhysAddr

	log *log.Logger
}

// NewAllocator creates an allocator over the free region of ram: [start, end).
func NewAllocator(ram *RAM, start, end addr.PhysAddr) *Allocator {
	return &Allocator{
		ram:  ram,
		next: start,
		end:  end,
		log:  log.DefaultLogger(),
	}
}

// Next returns the current bump pointer, for tests asserting the allocator only ever advances.
func (a *Allocator) Next() addr.PhysAddr { return a.next }

// AllocPages allocates n contiguous, page-aligned, zero-filled pages and returns their base
// address. It is the only mutating operation on the allocator; there is no free.
func (a *Allocator) AllocPages(n int) (addr.PhysAddr, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: invalid page count: %d", errRAM, n)
	}

	size := uint32(n) * PageSize

	start := a.next.AlignUp(PageSize)
	if start.Add(size) > a.end {
		a.log.Error("allocator exhausted", "requested", size, "next", a.next, "end", a.end)

		return 0, ErrOutOfMemory
	}

	if err := a.ram.Zero(start, size); err != nil {
		return 0, fmt.Errorf("alloc_pages: %w", err)
	}

	a.next = start.Add(size)

	a.log.Debug("allocated pages", "n", n, "addr", start, "next", a.next)

	return start, nil
}
