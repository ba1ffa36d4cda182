// Package mem implements the bump page allocator and the Sv32 page-table mapper over a simulated
// physical RAM window: a single place that mediates every access to the machine's backing store.
package mem

import (
	"errors"
	"fmt"

	"github.com/rv32lab/kernel/internal/addr"
	"github.com/rv32lab/kernel/internal/log"
)

// PageSize is the Sv32 page granularity.
const PageSize = 4096

// RAM is a simulated window of physical memory, [base, base+len(cells)). It stands in for the
// bytes a real kernel would touch through raw pointers; reads and writes here are always in
// bounds-checked words, never out-of-process memory.
type RAM struct {
	base addr.PhysAddr
	end  addr.PhysAddr
	cell []byte

	log *log.Logger
}

var (
	errRAM = errors.New("ram")

	// ErrOutOfRange is returned when an address falls outside the simulated RAM window.
	ErrOutOfRange = fmt.Errorf("%w: out of range", errRAM)

	// ErrMisaligned is returned when a word access is not 4-byte aligned.
	ErrMisaligned = fmt.Errorf("%w: misaligned access", errRAM)
)

// NewRAM creates a zeroed RAM window covering [base, base+size).
func NewRAM(base addr.PhysAddr, size uint32) *RAM {
	return &RAM{
		base: base,
		end:  base.Add(size),
		cell: make([]byte, size),
		log:  log.DefaultLogger(),
	}
}

// Base returns the first address in the window.
func (r *RAM) Base() addr.PhysAddr { return r.base }

// End returns the address one past the last byte in the window.
func (r *RAM) End() addr.PhysAddr { return r.end }

func (r *RAM) offset(pa addr.PhysAddr, width uint32) (int, error) {
	if pa < r.base || pa.Add(width) > r.end {
		return 0, fmt.Errorf("%w: addr: %s width: %d window: [%s, %s)",
			ErrOutOfRange, pa, width, r.base, r.end)
	}

	return int(pa - r.base), nil
}

// ReadWord reads a little-endian 32-bit word at pa.
func (r *RAM) ReadWord(pa addr.PhysAddr) (uint32, error) {
	if !pa.Aligned(4) {
		return 0, fmt.Errorf("%w: addr: %s", ErrMisaligned, pa)
	}

	off, err := r.offset(pa, 4)
	if err != nil {
		return 0, err
	}

	w := uint32(r.cell[off]) | uint32(r.cell[off+1])<<8 | uint32(r.cell[off+2])<<16 | uint32(r.cell[off+3])<<24

	return w, nil
}

// WriteWord writes a little-endian 32-bit word at pa.
func (r *RAM) WriteWord(pa addr.PhysAddr, val uint32) error {
	if !pa.Aligned(4) {
		return fmt.Errorf("%w: addr: %s", ErrMisaligned, pa)
	}

	off, err := r.offset(pa, 4)
	if err != nil {
		return err
	}

	r.cell[off] = byte(val)
	r.cell[off+1] = byte(val >> 8)
	r.cell[off+2] = byte(val >> 16)
	r.cell[off+3] = byte(val >> 24)

	return nil
}

// Zero fills n bytes starting at pa with zero.
func (r *RAM) Zero(pa addr.PhysAddr, n uint32) error {
	off, err := r.offset(pa, n)
	if err != nil {
		return err
	}

	clear(r.cell[off : off+int(n)])

	return nil
}

// Bytes returns a read-only view of n bytes at pa, for tests and debug dumps.
func (r *RAM) Bytes(pa addr.PhysAddr, n uint32) ([]byte, error) {
	off, err := r.offset(pa, n)
	if err != nil {
		return nil, err
	}

	view := make([]byte, n)
	copy(view, r.cell[off:off+int(n)])

	return view, nil
}
