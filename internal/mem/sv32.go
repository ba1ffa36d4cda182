package mem

// sv32.go implements the two-level Sv32 page-table mapper: walk the root table by VPN1,
// installing a child table on demand, then write the VPN0 leaf entry in that child.

import (
	"fmt"

	"github.com/rv32lab/kernel/internal/addr"
)

// PTFlags are the low permission bits of an Sv32 page-table entry.
type PTFlags uint32

const (
	PTValid PTFlags = 1 << iota
	PTRead
	PTWrite
	PTExec
	PTUser
)

// ptePPNShift is where the physical page number starts inside a 32-bit PTE.
const ptePPNShift = 10

// Mapper builds Sv32 page tables over a RAM window, allocating child tables from an Allocator as
// they're needed.
type Mapper struct {
	ram   *RAM
	alloc *Allocator
}

// NewMapper creates a mapper that reads/writes page tables through ram and allocates new page
// tables through alloc.
func NewMapper(ram *RAM, alloc *Allocator) *Mapper {
	return &Mapper{ram: ram, alloc: alloc}
}

// MapPage installs a mapping from vaddr to paddr in the two-level table rooted at root, with the
// given permission flags. Both addresses must be page aligned; anything else is a fatal
// programming error in the caller; there is no fixup. If the root's VPN1 slot lacks the Valid bit,
// a new leaf table is allocated and installed before the VPN0 entry is written.
func (m *Mapper) MapPage(root addr.PhysAddr, vaddr addr.VirtAddr, paddr addr.PhysAddr, flags PTFlags) error {
	if !root.Aligned(PageSize) {
		return fmt.Errorf("%w: root not page aligned: %s", errRAM, root)
	}

	if !vaddr.Aligned(PageSize) {
		return fmt.Errorf("%w: vaddr not page aligned: %s", errRAM, vaddr)
	}

	if !paddr.Aligned(PageSize) {
		return fmt.Errorf("%w: paddr not page aligned: %s", errRAM, paddr)
	}

	vpn1, vpn0 := vaddr.VPN1(), vaddr.VPN0()

	l1Slot := root.Add(vpn1 * 4)

	pte1, err := m.ram.ReadWord(l1Slot)
	if err != nil {
		return fmt.Errorf("map_page: read root slot: %w", err)
	}

	var childPT addr.PhysAddr

	if PTFlags(pte1)&PTValid == 0 {
		childPT, err = m.alloc.AllocPages(1)
		if err != nil {
			return fmt.Errorf("map_page: alloc leaf table: %w", err)
		}

		entry := (uint32(childPT)>>12)<<ptePPNShift | uint32(PTValid)

		if err := m.ram.WriteWord(l1Slot, entry); err != nil {
			return fmt.Errorf("map_page: install leaf table: %w", err)
		}
	} else {
		childPT = addr.PhysAddr((pte1 >> ptePPNShift) << 12)
	}

	l0Slot := childPT.Add(vpn0 * 4)

	leaf := (uint32(paddr)>>12)<<ptePPNShift | uint32(flags) | uint32(PTValid)

	if err := m.ram.WriteWord(l0Slot, leaf); err != nil {
		return fmt.Errorf("map_page: write leaf entry: %w", err)
	}

	return nil
}

// IdentityMapRange maps every page in [start, end) to itself, the boot-time step that gives the
// kernel's own code and data the same addresses before and after paging is enabled.
func (m *Mapper) IdentityMapRange(root addr.PhysAddr, start, end addr.PhysAddr, flags PTFlags) error {
	if !start.Aligned(PageSize) || !end.Aligned(PageSize) {
		return fmt.Errorf("%w: identity map range not page aligned: [%s, %s)", errRAM, start, end)
	}

	for pa := start; pa < end; pa = pa.Add(PageSize) {
		va := addr.VirtAddr(uint32(pa))

		if err := m.MapPage(root, va, pa, flags); err != nil {
			return fmt.Errorf("identity_map_range: %s: %w", pa, err)
		}
	}

	return nil
}
