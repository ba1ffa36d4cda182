package mem_test

import (
	"testing"

	"github.com/rv32lab/kernel/internal/addr"
	"github.com/rv32lab/kernel/internal/mem"
)

func newMapper(t *testing.T, size uint32) (*mem.RAM, *mem.Mapper, addr.PhysAddr) {
	t.Helper()

	ram := mem.NewRAM(0x8000_0000, size)
	alloc := mem.NewAllocator(ram, ram.Base(), ram.End())

	root, err := alloc.AllocPages(1)
	if err != nil {
		t.Fatalf("alloc root table: %v", err)
	}

	return ram, mem.NewMapper(ram, alloc), root
}

func TestMapPageInstallsLeaf(t *testing.T) {
	ram, mapper, root := newMapper(t, 64*mem.PageSize)

	va := addr.VirtAddr(0x4000_1000)
	pa := addr.PhysAddr(0x8000_3000)

	if err := mapper.MapPage(root, va, pa, mem.PTRead|mem.PTWrite); err != nil {
		t.Fatalf("MapPage: %v", err)
	}

	l1Slot := root.Add(va.VPN1() * 4)

	pte1, err := ram.ReadWord(l1Slot)
	if err != nil {
		t.Fatalf("ReadWord root slot: %v", err)
	}

	if mem.PTFlags(pte1)&mem.PTValid == 0 {
		t.Fatal("root slot not marked valid after MapPage")
	}

	childPT := addr.PhysAddr((pte1 >> 10) << 12)

	l0Slot := childPT.Add(va.VPN0() * 4)

	leaf, err := ram.ReadWord(l0Slot)
	if err != nil {
		t.Fatalf("ReadWord leaf slot: %v", err)
	}

	if mem.PTFlags(leaf)&mem.PTValid == 0 {
		t.Fatal("leaf entry not valid")
	}

	if got := addr.PhysAddr((leaf >> 10) << 12); got != pa {
		t.Errorf("leaf PPN = %s, want %s", got, pa)
	}

	if mem.PTFlags(leaf)&(mem.PTRead|mem.PTWrite) != mem.PTRead|mem.PTWrite {
		t.Errorf("leaf flags = %#x, want R|W set", leaf)
	}
}

func TestMapPageReusesLeafTable(t *testing.T) {
	ram, mapper, root := newMapper(t, 64*mem.PageSize)

	va1 := addr.VirtAddr(0x4000_0000)
	va2 := addr.VirtAddr(0x4000_1000)

	if err := mapper.MapPage(root, va1, 0x8000_4000, mem.PTRead); err != nil {
		t.Fatalf("MapPage va1: %v", err)
	}

	first, err := ram.ReadWord(root.Add(va1.VPN1() * 4))
	if err != nil {
		t.Fatalf("ReadWord root slot: %v", err)
	}

	if err := mapper.MapPage(root, va2, 0x8000_5000, mem.PTRead); err != nil {
		t.Fatalf("MapPage va2: %v", err)
	}

	if va1.VPN1() != va2.VPN1() {
		t.Fatal("test fixture error: va1 and va2 must share a VPN1")
	}

	second, err := ram.ReadWord(root.Add(va2.VPN1() * 4))
	if err != nil {
		t.Fatalf("ReadWord root slot: %v", err)
	}

	if second != first {
		t.Errorf("root slot changed from %#x to %#x; second MapPage should reuse the leaf table", first, second)
	}
}

func TestMapPageRejectsMisaligned(t *testing.T) {
	_, mapper, root := newMapper(t, 16*mem.PageSize)

	if err := mapper.MapPage(root, addr.VirtAddr(0x4000_0001), 0x8000_2000, mem.PTRead); err == nil {
		t.Error("MapPage should reject misaligned vaddr")
	}

	if err := mapper.MapPage(root, addr.VirtAddr(0x4000_0000), 0x8000_2001, mem.PTRead); err == nil {
		t.Error("MapPage should reject misaligned paddr")
	}
}

func TestIdentityMapRange(t *testing.T) {
	_, mapper, root := newMapper(t, 64*mem.PageSize)

	start := addr.PhysAddr(0x8000_0000)
	end := start.Add(4 * mem.PageSize)

	if err := mapper.IdentityMapRange(root, start, end, mem.PTRead|mem.PTWrite|mem.PTExec); err != nil {
		t.Fatalf("IdentityMapRange: %v", err)
	}
}
