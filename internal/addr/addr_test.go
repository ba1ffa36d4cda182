package addr_test

import (
	"testing"

	"github.com/rv32lab/kernel/internal/addr"
)

func TestAlignUp(t *testing.T) {
	cases := []struct {
		value, align, want uint32
	}{
		{0, 4096, 0},
		{1, 4096, 4096},
		{4096, 4096, 4096},
		{4097, 4096, 8192},
		{12, 4, 12},
		{13, 4, 16},
	}

	for _, c := range cases {
		if got := addr.AlignUp(c.value, c.align); got != c.want {
			t.Errorf("AlignUp(%d, %d) = %d, want %d", c.value, c.align, got, c.want)
		}
	}
}

func TestVirtAddrVPN(t *testing.T) {
	va := addr.VirtAddr(0x3000_1000)

	if got := va.VPN1(); got != (0x3000_1000 >> 22 & 0x3ff) {
		t.Errorf("VPN1() = %#x, want %#x", got, 0x3000_1000>>22&0x3ff)
	}

	if got := va.VPN0(); got != (0x3000_1000 >> 12 & 0x3ff) {
		t.Errorf("VPN0() = %#x, want %#x", got, 0x3000_1000>>12&0x3ff)
	}
}

func TestAligned(t *testing.T) {
	if !addr.PhysAddr(0x1000).Aligned(0x1000) {
		t.Error("0x1000 should be page aligned")
	}

	if addr.PhysAddr(0x1001).Aligned(0x1000) {
		t.Error("0x1001 should not be page aligned")
	}
}
