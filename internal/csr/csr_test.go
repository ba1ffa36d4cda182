package csr_test

import (
	"testing"

	"github.com/rv32lab/kernel/internal/csr"
)

func TestSie(t *testing.T) {
	var sie csr.Sie

	if sie.TimerEnabled() {
		t.Fatal("timer should start disabled")
	}

	sie.EnableTimer()

	if !sie.TimerEnabled() {
		t.Error("EnableTimer should set STIE")
	}

	sie.DisableTimer()

	if sie.TimerEnabled() {
		t.Error("DisableTimer should clear STIE")
	}
}

func TestSstatus(t *testing.T) {
	var s csr.Sstatus

	s.EnableInterrupts()

	if !s.InterruptsEnabled() {
		t.Error("EnableInterrupts should set SIE")
	}

	s.DisableInterrupts()

	if s.InterruptsEnabled() {
		t.Error("DisableInterrupts should clear SIE")
	}
}

func TestSatp(t *testing.T) {
	s := csr.MakeSatp(0x1234)

	if !s.Mode() {
		t.Error("MakeSatp should set Sv32 mode bit")
	}

	if s.PPN() != 0x1234 {
		t.Errorf("PPN() = %#x, want %#x", s.PPN(), 0x1234)
	}
}
