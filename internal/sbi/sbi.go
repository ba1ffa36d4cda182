// Package sbi models the slice of the Supervisor Binary Interface this kernel calls into: legacy
// console output and the timer extension's set-timer call. There is no firmware underneath the
// simulator, so Call is backed by a Console and a Clock rather than an ecall trap, but it keeps the
// same extension/function ID shape a real SBI implementation exposes.
package sbi

import (
	"fmt"
	"sync"

	"github.com/rv32lab/kernel/internal/log"
)

// Extension and function IDs for the calls this kernel uses.
const (
	EIDConsolePutChar = 0x01 // legacy extension
	FIDConsolePutChar = 0x00

	EIDTime       = 0x54494d45 // "TIME"
	FIDSetTimer   = 0x00
	TimebaseFreqs = 10_000_000 // 10 MHz, matches QEMU's virt machine
)

// Console is the minimal surface Call needs to perform legacy console output.
type Console interface {
	PutChar(c byte)
}

// Clock is the minimal surface Call needs to arm the next timer interrupt.
type Clock interface {
	SetTimer(deadline uint64)
}

// SBI is the callable surface a trap handler or application uses to reach the platform, standing
// in for the ecall a real hart would execute.
type SBI struct {
	mut sync.Mutex

	console Console
	clock   Clock

	log *log.Logger
}

// New creates an SBI backed by the given console and clock.
func New(console Console, clock Clock) *SBI {
	return &SBI{
		console: console,
		clock:   clock,
		log:     log.DefaultLogger(),
	}
}

// PutChar implements the legacy console putchar call: write one byte and return.
func (s *SBI) PutChar(c byte) error {
	s.mut.Lock()
	defer s.mut.Unlock()

	if s.console == nil {
		return fmt.Errorf("sbi: no console registered")
	}

	s.console.PutChar(c)

	return nil
}

// SetTimer implements the timer extension's set-timer call: arm the clock to fire at the given
// absolute cycle count.
func (s *SBI) SetTimer(deadline uint64) error {
	s.mut.Lock()
	defer s.mut.Unlock()

	if s.clock == nil {
		return fmt.Errorf("sbi: no clock registered")
	}

	s.log.Debug("sbi: set_timer", "deadline", deadline)

	s.clock.SetTimer(deadline)

	return nil
}
