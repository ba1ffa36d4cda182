package timer_test

import (
	"testing"
	"time"

	"github.com/rv32lab/kernel/internal/timer"
)

func TestArmNextAndAdvance(t *testing.T) {
	tm := timer.New(10 * time.Millisecond)

	fired := 0
	tm.OnExpire(func() { fired++ })

	tm.ArmNext()

	cyclesPerQuantum := uint64(10*time.Millisecond.Microseconds()) * timer.TimebaseFreq / 1_000_000

	tm.Advance(cyclesPerQuantum - 1)

	if fired != 0 {
		t.Fatalf("timer fired early: %d", fired)
	}

	tm.Advance(2)

	if fired != 1 {
		t.Fatalf("timer did not fire at deadline: fired=%d", fired)
	}
}

func TestSetTimerExplicitDeadline(t *testing.T) {
	tm := timer.New(time.Millisecond)

	fired := false
	tm.OnExpire(func() { fired = true })

	tm.SetTimer(100)
	tm.Advance(99)

	if fired {
		t.Fatal("fired before deadline")
	}

	tm.Advance(1)

	if !fired {
		t.Fatal("did not fire at deadline")
	}
}

func TestNowTracksAdvance(t *testing.T) {
	tm := timer.New(time.Millisecond)

	tm.Advance(50)
	tm.Advance(25)

	if got := tm.Now(); got != 75 {
		t.Errorf("Now() = %d, want 75", got)
	}
}
