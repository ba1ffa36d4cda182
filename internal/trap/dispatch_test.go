package trap_test

import (
	"errors"
	"testing"

	"github.com/rv32lab/kernel/internal/trap"
)

func TestDispatchTimerTick(t *testing.T) {
	want := &trap.Frame{RA: 0x42}
	called := false

	got := trap.Dispatch(trap.CauseSupervisorTimer, &trap.Frame{}, trap.Handlers{
		OnTimerTick: func(f *trap.Frame) (*trap.Frame, error) {
			called = true

			return want, nil
		},
	})

	if !called {
		t.Fatal("OnTimerTick was not invoked")
	}

	if got != want {
		t.Fatalf("Dispatch returned %v, want %v", got, want)
	}
}

func TestDispatchTimerTickError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Dispatch should panic when OnTimerTick fails")
		}
	}()

	trap.Dispatch(trap.CauseSupervisorTimer, &trap.Frame{}, trap.Handlers{
		OnTimerTick: func(f *trap.Frame) (*trap.Frame, error) {
			return nil, errors.New("boom")
		},
	})
}

func TestDispatchUnexpectedCausePanics(t *testing.T) {
	seen := false

	defer func() {
		if recover() == nil {
			t.Fatal("Dispatch should panic on an unrecognized cause")
		}

		if !seen {
			t.Fatal("OnUnexpected was not invoked before panic")
		}
	}()

	trap.Dispatch(trap.Cause(0x7), &trap.Frame{}, trap.Handlers{
		OnUnexpected: func(cause trap.Cause, f *trap.Frame) {
			seen = true
		},
	})
}
