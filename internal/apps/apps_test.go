package apps_test

import (
	"context"
	"testing"
	"time"

	"github.com/rv32lab/kernel/internal/addr"
	"github.com/rv32lab/kernel/internal/apps"
	"github.com/rv32lab/kernel/internal/display"
	"github.com/rv32lab/kernel/internal/mem"
	"github.com/rv32lab/kernel/internal/proc"
	"github.com/rv32lab/kernel/internal/timer"
)

func TestDemoAppsRunWithoutPanicking(t *testing.T) {
	base := addr.PhysAddr(0x8000_0000)
	ram := mem.NewRAM(base, 512*mem.PageSize)
	alloc := mem.NewAllocator(ram, base, ram.End())
	mapper := mem.NewMapper(ram, alloc)

	mgr := proc.NewManager(alloc, mapper)
	if err := mgr.Init(base, base.Add(64*mem.PageSize)); err != nil {
		t.Fatalf("Init: %v", err)
	}

	kernelEnd := base.Add(64 * mem.PageSize)

	srv := display.NewServer(mgr, display.NullRenderer{})

	if pid, ok := mgr.CreateProcess(base, kernelEnd, srv.Run); !ok || pid != apps.DisplayServerPid {
		t.Fatalf("display server pid = %d, ok=%v, want %d", pid, ok, apps.DisplayServerPid)
	}

	bodies := []func(proc.Pid){
		apps.MatrixEntry(mgr, 0),
		apps.LifeEntry(mgr, 1),
		apps.PlasmaEntry(mgr, 2),
		apps.ClockEntry(mgr, 3),
	}

	for _, body := range bodies {
		if _, ok := mgr.CreateProcess(base, kernelEnd, body); !ok {
			t.Fatal("CreateProcess(demo app) failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// Without a live timer, CheckPoint never has a reason to yield back to idle: the demo apps
	// and the display server would hand control back and forth between themselves forever. Drive
	// the same preemption path kernel.Kernel wires up in production.
	tmr := timer.New(time.Millisecond)
	tmr.OnExpire(func() {
		mgr.RequestPreempt()
		tmr.ArmNext()
	})
	tmr.ArmNext()

	go tmr.Run(ctx)

	// There is no Exited state: once the demo apps and the display server start
	// trading messages, idle is only rescheduled in the gap between two of CheckPoint's forced
	// yields, so nothing here waits for mgr.Run to return. Let the fleet run for a while and
	// inspect the rendered frames instead; the leaked goroutines die with the test binary.
	go mgr.Run(ctx)

	<-ctx.Done()
	time.Sleep(10 * time.Millisecond)

	for d := 0; d < display.NumDisplays; d++ {
		if got := srv.Screen(d).Header[0]; got == "" {
			t.Errorf("display %d never received a title", d)
		}
	}
}
