package timer

import (
	"context"
	"time"
)

// wallTick is the real-time granularity the driver advances the simulated clock by. It is much
// finer than any configured quantum so that Advance's deadline check fires close to on time.
const wallTick = 200 * time.Microsecond

// Run drives the timer from the host's wall clock until ctx is cancelled, converting each
// wallTick into the matching number of simulated cycles. It is the thread-based stand-in for the
// interrupt a real hart would take directly from the platform clock.
func (t *Timer) Run(ctx context.Context) {
	ticker := time.NewTicker(wallTick)
	defer ticker.Stop()

	cycles := uint64(wallTick.Microseconds()) * TimebaseFreq / 1_000_000
	if cycles == 0 {
		cycles = 1
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Advance(cycles)
		}
	}
}
