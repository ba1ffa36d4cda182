// tty_test exercises Console. Render needs no real terminal (it only writes to an io.Writer
// wrapped by term.NewTerminal), but NewConsole/ConsoleContext require stdin to be a terminal,
// which "go test" never provides (it redirects standard streams). Build and run a test binary
// directly to exercise those:
//
//	$ go test -c && ./tty.test
package tty

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/term"

	"github.com/rv32lab/kernel/internal/display"
)

func TestConsoleContextWithoutTTYReturnsErrNoTTY(t *testing.T) {
	ctx, console, cancel := ConsoleContext(context.Background())
	defer cancel()

	if console != nil {
		t.Fatal("expected nil console when stdin is not a terminal")
	}

	if !errors.Is(context.Cause(ctx), ErrNoTTY) {
		t.Fatalf("context cause = %v, want ErrNoTTY", context.Cause(ctx))
	}
}

func newTestConsole(buf *bytes.Buffer) *Console {
	return &Console{out: term.NewTerminal(buf, "")}
}

func TestWithDisplayClampsOutOfRangeIndex(t *testing.T) {
	var buf bytes.Buffer
	c := newTestConsole(&buf).WithDisplay(-1)
	if c.active != 0 {
		t.Fatalf("WithDisplay(-1) selected %d, want 0", c.active)
	}

	c = newTestConsole(&buf).WithDisplay(display.NumDisplays + 10)
	if c.active != display.NumDisplays-1 {
		t.Fatalf("WithDisplay(overflow) selected %d, want %d", c.active, display.NumDisplays-1)
	}
}

func TestRenderDrawsActiveDisplayOnly(t *testing.T) {
	var screens [display.NumDisplays]display.Screen
	for i := range screens {
		screens[i].Header[0] = headerFor(i)
	}

	var buf bytes.Buffer
	c := newTestConsole(&buf).WithDisplay(2)
	c.Render(&screens)

	out := buf.String()
	if !strings.Contains(out, headerFor(2)) {
		t.Fatalf("render output missing active display's header: %q", out)
	}

	for i := range screens {
		if i == 2 {
			continue
		}

		if strings.Contains(out, headerFor(i)) {
			t.Fatalf("render output unexpectedly contains display %d's header", i)
		}
	}
}

func headerFor(i int) string {
	return "display-under-test-" + string(rune('A'+i))
}
