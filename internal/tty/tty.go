// Package tty provides terminal emulation.
package tty

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/rv32lab/kernel/internal/display"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Console is a serial console that renders the display multiplexer's four screens to a real
// terminal using Unix terminal I/O[^1].
//
// Console implements display.Renderer: every time the display server processes a message it calls
// Render with its current screen state, and Console clears the attached terminal and redraws the
// active display in full.
//
// [1]: See: tty(4), termios(4).
type Console struct {
	out   *term.Terminal
	fd    int
	state *term.State

	active int // which of the four displays is shown full-screen.
}

// ErrNoTTY is returned if standard input is not a terminal. In this case, raw-mode terminal
// rendering is not supported by the console.
var ErrNoTTY error = errors.New("console: not a TTY")

var _ display.Renderer = (*Console)(nil)

// NewConsole creates a Console using the provided streams. If the input stream is not a terminal,
// ErrNoTTY is returned. Callers are responsible for calling [Console.Restore] to return the
// terminal to its initial state.
func NewConsole(sin, sout *os.File) (*Console, error) {
	fd := int(sin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	cons := Console{
		fd:    fd,
		out:   term.NewTerminal(sout, ""),
		state: saved,
	}

	if err := cons.setTerminalParams(1, 0); err != nil {
		return nil, err
	}

	return &cons, nil
}

// WithDisplay selects which of the display server's four displays this console renders
// full-screen. Indices outside [0, display.NumDisplays) are clamped.
func (c *Console) WithDisplay(index int) *Console {
	if index < 0 {
		index = 0
	} else if index >= display.NumDisplays {
		index = display.NumDisplays - 1
	}

	c.active = index

	return c
}

// Render draws the active display's header and cells to the terminal, implementing
// display.Renderer. Errors writing to the terminal are swallowed: a console that can no longer be
// written to has nothing useful left to do but let the process continue running headless.
func (c *Console) Render(screens *[display.NumDisplays]display.Screen) {
	scr := screens[c.active]

	var b strings.Builder

	b.WriteString("\x1b[H\x1b[2J")

	for _, line := range scr.Header {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			ch := scr.Cells[y][x].Ch
			if ch == 0 {
				ch = ' '
			}

			b.WriteRune(ch)
		}

		b.WriteString("\r\n")
	}

	_, _ = fmt.Fprint(c.out, b.String())
}

// Restore returns the terminal to its initial state.
func (c *Console) Restore() {
	_ = os.Stdin.SetReadDeadline(time.Now())
	_ = term.Restore(c.fd, c.state)
}

func (c *Console) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(c.fd, true)

	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	if err := unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO); err != nil {
		return err
	}

	_ = os.Stdin.SetReadDeadline(time.Time{})

	return nil
}

// ConsoleContext creates a Console attached to the standard streams and a context whose cancel
// func restores the terminal. If standard input is not a terminal, the returned Console is nil and
// the context carries ErrNoTTY as its cancellation cause.
func ConsoleContext(parent context.Context) (context.Context, *Console, context.CancelFunc) {
	ctx, cause := context.WithCancelCause(parent)

	console, err := NewConsole(os.Stdin, os.Stdout)
	if err != nil {
		cause(err)
		return ctx, nil, func() { cause(err) }
	}

	return ctx, console, console.Restore
}
