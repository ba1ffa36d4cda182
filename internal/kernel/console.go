package kernel

import "io"

// writerConsole adapts an io.Writer to sbi.Console, the byte-at-a-time surface the legacy console
// putchar call expects.
type writerConsole struct {
	w io.Writer
}

func (c *writerConsole) PutChar(b byte) {
	_, _ = c.w.Write([]byte{b})
}
