package proc

// message.go defines the closed message enumeration exchanged between processes. The kernel never
// interprets message contents; only the display server (internal/display) looks inside the
// Display* variants. The set is sealed with an unexported marker method so no package outside proc
// can add a new variant and silently change the kernel's wire ABI.

// Message is any value the kernel may rendezvous between two processes.
type Message interface {
	isMessage()
}

// Ping is an empty acknowledgement message.
type Ping struct{}

func (Ping) isMessage() {}

// Data is a generic two-word payload.
type Data struct {
	A, B Word
}

func (Data) isMessage() {}

// DisplayPrint asks the display server to render text at (0, line) on the named display.
type DisplayPrint struct {
	Display uint8
	Line    uint8
	Text    [32]byte
	Len     uint8
}

func (DisplayPrint) isMessage() {}

// DisplayClear asks the display server to blank the named display.
type DisplayClear struct {
	Display uint8
}

func (DisplayClear) isMessage() {}

// DisplayDrawCell asks the display server to paint a single character cell.
type DisplayDrawCell struct {
	Display uint8
	X, Y    uint8
	FG, BG  uint8
	Ch      rune
}

func (DisplayDrawCell) isMessage() {}
