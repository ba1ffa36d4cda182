package trap_test

import (
	"testing"

	"github.com/rv32lab/kernel/internal/trap"
)

func TestFrameRoundTrip(t *testing.T) {
	f := &trap.Frame{
		RA: 0x1111,
		GP: 0x2222,
		TP: 0x3333,
		SP: 0x9999,
	}

	for i := range f.T {
		f.T[i] = Word(0x100 + i)
	}

	for i := range f.A {
		f.A[i] = Word(0x200 + i)
	}

	for i := range f.S {
		f.S[i] = Word(0x300 + i)
	}

	words := f.Encode()

	if len(words) != trap.FrameWords {
		t.Fatalf("Encode produced %d words, want %d", len(words), trap.FrameWords)
	}

	got := trap.Decode(words)

	if *got != *f {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, f)
	}
}

func TestFrameFieldOrder(t *testing.T) {
	f := &trap.Frame{RA: 1, GP: 2, TP: 3}
	f.T[0] = 4
	f.A[0] = 11
	f.S[0] = 19
	f.SP = 31

	words := f.Encode()

	want := [trap.FrameWords]Word{0: 1, 1: 2, 2: 3, 3: 4, 10: 11, 18: 19, 30: 31}

	if words != want {
		t.Fatalf("field order mismatch:\n got  %v\n want %v", words, want)
	}
}

type Word = uint32
