// Package trap models the kernel's trap frame and cause dispatch: the ABI between the (simulated)
// naked trap vector and the handler that runs on every exception, ecall, or timer interrupt.
package trap

import "fmt"

// FrameWords is the fixed size of a trap frame: ra, gp, tp, t0-t6, a0-a7, s0-s11, sp.
const FrameWords = 31

// Frame is the packed register block the trap vector saves on entry and restores on exit. Field
// order is ABI — ra, gp, tp, t0..t6, a0..a7, s0..s11, sp — and must never change; it is what a
// naked trap entry routine would push onto the kernel stack.
type Frame struct {
	RA Word
	GP Word
	TP Word

	T [7]Word // t0..t6

	A [8]Word // a0..a7

	S [12]Word // s0..s11

	SP Word // parked caller sp, loaded from sscratch[0] on entry
}

// Word is a 32-bit general-purpose register value.
type Word = uint32

// Encode packs the frame into FrameWords words, in ABI order.
func (f *Frame) Encode() [FrameWords]Word {
	var out [FrameWords]Word

	i := 0
	out[i] = f.RA
	i++
	out[i] = f.GP
	i++
	out[i] = f.TP
	i++

	for _, t := range f.T {
		out[i] = t
		i++
	}

	for _, a := range f.A {
		out[i] = a
		i++
	}

	for _, s := range f.S {
		out[i] = s
		i++
	}

	out[i] = f.SP

	return out
}

// Decode unpacks FrameWords words, in ABI order, into a Frame.
func Decode(words [FrameWords]Word) *Frame {
	f := &Frame{}

	i := 0
	f.RA = words[i]
	i++
	f.GP = words[i]
	i++
	f.TP = words[i]
	i++

	for j := range f.T {
		f.T[j] = words[i]
		i++
	}

	for j := range f.A {
		f.A[j] = words[i]
		i++
	}

	for j := range f.S {
		f.S[j] = words[i]
		i++
	}

	f.SP = words[i]

	return f
}

func (f *Frame) String() string {
	return fmt.Sprintf("frame{ra:%#x sp:%#x a0:%#x}", f.RA, f.SP, f.A[0])
}
