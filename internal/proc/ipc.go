package proc

// ipc.go is the synchronous rendezvous protocol: send blocks until a matching recv is ready (or
// hands off immediately if one already is), recv blocks until a matching send arrives. Every
// critical section runs under Manager's lock, and the suspend/resume points call straight through
// to the scheduler half of this package.

import "errors"

// RecvSrc selects who recv will accept a message from.
type RecvSrc struct {
	pid      Pid
	specific bool
}

// FromPid restricts recv to messages from a specific sender.
func FromPid(pid Pid) RecvSrc { return RecvSrc{pid: pid, specific: true} }

// AnySender accepts a message from any sender.
func AnySender() RecvSrc { return RecvSrc{} }

func (s RecvSrc) matches(src Pid) bool {
	return !s.specific || s.pid == src
}

// errIpc is the sentinel all IPC errors wrap, so code in this package can errors.Is(err, errIpc) to
// test "was this an IPC failure" generically. It is unexported; other packages match the exported
// Err* values instead.
var errIpc = errors.New("ipc")

var (
	// ErrSelfSend is returned when a process sends to itself.
	ErrSelfSend = errWrap("self send")

	// ErrDeadlockDetected is the kernel's static refusal to complete an operation that would
	// create a cycle of mutually blocked senders. It never unblocks the peer. It is also returned
	// when the caller already has a send queued on the destination (a duplicate in-flight send,
	// not strictly a deadlock), when the caller already has a pending send of its own, and when a
	// Recv is issued while one is already in flight.
	ErrDeadlockDetected = errWrap("deadlock detected")

	// ErrSendQueueFull is returned when a destination's sender queue has no free slot.
	ErrSendQueueFull = errWrap("send queue full")

	// ErrUnexpectedState is returned when a resumed process finds its IPC state doesn't match
	// what the protocol guarantees it should.
	ErrUnexpectedState = errWrap("unexpected state")
)

func errWrap(msg string) error {
	return &ipcError{msg: msg}
}

type ipcError struct{ msg string }

func (e *ipcError) Error() string { return "ipc: " + e.msg }
func (e *ipcError) Unwrap() error { return errIpc }

// senderEntry is one occupied slot in a destination's senders queue.
type senderEntry struct {
	used bool
	src  Pid
	msg  Message
}

// ipcState is the per-process IPC state block.
type ipcState struct {
	waitingFor    RecvSrc
	waiting       bool
	pendingDst    Pid
	pendingMsg    Message
	pendingSend   bool
	senders       [ProcsMax]senderEntry
	inbox         Message
	inboxOccupied bool
}

// Send may block the caller inside Switch; callers must treat Send as a potentially suspending
// call.
func (m *Manager) Send(dst Pid, msg Message) error {
	m.mut.Lock()

	me := m.current

	if me == dst {
		m.mut.Unlock()
		return ErrSelfSend
	}

	dstProc := m.procs[dst]
	meProc := m.procs[me]

	// Deadlock check A: dst is already blocked sending to us, so blocking on dst would close a
	// cycle of mutually pending sends.
	if dstProc.ipc.pendingSend && dstProc.ipc.pendingDst == me {
		m.mut.Unlock()
		return ErrDeadlockDetected
	}

	// Fast path: destination is already blocked waiting for us (or anyone).
	if dstProc.state == Blocked && dstProc.ipc.waiting && dstProc.ipc.waitingFor.matches(me) {
		dstProc.ipc.inbox = msg
		dstProc.ipc.inboxOccupied = true
		dstProc.ipc.waiting = false

		m.unblockLocked(dst)
		m.mut.Unlock()

		return nil
	}

	// Slow path: queue on the destination's senders array.
	for _, entry := range dstProc.ipc.senders {
		if entry.used && entry.src == me {
			m.mut.Unlock()
			return ErrDeadlockDetected
		}
	}

	slot := -1

	for i, entry := range dstProc.ipc.senders {
		if !entry.used {
			slot = i
			break
		}
	}

	if slot == -1 {
		m.mut.Unlock()
		return ErrSendQueueFull
	}

	dstProc.ipc.senders[slot] = senderEntry{used: true, src: me, msg: msg}

	if meProc.ipc.pendingSend {
		m.mut.Unlock()
		return ErrDeadlockDetected
	}

	meProc.ipc.pendingSend = true
	meProc.ipc.pendingDst = dst
	meProc.ipc.pendingMsg = msg

	m.blockCurrentLocked()
	m.switchLocked()

	// switchLocked released and reacquired the lock around the context switch; meProc's fields
	// may have changed while we were blocked.
	still := meProc.ipc.pendingSend
	meProc.ipc.pendingSend = false

	m.mut.Unlock()

	if still {
		return ErrUnexpectedState
	}

	return nil
}

// Recv blocks until a message from a matching sender is available.
func (m *Manager) Recv(src RecvSrc) (Message, error) {
	m.mut.Lock()

	me := m.current
	meProc := m.procs[me]

	if msg, ok := m.takeMatchingSenderLocked(meProc, src); ok {
		m.mut.Unlock()
		return msg, nil
	}

	if meProc.ipc.inboxOccupied {
		msg := meProc.ipc.inbox
		meProc.ipc.inboxOccupied = false

		m.mut.Unlock()

		return msg, nil
	}

	if meProc.ipc.waiting {
		m.mut.Unlock()
		return nil, ErrDeadlockDetected
	}

	meProc.ipc.waiting = true
	meProc.ipc.waitingFor = src

	m.blockCurrentLocked()
	m.switchLocked()

	if meProc.ipc.inboxOccupied {
		msg := meProc.ipc.inbox
		meProc.ipc.inboxOccupied = false

		m.mut.Unlock()

		return msg, nil
	}

	if msg, ok := m.takeMatchingSenderLocked(meProc, meProc.ipc.waitingFor); ok {
		meProc.ipc.waiting = false

		m.mut.Unlock()

		return msg, nil
	}

	m.mut.Unlock()

	return nil, ErrUnexpectedState
}

// takeMatchingSenderLocked scans me's senders queue under src's filter, dequeuing and unblocking
// the first match. Called with m.mut held.
func (m *Manager) takeMatchingSenderLocked(me *Process, src RecvSrc) (Message, bool) {
	for i := range me.ipc.senders {
		entry := me.ipc.senders[i]
		if !entry.used {
			continue
		}

		if !src.matches(entry.src) {
			continue
		}

		me.ipc.senders[i] = senderEntry{}

		sender := m.procs[entry.src]
		sender.ipc.pendingSend = false

		m.unblockLocked(entry.src)

		return entry.msg, true
	}

	return nil, false
}
