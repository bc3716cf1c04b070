package protocol

import (
	"context"
	"sync"
)

// pipeBuffer bounds how far a sender may run ahead of its peer. The
// protocol alternates, so one slot per direction is enough.
const pipeBuffer = 1

type pipeEnd struct {
	in      <-chan Record
	out     chan<- Record
	closed  chan struct{} // closed when this end is closed
	peer    chan struct{} // closed when the other end is closed
	closeFn func()
}

// Pipe returns the two ends of an in-memory channel. Closing either end
// makes further Sends on both ends fail with ErrDisconnected; records that
// were already sent can still be received.
func Pipe() (Conn, Conn) {
	ab := make(chan Record, pipeBuffer)
	ba := make(chan Record, pipeBuffer)
	aClosed := make(chan struct{})
	bClosed := make(chan struct{})

	var aOnce, bOnce sync.Once
	a := &pipeEnd{in: ba, out: ab, closed: aClosed, peer: bClosed}
	b := &pipeEnd{in: ab, out: ba, closed: bClosed, peer: aClosed}
	a.closeFn = func() { aOnce.Do(func() { close(aClosed) }) }
	b.closeFn = func() { bOnce.Do(func() { close(bClosed) }) }
	return a, b
}

// Send implements Conn.
func (p *pipeEnd) Send(ctx context.Context, r Record) error {
	select {
	case <-p.closed:
		return ErrDisconnected
	case <-p.peer:
		return ErrDisconnected
	default:
	}

	body := make([]byte, len(r.Body))
	copy(body, r.Body)
	r.Body = body

	select {
	case p.out <- r:
		return nil
	case <-p.closed:
		return ErrDisconnected
	case <-p.peer:
		return ErrDisconnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive implements Conn.
func (p *pipeEnd) Receive(ctx context.Context) (Record, error) {
	// Drain anything already sent before reporting a closed peer.
	select {
	case r := <-p.in:
		return r, nil
	default:
	}

	select {
	case r := <-p.in:
		return r, nil
	case <-p.closed:
		return Record{}, ErrDisconnected
	case <-p.peer:
		select {
		case r := <-p.in:
			return r, nil
		default:
			return Record{}, ErrDisconnected
		}
	case <-ctx.Done():
		return Record{}, ctx.Err()
	}
}

// Close implements Conn. It is safe to call more than once.
func (p *pipeEnd) Close() error {
	p.closeFn()
	return nil
}
