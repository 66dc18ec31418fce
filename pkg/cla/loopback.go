package cla

import "github.com/dtncore/bpcore/pkg/bpe"

// Loopback is an in-memory Transport, one end of a connected pair
// created by NewLoopbackPair, for same-process CLA tests (spec.md's
// "hand the emitted CBOR bundle to the peer route table via CLA
// ingress" acceptance scenario) without opening a real socket.
type Loopback struct {
	out    chan<- []byte
	in     <-chan []byte
	closed chan struct{}
}

// NewLoopbackPair returns two Loopback transports wired so Send on one
// delivers to Recv on the other.
func NewLoopbackPair() (*Loopback, *Loopback) {
	ab := make(chan []byte, 16)
	ba := make(chan []byte, 16)
	closedA := make(chan struct{})
	closedB := make(chan struct{})
	a := &Loopback{out: ab, in: ba, closed: closedA}
	b := &Loopback{out: ba, in: ab, closed: closedB}
	return a, b
}

func (l *Loopback) Send(datagram []byte) error {
	select {
	case l.out <- datagram:
		return nil
	case <-l.closed:
		return bpe.Wrap(bpe.ErrAPI, "cla: loopback transport closed")
	}
}

func (l *Loopback) Recv() ([]byte, error) {
	select {
	case d := <-l.in:
		return d, nil
	case <-l.closed:
		return nil, bpe.Wrap(bpe.ErrAPI, "cla: loopback transport closed")
	}
}

func (l *Loopback) Close() error {
	close(l.closed)
	return nil
}
