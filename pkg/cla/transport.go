package cla

// Transport is the datagram-level collaborator an Adapter drives: one
// encoded bundle per Send/Recv call. Implementations need not be
// message-boundary-safe beyond what the underlying medium already
// guarantees (UDP preserves datagram boundaries; Loopback is a direct
// channel hand-off).
type Transport interface {
	// Send transmits one encoded bundle.
	Send(datagram []byte) error
	// Recv blocks for the next inbound datagram. It returns an error
	// once the transport is closed, ending the adapter's receive loop.
	Recv() ([]byte, error)
	// Close releases the transport's underlying resources and unblocks
	// any in-flight Recv.
	Close() error
}
