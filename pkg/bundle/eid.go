package bundle

import "fmt"

// Scheme is an endpoint ID's addressing scheme tag. The core implements
// only IPN (spec.md §3 "Endpoint ID"); other scheme values decode but
// CheckValid rejects them.
type Scheme uint64

const (
	// SchemeIPN is RFC 9171's IPN scheme: an endpoint is a
	// (node-number, service-number) pair.
	SchemeIPN Scheme = 2
)

// EID is a tagged union over addressing schemes, narrowed in this core
// to IPN. Node and Service are ignored (and should be zero) for any
// other scheme value that merely round-trips through decode/encode.
type EID struct {
	Scheme  Scheme
	Node    uint64
	Service uint64
}

// NewIPN builds an IPN endpoint ID.
func NewIPN(node, service uint64) EID {
	return EID{Scheme: SchemeIPN, Node: node, Service: service}
}

// DtnNone returns the null endpoint, ipn:0.0 — used as a bundle's source
// when the source is intentionally omitted (RFC 9171 §4.1.3).
func DtnNone() EID {
	return EID{Scheme: SchemeIPN, Node: 0, Service: 0}
}

// IsNone reports whether e is the null endpoint.
func (e EID) IsNone() bool {
	return e.Scheme == SchemeIPN && e.Node == 0 && e.Service == 0
}

// CheckValid returns an error if e uses a scheme this core cannot route.
func (e EID) CheckValid() error {
	if e.Scheme != SchemeIPN {
		return fmt.Errorf("eid: unsupported scheme %d, only IPN (2) is implemented", e.Scheme)
	}
	return nil
}

func (e EID) String() string {
	return fmt.Sprintf("ipn:%d.%d", e.Node, e.Service)
}
