package codec

import (
	"fmt"
	"io"

	"github.com/dtn7/cboring"
	"github.com/dtncore/bpcore/pkg/bundle"
)

// writeEID encodes an endpoint ID as the 2-element [scheme,
// scheme-specific-part] array RFC 9171 §4.2.5.1 describes; IPN's ssp
// is itself the 2-element [node, service] array (spec.md §4).
func writeEID(w io.Writer, e bundle.EID) error {
	if err := cboring.WriteArrayLength(2, w); err != nil {
		return err
	}
	if err := cboring.WriteUInt(uint64(e.Scheme), w); err != nil {
		return err
	}
	if err := cboring.WriteArrayLength(2, w); err != nil {
		return err
	}
	if err := cboring.WriteUInt(e.Node, w); err != nil {
		return err
	}
	return cboring.WriteUInt(e.Service, w)
}

func readEID(r io.Reader) (bundle.EID, error) {
	var e bundle.EID

	outerLen, err := cboring.ReadArrayLength(r)
	if err != nil {
		return e, err
	}
	if outerLen != 2 {
		return e, fmt.Errorf("eid: expected 2-element array, got %d", outerLen)
	}

	scheme, err := cboring.ReadUInt(r)
	if err != nil {
		return e, err
	}
	e.Scheme = bundle.Scheme(scheme)

	sspLen, err := cboring.ReadArrayLength(r)
	if err != nil {
		return e, err
	}
	if sspLen != 2 {
		return e, fmt.Errorf("eid: expected 2-element ssp array, got %d", sspLen)
	}

	if e.Node, err = cboring.ReadUInt(r); err != nil {
		return e, err
	}
	if e.Service, err = cboring.ReadUInt(r); err != nil {
		return e, err
	}

	return e, nil
}
