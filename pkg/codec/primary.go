package codec

import (
	"fmt"
	"io"

	"github.com/dtn7/cboring"
	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/crc"
)

// primaryArrayLength returns the definite-length array size a primary
// block encodes as: 8 base fields, +2 if fragmented, +1 if a CRC is
// present (spec.md §4).
func primaryArrayLength(p *bundle.PrimaryBlock) uint64 {
	n := uint64(8)
	if p.Flags.Has(bundle.IsFragment) {
		n += 2
	}
	if p.CRCType != crc.None {
		n++
	}
	return n
}

// EncodePrimary writes p's CBOR encoding to w, computing and appending
// the CRC value p.CRCType selects.
func EncodePrimary(w io.Writer, p *bundle.PrimaryBlock) error {
	h := crc.NewHash(p.CRCType)
	mw := io.MultiWriter(w, h)

	if err := cboring.WriteArrayLength(primaryArrayLength(p), mw); err != nil {
		return err
	}
	for _, f := range []uint64{bundle.ProtocolVersion, uint64(p.Flags), uint64(p.CRCType)} {
		if err := cboring.WriteUInt(f, mw); err != nil {
			return err
		}
	}
	for _, eid := range []bundle.EID{p.Destination, p.Source, p.ReportTo} {
		if err := writeEID(mw, eid); err != nil {
			return fmt.Errorf("primary: endpoint id: %w", err)
		}
	}

	if err := cboring.WriteArrayLength(2, mw); err != nil {
		return err
	}
	if err := cboring.WriteUInt(p.Creation.DtnTimeMs, mw); err != nil {
		return err
	}
	if err := cboring.WriteUInt(p.Creation.SeqNum, mw); err != nil {
		return err
	}

	if err := cboring.WriteUInt(p.Lifetime, mw); err != nil {
		return err
	}

	if p.Flags.Has(bundle.IsFragment) {
		if err := cboring.WriteUInt(p.FragmentOffset, mw); err != nil {
			return err
		}
		if err := cboring.WriteUInt(p.TotalADULength, mw); err != nil {
			return err
		}
	}

	return writeCRCField(w, h, p.CRCType)
}

// DecodePrimary reads a primary block's CBOR encoding from r, verifying
// its CRC if one is present.
func DecodePrimary(r io.Reader) (*bundle.PrimaryBlock, error) {
	p := &bundle.PrimaryBlock{}

	// The CRC algorithm isn't known until the CRCType field is read, but
	// the encoder's preimage starts at the array header. Capture the
	// leading bytes into a buffer and replay them into the hash once its
	// algorithm is known, so the decoder's preimage matches byte for
	// byte.
	var leading bytesCapture
	tr := io.TeeReader(r, &leading)

	arrLen, err := cboring.ReadArrayLength(tr)
	if err != nil {
		return nil, err
	}
	if arrLen < 8 || arrLen > 11 {
		return nil, fmt.Errorf("primary: expected 8 to 11 element array, got %d", arrLen)
	}

	version, err := cboring.ReadUInt(tr)
	if err != nil {
		return nil, err
	}
	if version != bundle.ProtocolVersion {
		return nil, fmt.Errorf("primary: expected version %d, got %d", bundle.ProtocolVersion, version)
	}
	p.Version = version

	flags, err := cboring.ReadUInt(tr)
	if err != nil {
		return nil, err
	}
	p.Flags = bundle.ProcessingFlags(flags)

	crcType, err := cboring.ReadUInt(tr)
	if err != nil {
		return nil, err
	}
	p.CRCType = crc.Algorithm(crcType)

	h := crc.NewHash(p.CRCType)
	_, _ = h.Write(leading.bytes)
	tr = io.TeeReader(r, h)

	for i, dst := range []*bundle.EID{&p.Destination, &p.Source, &p.ReportTo} {
		eid, err := readEID(tr)
		if err != nil {
			return nil, fmt.Errorf("primary: endpoint id %d: %w", i, err)
		}
		*dst = eid
	}

	tsLen, err := cboring.ReadArrayLength(tr)
	if err != nil {
		return nil, err
	}
	if tsLen != 2 {
		return nil, fmt.Errorf("primary: creation timestamp array length %d, want 2", tsLen)
	}
	if p.Creation.DtnTimeMs, err = cboring.ReadUInt(tr); err != nil {
		return nil, err
	}
	if p.Creation.SeqNum, err = cboring.ReadUInt(tr); err != nil {
		return nil, err
	}

	if p.Lifetime, err = cboring.ReadUInt(tr); err != nil {
		return nil, err
	}

	if arrLen == 10 || arrLen == 11 {
		if p.FragmentOffset, err = cboring.ReadUInt(tr); err != nil {
			return nil, err
		}
		if p.TotalADULength, err = cboring.ReadUInt(tr); err != nil {
			return nil, err
		}
	}

	if arrLen == 9 || arrLen == 11 {
		crcBytes, err := readCRCField(r, h, p.CRCType)
		if err != nil {
			return nil, err
		}
		_ = crcBytes
	}

	return p, nil
}
