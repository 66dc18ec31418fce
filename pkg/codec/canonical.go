package codec

import (
	"fmt"
	"io"

	"github.com/dtn7/cboring"
	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/crc"
)

// canonicalArrayLength returns a canonical block's definite-length
// array size: 5 base fields plus 1 if a CRC is present.
func canonicalArrayLength(b *bundle.CanonicalBlock) uint64 {
	n := uint64(5)
	if b.CRCType != crc.None {
		n++
	}
	return n
}

// EncodeCanonical writes b's CBOR encoding to w: block type, block
// number, processing flags, CRC type, content as a byte string, then
// the CRC value if one is selected.
func EncodeCanonical(w io.Writer, b *bundle.CanonicalBlock) error {
	h := crc.NewHash(b.CRCType)
	mw := io.MultiWriter(w, h)

	if err := cboring.WriteArrayLength(canonicalArrayLength(b), mw); err != nil {
		return err
	}
	for _, f := range []uint64{uint64(b.Type), b.BlockNumber, uint64(b.Flags), uint64(b.CRCType)} {
		if err := cboring.WriteUInt(f, mw); err != nil {
			return err
		}
	}
	if err := cboring.WriteByteString(b.Content, mw); err != nil {
		return err
	}

	return writeCRCField(w, h, b.CRCType)
}

// DecodeCanonical reads a canonical block's CBOR encoding from r,
// verifying its CRC if one is present.
func DecodeCanonical(r io.Reader) (*bundle.CanonicalBlock, error) {
	b := &bundle.CanonicalBlock{}

	var leading bytesCapture
	tr := io.TeeReader(r, &leading)

	arrLen, err := cboring.ReadArrayLength(tr)
	if err != nil {
		return nil, err
	}
	if arrLen != 5 && arrLen != 6 {
		return nil, fmt.Errorf("canonical: expected 5 or 6 element array, got %d", arrLen)
	}

	blockType, err := cboring.ReadUInt(tr)
	if err != nil {
		return nil, err
	}
	b.Type = bundle.BlockType(blockType)

	if b.BlockNumber, err = cboring.ReadUInt(tr); err != nil {
		return nil, err
	}

	flags, err := cboring.ReadUInt(tr)
	if err != nil {
		return nil, err
	}
	b.Flags = bundle.BlockFlags(flags)

	crcType, err := cboring.ReadUInt(tr)
	if err != nil {
		return nil, err
	}
	b.CRCType = crc.Algorithm(crcType)

	h := crc.NewHash(b.CRCType)
	_, _ = h.Write(leading.bytes)
	tr = io.TeeReader(r, h)

	content, err := cboring.ReadByteString(tr)
	if err != nil {
		return nil, err
	}
	b.Content = content

	if arrLen == 6 {
		if _, err := readCRCField(r, h, b.CRCType); err != nil {
			return nil, err
		}
	}

	return b, nil
}
