package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dtn7/cboring"
	"github.com/dtncore/bpcore/pkg/bpe"
	"github.com/dtncore/bpcore/pkg/crc"
)

// bytesCapture is an io.Writer that appends everything written to it.
// Used to capture the leading header bytes of a block (array length,
// type, flags, CRCType) before the CRCType field tells the decoder
// which hash algorithm those bytes belong to.
type bytesCapture struct {
	bytes []byte
}

func (c *bytesCapture) Write(p []byte) (int, error) {
	c.bytes = append(c.bytes, p...)
	return len(p), nil
}

// crcByteStringHeader returns the single CBOR header byte a definite-
// length byte string of the given width encodes to. Both CRC widths (2
// and 4) fit in a major-type-2 head with the length in the additional
// info bits, so no extra length octets ever follow.
func crcByteStringHeader(width int) byte {
	switch width {
	case 2:
		return 0x42
	case 4:
		return 0x44
	default:
		return 0
	}
}

// writeCRCField finalizes h by feeding it the CRC byte string's own
// predicted header plus a zero-filled placeholder of its width, then
// writes the real byte string to w.
func writeCRCField(w io.Writer, h *crc.Hash, alg crc.Algorithm) error {
	if alg == crc.None {
		return nil
	}
	width := alg.Width()
	_, _ = h.Write([]byte{crcByteStringHeader(width)})
	_, _ = h.Write(make([]byte, width))
	return cboring.WriteByteString(h.Bytes(), w)
}

// readCRCField reproduces the same preimage writeCRCField computed,
// then reads the actual byte string from r (not the tee'd reader that
// fed h, so the real CRC bytes are never folded into h themselves) and
// compares.
func readCRCField(r io.Reader, h *crc.Hash, alg crc.Algorithm) ([]byte, error) {
	if alg == crc.None {
		return nil, nil
	}
	width := alg.Width()
	_, _ = h.Write([]byte{crcByteStringHeader(width)})
	_, _ = h.Write(make([]byte, width))
	expected := h.Bytes()

	actual, err := cboring.ReadByteString(r)
	if err != nil {
		return nil, fmt.Errorf("crc: reading byte string: %w", err)
	}
	if !bytes.Equal(expected, actual) {
		return nil, bpe.Wrap(bpe.ErrFailedIntegrityCheck, "crc mismatch: got %x, want %x", actual, expected)
	}
	return actual, nil
}
