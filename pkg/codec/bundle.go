package codec

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dtncore/bpcore/pkg/bundle"
)

const (
	indefiniteArrayStart byte = 0x9F
	indefiniteArrayBreak byte = 0xFF
)

// EncodeBundle writes b as a CBOR indefinite-length array: the
// primary block first, then each canonical block in order, as RFC
// 9171 §4.1 requires.
func EncodeBundle(w io.Writer, b *bundle.Bundle) error {
	if _, err := w.Write([]byte{indefiniteArrayStart}); err != nil {
		return err
	}
	if err := EncodePrimary(w, &b.Primary); err != nil {
		return fmt.Errorf("bundle: primary block: %w", err)
	}
	for i := range b.Blocks {
		if err := EncodeCanonical(w, &b.Blocks[i]); err != nil {
			return fmt.Errorf("bundle: canonical block %d: %w", i, err)
		}
	}
	_, err := w.Write([]byte{indefiniteArrayBreak})
	return err
}

// DecodeBundle reads a CBOR indefinite-length array of blocks from r:
// the primary block, then zero or more canonical blocks up to the
// break code. Unrecognized canonical block types decode successfully
// (their Content is kept as raw bytes) so a forwarder can still relay
// them; interpretation of BlockFlags against a type it doesn't
// recognize is left to the caller.
func DecodeBundle(r io.Reader) (*bundle.Bundle, error) {
	br := bufio.NewReader(r)

	head, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if head != indefiniteArrayStart {
		return nil, fmt.Errorf("bundle: expected indefinite array marker 0x%02x, got 0x%02x", indefiniteArrayStart, head)
	}

	primary, err := DecodePrimary(br)
	if err != nil {
		return nil, fmt.Errorf("bundle: primary block: %w", err)
	}

	var blocks []bundle.CanonicalBlock
	for {
		peek, err := br.Peek(1)
		if err != nil {
			return nil, err
		}
		if peek[0] == indefiniteArrayBreak {
			_, _ = br.ReadByte()
			break
		}

		blk, err := DecodeCanonical(br)
		if err != nil {
			return nil, fmt.Errorf("bundle: canonical block %d: %w", len(blocks), err)
		}
		blocks = append(blocks, *blk)
	}

	return &bundle.Bundle{Primary: *primary, Blocks: blocks}, nil
}
