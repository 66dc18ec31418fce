// Package bundle defines the logical (post-decode, pre-encode) data
// model for a BPv7 bundle: endpoint IDs, the primary block, canonical
// blocks, and the processing-flag bitsets RFC 9171 attaches to each.
// pkg/codec converts between this package's types and wire CBOR;
// everything downstream (pkg/flow, pkg/route, pkg/cache) operates on
// these types rather than on bytes.
package bundle

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ID is the fingerprint the cache service indexes bundles by: a
// bundle's (source, creation timestamp) pair uniquely identifies it
// across the network (RFC 9171 §4.1.2), independent of any later
// fragmentation.
type ID struct {
	Source   EID
	Creation CreationTimestamp
}

func (id ID) String() string {
	return fmt.Sprintf("%s-%d-%d", id.Source, id.Creation.DtnTimeMs, id.Creation.SeqNum)
}

// Hash returns a 64-bit digest of id suitable as an rbtree key. It
// truncates a SHA-1 of the fingerprint's canonical byte encoding rather
// than combining the fields with XOR/multiply, so that bundles from
// different sources sharing a creation time (or vice versa) don't
// collide more often than chance allows.
func (id ID) Hash() uint64 {
	var buf [32]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(id.Source.Scheme))
	binary.BigEndian.PutUint64(buf[8:16], id.Source.Node)
	binary.BigEndian.PutUint64(buf[16:24], id.Creation.DtnTimeMs)
	binary.BigEndian.PutUint64(buf[24:32], id.Creation.SeqNum)
	sum := sha1.Sum(buf[:])
	return binary.BigEndian.Uint64(sum[:8])
}

// Bundle is a fully decoded bundle: one primary block plus an ordered
// list of canonical blocks. The payload block (BlockTypePayload) is
// conventionally last, but CheckValid does not require that ordering —
// RFC 9171 only requires it be present and requires the primary block
// be first, which this type's structure already guarantees.
type Bundle struct {
	Primary PrimaryBlock
	Blocks  []CanonicalBlock
}

// ID returns the bundle's fingerprint.
func (b *Bundle) ID() ID {
	return ID{Source: b.Primary.Source, Creation: b.Primary.Creation}
}

// Payload returns the bundle's payload block, or nil if none is
// present (a violation CheckValid reports separately).
func (b *Bundle) Payload() *CanonicalBlock {
	for i := range b.Blocks {
		if b.Blocks[i].Type == BlockTypePayload {
			return &b.Blocks[i]
		}
	}
	return nil
}

// CheckValid validates the primary block, every canonical block, and
// the cross-block invariants RFC 9171 imposes: exactly one payload
// block, and no duplicate block numbers.
func (b *Bundle) CheckValid() error {
	var result *multierror.Error

	if err := b.Primary.CheckValid(); err != nil {
		result = multierror.Append(result, err)
	}

	seenNumbers := make(map[uint64]bool, len(b.Blocks))
	payloadCount := 0
	for i := range b.Blocks {
		blk := &b.Blocks[i]
		if err := blk.CheckValid(); err != nil {
			result = multierror.Append(result, err)
		}
		if seenNumbers[blk.BlockNumber] {
			result = multierror.Append(result, fmt.Errorf("bundle: duplicate block number %d", blk.BlockNumber))
		}
		seenNumbers[blk.BlockNumber] = true
		if blk.Type == BlockTypePayload {
			payloadCount++
		}
	}
	switch payloadCount {
	case 0:
		result = multierror.Append(result, fmt.Errorf("bundle: no payload block present"))
	case 1:
	default:
		result = multierror.Append(result, fmt.Errorf("bundle: %d payload blocks present, want 1", payloadCount))
	}

	return result.ErrorOrNil()
}
