package bundle

import (
	"fmt"

	"github.com/dtncore/bpcore/pkg/crc"
)

// BlockType identifies a canonical block's semantics (RFC 9171 §4.3,
// plus the extension blocks original_source/v7/v7_types.h defines).
type BlockType uint64

const (
	// BlockTypePayload carries the bundle's application data unit.
	// Every bundle has exactly one, at block number 1.
	BlockTypePayload BlockType = 1
	// BlockTypePreviousNode records the node that forwarded this
	// bundle to us, so the next hop can be told where it came from.
	BlockTypePreviousNode BlockType = 6
	// BlockTypeBundleAge carries milliseconds elapsed since creation,
	// used by nodes without a synchronized clock in place of (or
	// alongside) the creation timestamp.
	BlockTypeBundleAge BlockType = 7
	// BlockTypeHopCount carries a (limit, count) pair; a forwarder
	// increments count and drops the bundle if count exceeds limit.
	BlockTypeHopCount BlockType = 10
)

func (t BlockType) String() string {
	switch t {
	case BlockTypePayload:
		return "payload"
	case BlockTypePreviousNode:
		return "previous-node"
	case BlockTypeBundleAge:
		return "bundle-age"
	case BlockTypeHopCount:
		return "hop-count"
	default:
		return fmt.Sprintf("unknown(%d)", uint64(t))
	}
}

// HopCountValue is the decoded content of a hop-count canonical block.
type HopCountValue struct {
	Limit uint64
	Count uint64
}

// CanonicalBlock is the logical form of one of a bundle's non-primary
// blocks (RFC 9171 §4.3.1). Content holds the raw bytes carried in the
// block's CBOR byte-string field, for every block type: pkg/codec does
// not decode the bodies of the previous-node, bundle-age or hop-count
// types.
//
// Bulk payload data does not live here once a bundle is queued for
// storage: pkg/flow's BlockStream is the chunked, pool-backed
// representation the cache and dataservice layers move around. Content
// is the pre-chunking / post-reassembly logical view pkg/codec
// marshals and unmarshals directly.
type CanonicalBlock struct {
	Type        BlockType
	BlockNumber uint64
	Flags       BlockFlags
	CRCType     crc.Algorithm
	Content     []byte
}

// CheckValid validates invariants that span more than one field.
func (b *CanonicalBlock) CheckValid() error {
	if b.Type == BlockTypePayload && b.BlockNumber != 1 {
		return fmt.Errorf("canonical: payload block must be block number 1, got %d", b.BlockNumber)
	}
	if b.BlockNumber == 0 {
		return fmt.Errorf("canonical: block number 0 is reserved for the primary block")
	}
	if b.Type == BlockTypeHopCount && len(b.Content) != 0 {
		if _, err := DecodeHopCount(b.Content); err != nil {
			return fmt.Errorf("canonical: hop-count: %w", err)
		}
	}
	return nil
}

// EncodeHopCount serializes a HopCountValue into a hop-count block's
// Content as a fixed 16-byte big-endian encoding (limit, then count).
// pkg/codec writes Content as an opaque byte string, so these 16 bytes
// are also what the block carries on the wire.
func EncodeHopCount(v HopCountValue) []byte {
	out := make([]byte, 16)
	putUint64(out[0:8], v.Limit)
	putUint64(out[8:16], v.Count)
	return out
}

// DecodeHopCount is EncodeHopCount's inverse.
func DecodeHopCount(b []byte) (HopCountValue, error) {
	if len(b) != 16 {
		return HopCountValue{}, fmt.Errorf("hop-count content must be 16 bytes, got %d", len(b))
	}
	return HopCountValue{
		Limit: getUint64(b[0:8]),
		Count: getUint64(b[8:16]),
	}, nil
}

// EncodeDACS serializes a list of accepted-bundle fingerprints into the
// in-memory interchange shape pkg/codec wraps as a DACS administrative
// record's payload content: a count followed by fixed 32-byte records
// (source scheme, source node, creation time, creation sequence),
// mirroring EncodeHopCount's fixed-width convention.
func EncodeDACS(accepted []ID) []byte {
	out := make([]byte, 8+32*len(accepted))
	putUint64(out[0:8], uint64(len(accepted)))
	for i, id := range accepted {
		off := 8 + 32*i
		putUint64(out[off:off+8], uint64(id.Source.Scheme))
		putUint64(out[off+8:off+16], id.Source.Node)
		putUint64(out[off+16:off+24], id.Creation.DtnTimeMs)
		putUint64(out[off+24:off+32], id.Creation.SeqNum)
	}
	return out
}

// DecodeDACS is EncodeDACS's inverse.
func DecodeDACS(b []byte) ([]ID, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("dacs content too short: %d bytes", len(b))
	}
	count := getUint64(b[0:8])
	want := 8 + 32*count
	if uint64(len(b)) != want {
		return nil, fmt.Errorf("dacs content: count %d does not match length %d", count, len(b))
	}
	out := make([]ID, count)
	for i := range out {
		off := 8 + 32*uint64(i)
		out[i] = ID{
			Source: EID{
				Scheme: Scheme(getUint64(b[off : off+8])),
				Node:   getUint64(b[off+8 : off+16]),
			},
			Creation: CreationTimestamp{
				DtnTimeMs: getUint64(b[off+16 : off+24]),
				SeqNum:    getUint64(b[off+24 : off+32]),
			},
		}
	}
	return out, nil
}

func putUint64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

func getUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
