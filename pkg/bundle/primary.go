package bundle

import (
	"fmt"

	"github.com/dtncore/bpcore/pkg/crc"
	"github.com/hashicorp/go-multierror"
)

// ProtocolVersion is the only bundle protocol version this core emits or
// accepts.
const ProtocolVersion uint64 = 7

// CustodyPolicy selects how the cache service treats a bundle's custody
// obligations. It has no wire representation; it is carried alongside
// the primary block as local delivery metadata (spec.md §3, "delivery
// metadata is not part of the wire block").
type CustodyPolicy int

const (
	// CustodyNone means the bundle is forwarded without custody
	// tracking.
	CustodyNone CustodyPolicy = iota
	// CustodyLocalAck means the bundle is held until a DACS acking it
	// arrives, or its lifetime expires.
	CustodyLocalAck
	// CustodyTransfer means this node has accepted custody and must
	// generate a DACS once its own obligation is satisfied.
	CustodyTransfer
)

// CreationTimestamp is the primary block's creation timestamp: DTN time
// in milliseconds since the epoch (pkg/osal.DtnEpoch) plus a sequence
// number disambiguating bundles created within the same millisecond.
type CreationTimestamp struct {
	DtnTimeMs uint64
	SeqNum    uint64
}

// PrimaryBlock is the logical form of a bundle's primary block (RFC 9171
// §4.2.2). It excludes the CRC's own encoded bytes, which pkg/codec
// computes during serialization, but retains the CRCType selector and a
// handful of local delivery-metadata fields that never appear on the
// wire.
type PrimaryBlock struct {
	Version     uint64
	Flags       ProcessingFlags
	CRCType     crc.Algorithm
	Destination EID
	Source      EID
	ReportTo    EID
	Creation    CreationTimestamp
	Lifetime    uint64

	// FragmentOffset and TotalADULength are present only when
	// Flags.Has(IsFragment).
	FragmentOffset uint64
	TotalADULength uint64

	// Delivery metadata: never encoded, carried for the lifetime of the
	// bundle while resident in this node (spec.md §3).
	IngressIntf   uint16
	EgressIntf    uint16
	IngressTimeMs uint64
	EgressTimeMs  uint64
	CustodyPolicy CustodyPolicy
	RetxIntervalM uint64
}

// CheckValid validates field combinations CheckValid in pkg/codec cannot
// by itself enforce (cross-field invariants rather than wire-shape
// invariants).
func (p *PrimaryBlock) CheckValid() error {
	var result *multierror.Error

	if p.Version != ProtocolVersion {
		result = multierror.Append(result, fmt.Errorf("primary: version %d, want %d", p.Version, ProtocolVersion))
	}
	if err := p.Destination.CheckValid(); err != nil {
		result = multierror.Append(result, fmt.Errorf("primary: destination: %w", err))
	}
	if err := p.Source.CheckValid(); err != nil {
		result = multierror.Append(result, fmt.Errorf("primary: source: %w", err))
	}
	if err := p.ReportTo.CheckValid(); err != nil {
		result = multierror.Append(result, fmt.Errorf("primary: report-to: %w", err))
	}
	if p.Flags.Has(IsFragment) && p.TotalADULength == 0 {
		result = multierror.Append(result, fmt.Errorf("primary: fragment flag set but total ADU length is 0"))
	}
	if !p.Flags.Has(IsFragment) && (p.FragmentOffset != 0 || p.TotalADULength != 0) {
		result = multierror.Append(result, fmt.Errorf("primary: fragment offset/total set without fragment flag"))
	}
	if p.Source.IsNone() && p.Flags.Has(StatusTimeRequested) {
		result = multierror.Append(result, fmt.Errorf("primary: status time requested with null source"))
	}

	return result.ErrorOrNil()
}
