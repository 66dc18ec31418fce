package cache

import (
	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/google/uuid"
)

// ingest is the cache's forward-ingress callback: it accepts a bundle
// the route table resolved to this interface for retention, dispatching
// to custody_check_dacs or custody_store_bundle depending on whether
// the payload is an administrative record (spec.md §4.6 "Custody").
func (c *Cache) ingest(ref *mpool.Block) error {
	b := bundleOf(ref)
	if b == nil {
		_ = c.pool.ReleaseRef(ref)
		return nil
	}

	if b.Primary.Flags.Has(bundle.AdminRecordPayload) {
		c.custodyCheckDACS(b)
		_ = c.pool.ReleaseRef(ref)
		return nil
	}

	c.custodyStoreBundle(b, ref)
	return nil
}

// custodyCheckDACS decodes an incoming administrative-record bundle as
// a DACS, clearing FlagLocalCustody on every entry it acknowledges.
func (c *Cache) custodyCheckDACS(b *bundle.Bundle) {
	payload := b.Payload()
	if payload == nil {
		return
	}
	accepted, err := bundle.DecodeDACS(payload.Content)
	if err != nil {
		return
	}
	for _, id := range accepted {
		if e, ok := c.hashIndex[id.Hash()]; ok {
			e.Flags &^= FlagLocalCustody
		}
	}
}

// custodyStoreBundle inserts a new entry for b, or discards ref as a
// duplicate receipt if this bundle is already indexed. If b requested
// custody tracking, the acceptance is queued for a DACS addressed to
// its previous custodian.
func (c *Cache) custodyStoreBundle(b *bundle.Bundle, ref *mpool.Block) {
	id := b.ID()
	hash := id.Hash()

	if _, exists := c.hashIndex[hash]; exists {
		_ = c.pool.ReleaseRef(ref)
		return
	}

	e := &Entry{
		ID:            uuid.New(),
		Destination:   b.Primary.Destination,
		PrevCustodian: b.Primary.Source,
		BundleHash:    hash,
		State:         StateIdle,
		// Storing an entry is accepting local custody of it: the bundle
		// is retained until it is forwarded without further tracking,
		// acknowledged by a DACS, or ages out (v7_cache_fsm.c's
		// idle_eval: custody is what keeps an entry out of delete).
		Flags:      FlagActivity | FlagLocalCustody,
		Ref:        ref,
		ExpireTime: b.Primary.Creation.DtnTimeMs + b.Primary.Lifetime,
		ActionTime: TimeInfinite,
	}

	if node, err := c.destIndex.Insert(e.Destination.Node, e, true); err == nil {
		e.destNode = node
	}
	c.hashIndex[hash] = e

	if b.Primary.CustodyPolicy == bundle.CustodyTransfer {
		c.queueDACSAccept(b.Primary.Source, id)
	}

	c.pending = append(c.pending, e)
}

// queueDACSAccept records acceptance of id for a future DACS addressed
// to prevCustodian, merging into whatever DACS is already being
// assembled for that custodian within the open window.
func (c *Cache) queueDACSAccept(prevCustodian bundle.EID, id bundle.ID) {
	key := prevCustodian.Node
	d, ok := c.dacsByCustodian[key]
	if !ok {
		d = &Entry{
			ID:            uuid.New(),
			Destination:   prevCustodian,
			PrevCustodian: prevCustodian,
			State:         StateGenerateDACS,
			Flags:         FlagActionTimeWait,
			ExpireTime:    TimeInfinite,
			ActionTime:    c.actionTime + DacsOpenTimeMs,
		}
		c.dacsByCustodian[key] = d
		c.pending = append(c.pending, d)
	}
	d.DACSPending = append(d.DACSPending, DACSAccept{Source: id.Source, Creation: id.Creation})
}

// finalizeDACS assembles e's accumulated acceptances into one DACS
// bundle and routes it toward e's previous custodian, matching
// bplib_cache_dataservice_api.c's DACS assembly.
func (c *Cache) finalizeDACS(e *Entry) {
	delete(c.dacsByCustodian, e.PrevCustodian.Node)
	if len(e.DACSPending) == 0 {
		return
	}

	ids := make([]bundle.ID, len(e.DACSPending))
	for i, a := range e.DACSPending {
		ids[i] = bundle.ID{Source: a.Source, Creation: a.Creation}
	}
	e.DACSPending = nil

	c.dacsSeq++
	dacs := &bundle.Bundle{
		Primary: bundle.PrimaryBlock{
			Version:     bundle.ProtocolVersion,
			Flags:       bundle.AdminRecordPayload,
			Destination: e.PrevCustodian,
			Source:      c.selfAddr,
			Creation:    bundle.CreationTimestamp{DtnTimeMs: c.actionTime, SeqNum: uint64(c.dacsSeq)},
			Lifetime:    DacsLifetimeMs,
		},
		Blocks: []bundle.CanonicalBlock{
			{
				Type:        bundle.BlockTypePayload,
				BlockNumber: 1,
				Content:     bundle.EncodeDACS(ids),
			},
		},
	}

	target, err := c.pool.Alloc(mpool.BlockTypePrimary, 0, nil)
	if err != nil {
		return
	}
	target.Content = dacs

	ref, err := c.pool.CreateRef(target)
	if err != nil {
		c.pool.Recycle(target)
		return
	}

	_ = c.tbl.IngressRouteSingleBundle(&dacs.Primary, ref)
}
