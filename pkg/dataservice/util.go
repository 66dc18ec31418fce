package dataservice

import (
	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/mpool"
)

// bundleOf returns the bundle a pool reference block points at, or
// nil if ref is not a reference block or its target does not hold a
// *bundle.Bundle. Mirrors pkg/cache's own helper of the same name.
func bundleOf(ref *mpool.Block) *bundle.Bundle {
	if ref == nil {
		return nil
	}
	rc, ok := ref.Content.(*mpool.RefContent)
	if !ok {
		return nil
	}
	b, _ := rc.Target.Content.(*bundle.Bundle)
	return b
}

// bundlePrimary returns a pointer to ref's bundle's primary block, or
// nil.
func bundlePrimary(ref *mpool.Block) *bundle.PrimaryBlock {
	b := bundleOf(ref)
	if b == nil {
		return nil
	}
	return &b.Primary
}
