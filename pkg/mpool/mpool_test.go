package mpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocRecycleMaintainRoundTrip(t *testing.T) {
	p := NewPool(4)
	require.Equal(t, 4, p.Capacity())

	blk, err := p.Alloc(BlockTypeGeneric, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, p.InUse())

	p.Recycle(blk)
	assert.Equal(t, 1, p.InUse(), "still counted in-use until Maintain drains it")

	reclaimed := p.Maintain()
	assert.Equal(t, 1, reclaimed)
	assert.Equal(t, 0, p.InUse())
}

func TestAllocExhaustsFreeList(t *testing.T) {
	p := NewPool(2)
	_, err := p.Alloc(BlockTypeGeneric, 0, nil)
	require.NoError(t, err)
	_, err = p.Alloc(BlockTypeGeneric, 0, nil)
	require.NoError(t, err)

	_, err = p.Alloc(BlockTypeGeneric, 0, nil)
	assert.Error(t, err)
}

func TestRegisterTypeRejectsDuplicateSignature(t *testing.T) {
	p := NewPool(2)
	require.NoError(t, p.RegisterType(1, TypeOps{}))
	assert.Error(t, p.RegisterType(1, TypeOps{}))
}

func TestConstructorDestructorRunOnAllocAndMaintain(t *testing.T) {
	p := NewPool(2)
	constructed := false
	destructed := false

	require.NoError(t, p.RegisterType(7, TypeOps{
		Construct: func(initArg any) (any, error) {
			constructed = true
			return initArg, nil
		},
		Destruct: func(content any) {
			destructed = true
		},
	}))

	blk, err := p.Alloc(BlockTypeGeneric, 7, "payload")
	require.NoError(t, err)
	assert.True(t, constructed)
	assert.Equal(t, "payload", blk.Content)

	p.Recycle(blk)
	p.Maintain()
	assert.True(t, destructed)
}

func TestRefCountingRecyclesTargetOnLastRelease(t *testing.T) {
	p := NewPool(4)
	target, err := p.Alloc(BlockTypeCanonical, 0, nil)
	require.NoError(t, err)

	ref1, err := p.CreateRef(target)
	require.NoError(t, err)
	assert.Equal(t, int32(1), target.Refcount)

	ref2, err := p.DuplicateRef(ref1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), target.Refcount)

	require.NoError(t, p.ReleaseRef(ref1))
	assert.Equal(t, int32(1), target.Refcount)
	assert.Equal(t, 3, p.InUse(), "ref1 queued for recycle but not yet drained")

	require.NoError(t, p.ReleaseRef(ref2))
	assert.Equal(t, int32(0), target.Refcount)

	reclaimed := p.Maintain()
	assert.Equal(t, 3, reclaimed, "ref1, ref2, and the target itself")
	assert.Equal(t, 0, p.InUse())
}

func TestListPrimitives(t *testing.T) {
	head := NewListHead()
	assert.True(t, head.IsEmptyListHead())

	a := &Block{}
	a.reset(BlockTypeGeneric)
	b := &Block{}
	b.reset(BlockTypeGeneric)

	InsertAfter(head, a)
	InsertBefore(head, b)
	assert.Equal(t, 2, Len(head))
	assert.False(t, head.IsEmptyListHead())

	ExtractNode(a)
	assert.Equal(t, 1, Len(head))
	assert.False(t, a.Attached())
}

func TestMergeList(t *testing.T) {
	dest := NewListHead()
	src := NewListHead()

	for i := 0; i < 3; i++ {
		n := &Block{}
		n.reset(BlockTypeGeneric)
		InsertBefore(src, n)
	}
	require.Equal(t, 3, Len(src))

	MergeList(dest, src)
	assert.Equal(t, 3, Len(dest))
	assert.Equal(t, 0, Len(src))
	assert.True(t, src.IsEmptyListHead())
}

type fakeSubListHolder struct {
	lists []*Block
}

func (f *fakeSubListHolder) MpoolSubLists() []*Block { return f.lists }

func TestMaintainRecursivelyRecyclesSubLists(t *testing.T) {
	p := NewPool(8)

	sub := NewListHead()
	for i := 0; i < 2; i++ {
		child, err := p.Alloc(BlockTypeCBORData, 0, nil)
		require.NoError(t, err)
		ExtractNode(child)
		InsertBefore(sub, child)
	}

	parent, err := p.Alloc(BlockTypeGeneric, 0, nil)
	require.NoError(t, err)
	parent.Content = &fakeSubListHolder{lists: []*Block{sub}}

	assert.Equal(t, 3, p.InUse())

	p.Recycle(parent)
	reclaimed := p.Maintain()
	assert.Equal(t, 3, reclaimed)
	assert.Equal(t, 0, p.InUse())
}
