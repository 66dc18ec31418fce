package rbtree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSearch(t *testing.T) {
	tr := New()
	keys := []uint64{50, 20, 70, 10, 30, 60, 80}
	for _, k := range keys {
		_, err := tr.Insert(k, k*10, false)
		require.NoError(t, err)
	}
	assert.Equal(t, len(keys), tr.Len())

	for _, k := range keys {
		n := tr.Search(k)
		require.NotNil(t, n)
		assert.Equal(t, k*10, n.Value)
	}
	assert.Nil(t, tr.Search(999))
}

func TestInsertRejectsDuplicateUnlessAlwaysGoRight(t *testing.T) {
	tr := New()
	_, err := tr.Insert(5, "a", false)
	require.NoError(t, err)

	_, err = tr.Insert(5, "b", false)
	assert.Error(t, err)
	assert.Equal(t, 1, tr.Len())

	_, err = tr.Insert(5, "c", true)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Len())
}

func TestInsertRejectsOversizedKey(t *testing.T) {
	tr := New()
	_, err := tr.Insert(MaxKey+1, nil, false)
	assert.Error(t, err)
}

func TestExtractNodePreservesIdentityUnderTwoChildren(t *testing.T) {
	tr := New()
	// Build a tree where 50 definitely has two children.
	for _, k := range []uint64{50, 20, 70, 10, 30, 60, 80, 25, 35} {
		_, err := tr.Insert(k, nil, false)
		require.NoError(t, err)
	}

	target := tr.Search(50)
	require.NotNil(t, target)

	require.NoError(t, tr.ExtractNode(target))
	assert.Nil(t, tr.Search(50))
	assert.Equal(t, 8, tr.Len())

	// Every other key must still be findable.
	for _, k := range []uint64{20, 70, 10, 30, 60, 80, 25, 35} {
		assert.NotNil(t, tr.Search(k), "key %d", k)
	}
}

func TestExtractNodeRejectsNonMember(t *testing.T) {
	tr := New()
	_, _ = tr.Insert(1, nil, false)
	detached := &Node{Key: 2}
	assert.Error(t, tr.ExtractNode(detached))
}

func TestInOrderTraversalViaIteratorMatchesSortedKeys(t *testing.T) {
	tr := New()
	r := rand.New(rand.NewSource(1))
	var keys []uint64
	seen := map[uint64]bool{}
	for len(keys) < 200 {
		k := uint64(r.Intn(10000))
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
		_, err := tr.Insert(k, nil, false)
		require.NoError(t, err)
	}

	sorted := append([]uint64(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	it := tr.GotoMin(0)
	var walked []uint64
	for it.Valid() {
		walked = append(walked, it.Node().Key)
		it.Next()
	}
	assert.Equal(t, sorted, walked)

	// Descending walk from the top must match reversed order.
	itMax := tr.GotoMax(MaxKey)
	var walkedDesc []uint64
	for itMax.Valid() {
		walkedDesc = append(walkedDesc, itMax.Node().Key)
		itMax.Prev()
	}
	reversed := make([]uint64, len(sorted))
	for i, k := range sorted {
		reversed[len(sorted)-1-i] = k
	}
	assert.Equal(t, reversed, walkedDesc)
}

func TestGotoMinRespectsLowerBound(t *testing.T) {
	tr := New()
	for _, k := range []uint64{10, 20, 30, 40} {
		_, _ = tr.Insert(k, nil, false)
	}
	it := tr.GotoMin(25)
	require.True(t, it.Valid())
	assert.Equal(t, uint64(30), it.Node().Key)

	itNone := tr.GotoMin(1000)
	assert.False(t, itNone.Valid())
}

func TestGotoMaxRespectsUpperBound(t *testing.T) {
	tr := New()
	for _, k := range []uint64{10, 20, 30, 40} {
		_, _ = tr.Insert(k, nil, false)
	}
	it := tr.GotoMax(25)
	require.True(t, it.Valid())
	assert.Equal(t, uint64(20), it.Node().Key)

	itNone := tr.GotoMax(5)
	assert.False(t, itNone.Valid())
}

func TestBlackHeightStableAfterInsertsAndDeletes(t *testing.T) {
	tr := New()
	r := rand.New(rand.NewSource(42))
	var nodes []*Node
	for i := 0; i < 500; i++ {
		n, err := tr.Insert(uint64(r.Intn(1_000_000)), nil, true)
		require.NoError(t, err)
		nodes = append(nodes, n)
	}

	bh := tr.BlackHeight()
	assert.Greater(t, bh, 0)

	for i := 0; i < 250; i++ {
		require.NoError(t, tr.ExtractNode(nodes[i]))
	}
	assert.Equal(t, 250, tr.Len())
	// BlackHeight is recomputed per call by walking the leftmost spine;
	// it must still be well-defined (non-negative) after deletions.
	assert.GreaterOrEqual(t, tr.BlackHeight(), 0)
}

func TestAlwaysGoRightDuplicatesRangeIterable(t *testing.T) {
	tr := New()
	for i := 0; i < 5; i++ {
		_, err := tr.Insert(7, i, true)
		require.NoError(t, err)
	}
	it := tr.GotoMin(7)
	count := 0
	for it.Valid() && it.Node().Key == 7 {
		count++
		it.Next()
	}
	assert.Equal(t, 5, count)
}
