package flow

import (
	"testing"
	"time"

	"github.com/dtncore/bpcore/pkg/bpe"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/dtncore/bpcore/pkg/osal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubqueuePushFailsWhenDisabled(t *testing.T) {
	q := NewSubqueue()
	pool := mpool.NewPool(4)
	ref, err := pool.Alloc(mpool.BlockTypeGeneric, 0, nil)
	require.NoError(t, err)

	err = q.Push(ref, 0)
	assert.ErrorIs(t, err, bpe.ErrAPI)
}

func TestSubqueuePushPullRoundTrip(t *testing.T) {
	q := NewSubqueue()
	q.SetDepthLimit(4)
	pool := mpool.NewPool(4)

	ref, err := pool.Alloc(mpool.BlockTypeGeneric, 0, nil)
	require.NoError(t, err)

	require.NoError(t, q.Push(ref, 0))
	assert.Equal(t, 1, q.Depth())
	assert.EqualValues(t, 1, q.Stats().Enqueued)

	got, err := q.Pull(0)
	require.NoError(t, err)
	assert.Same(t, ref, got)
	assert.Equal(t, 0, q.Depth())
	assert.EqualValues(t, 1, q.Stats().Dequeued)
}

func TestSubqueuePullTimesOutWhenEmpty(t *testing.T) {
	q := NewSubqueue()
	q.SetDepthLimit(4)

	deadline := osal.NowMs() + 20
	_, err := q.Pull(deadline)
	assert.ErrorIs(t, err, bpe.ErrTimeout)
}

func TestSubqueuePushBlocksUntilRoomThenSucceeds(t *testing.T) {
	q := NewSubqueue()
	q.SetDepthLimit(1)
	pool := mpool.NewPool(4)

	first, err := pool.Alloc(mpool.BlockTypeGeneric, 0, nil)
	require.NoError(t, err)
	require.NoError(t, q.Push(first, 0))

	second, err := pool.Alloc(mpool.BlockTypeGeneric, 0, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- q.Push(second, 0)
	}()

	time.Sleep(20 * time.Millisecond)
	_, err = q.Pull(0)
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("push never unblocked after room freed")
	}
	assert.Equal(t, 1, q.Depth())
}

func TestSubqueueDrainRecyclesAndResetsDepth(t *testing.T) {
	q := NewSubqueue()
	q.SetDepthLimit(4)
	pool := mpool.NewPool(4)

	ref, err := pool.Alloc(mpool.BlockTypeGeneric, 0, nil)
	require.NoError(t, err)
	require.NoError(t, q.Push(ref, 0))

	q.Drain(pool)
	assert.Equal(t, 0, q.Depth())

	reclaimed := pool.Maintain()
	assert.Equal(t, 1, reclaimed)
}
