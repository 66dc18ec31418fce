package flow

import (
	"bytes"
	"io"
	"testing"

	"github.com/dtncore/bpcore/pkg/crc"
	"github.com/dtncore/bpcore/pkg/mpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterSpansMultipleChunks(t *testing.T) {
	pool := mpool.NewPool(16)
	w := NewWriter(pool, crc.Castagnoli)

	payload := bytes.Repeat([]byte{0x42}, ChunkCapacity*2+10)
	n, err := w.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, len(payload), w.Len())

	head := w.Detach()
	assert.Equal(t, 3, mpool.Len(head))
}

func TestWriterReaderRoundTrip(t *testing.T) {
	pool := mpool.NewPool(16)
	w := NewWriter(pool, crc.Castagnoli)

	payload := []byte("the quick brown fox jumps over the lazy dog, repeated many times over to span chunks ")
	payload = bytes.Repeat(payload, 5)
	_, err := w.Write(payload)
	require.NoError(t, err)

	wantCRC := w.CRC()
	head := w.Detach()

	r := NewReader(head)
	assert.Equal(t, len(payload), r.Len())

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	verify := crc.NewHash(crc.Castagnoli)
	_, _ = verify.Write(got)
	assert.Equal(t, wantCRC, verify.Bytes())
}

func TestReaderSeekRewalksFromHead(t *testing.T) {
	pool := mpool.NewPool(16)
	w := NewWriter(pool, crc.Castagnoli)
	payload := bytes.Repeat([]byte("0123456789"), ChunkCapacity/5)
	_, err := w.Write(payload)
	require.NoError(t, err)
	head := w.Detach()

	r := NewReader(head)
	_, err = r.Seek(int64(len(payload)-5), io.SeekStart)
	require.NoError(t, err)

	tail := make([]byte, 5)
	n, err := r.Read(tail)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, payload[len(payload)-5:], tail)

	_, err = r.Seek(0, io.SeekStart)
	require.NoError(t, err)
	all, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, all)
}

func TestWriterSeekZeroFillsAndExtends(t *testing.T) {
	pool := mpool.NewPool(16)
	w := NewWriter(pool, crc.Castagnoli)
	_, err := w.Write([]byte("abc"))
	require.NoError(t, err)

	require.NoError(t, w.Seek(10))
	assert.Equal(t, 10, w.Len())

	head := w.Detach()
	r := NewReader(head)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, append([]byte("abc"), make([]byte, 7)...), got)
}

func TestWriterSeekRejectsNonForwardTarget(t *testing.T) {
	pool := mpool.NewPool(16)
	w := NewWriter(pool, crc.Castagnoli)
	_, err := w.Write([]byte("abcdef"))
	require.NoError(t, err)

	assert.Error(t, w.Seek(3))
	assert.Error(t, w.Seek(6))
}

func TestWriterCloseRecyclesWhenNotDetached(t *testing.T) {
	pool := mpool.NewPool(4)
	w := NewWriter(pool, crc.Castagnoli)
	_, err := w.Write(bytes.Repeat([]byte{1}, ChunkCapacity+1))
	require.NoError(t, err)
	assert.Equal(t, 2, pool.InUse())

	w.Close()
	reclaimed := pool.Maintain()
	assert.Equal(t, 2, reclaimed)
	assert.Equal(t, 0, pool.InUse())
}

func TestWriterCloseAfterDetachDoesNotRecycle(t *testing.T) {
	pool := mpool.NewPool(4)
	w := NewWriter(pool, crc.Castagnoli)
	_, err := w.Write([]byte("abc"))
	require.NoError(t, err)

	head := w.Detach()
	w.Close()

	assert.Equal(t, 1, pool.InUse())
	assert.Equal(t, 1, mpool.Len(head))
}
