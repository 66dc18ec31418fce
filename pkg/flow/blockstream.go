package flow

import (
	"fmt"
	"io"

	"github.com/dtncore/bpcore/pkg/bpe"
	"github.com/dtncore/bpcore/pkg/crc"
	"github.com/dtncore/bpcore/pkg/mpool"
)

// ChunkCapacity is the maximum number of content bytes one
// pool.BlockTypeCBORData chunk holds, matching
// original_source/common/v7_mpool.h's BP_MPOOL_MAX_ENCODED_CHUNK_SIZE.
const ChunkCapacity = 256

// chunkData is the Content a BlockTypeCBORData block carries while
// part of a block-stream chain.
type chunkData struct {
	buf []byte
}

// Writer is a io.Writer over a chain of pool blocks, allocating chunks
// as needed and advancing a running CRC alongside every write.
type Writer struct {
	pool     *mpool.Pool
	head     *mpool.Block
	tail     *mpool.Block
	size     int
	hash     *crc.Hash
	detached bool
}

// NewWriter returns a writer backed by pool, computing a CRC under
// alg as bytes are written.
func NewWriter(pool *mpool.Pool, alg crc.Algorithm) *Writer {
	return &Writer{
		pool: pool,
		head: mpool.NewListHead(),
		hash: crc.NewHash(alg),
	}
}

// Write implements io.Writer, allocating new chunk blocks from the
// pool as the current tail chunk fills.
func (w *Writer) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		if w.tail == nil || len(w.tail.Content.(*chunkData).buf) >= ChunkCapacity {
			blk, err := w.pool.Alloc(mpool.BlockTypeCBORData, 0, nil)
			if err != nil {
				return written, err
			}
			blk.Content = &chunkData{buf: make([]byte, 0, ChunkCapacity)}
			mpool.InsertBefore(w.head, blk)
			w.tail = blk
		}

		cd := w.tail.Content.(*chunkData)
		room := ChunkCapacity - len(cd.buf)
		n := room
		if n > len(p) {
			n = len(p)
		}
		cd.buf = append(cd.buf, p[:n]...)
		_, _ = w.hash.Write(p[:n])
		w.size += n
		written += n
		p = p[n:]
	}
	return written, nil
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.size }

// CRC returns the accumulator's current value, encoded per its
// algorithm's width.
func (w *Writer) CRC() []byte { return w.hash.Bytes() }

// Seek extends the stream to target, zero-filling the gap. Seeking
// to or before the current end is not supported — block streams are
// write-once-forward, matching spec.md §4.4 ("seek past end of a
// write stream zero-fills and extends").
func (w *Writer) Seek(target int) error {
	if target <= w.size {
		return fmt.Errorf("flow: write-stream seek to %d not after current size %d", target, w.size)
	}
	_, err := w.Write(make([]byte, target-w.size))
	return err
}

// Detach returns the chunk chain built so far and marks the writer
// attached, so Close will not recycle it.
func (w *Writer) Detach() *mpool.Block {
	w.detached = true
	return w.head
}

// Close recycles the partial chunk chain if Detach was never called.
func (w *Writer) Close() {
	if !w.detached {
		w.pool.RecycleList(w.head)
	}
}

// Reader is an io.Reader/io.Seeker over a chunk chain a Writer
// produced (or that was read back from storage).
type Reader struct {
	head  *mpool.Block
	total int

	cur    *mpool.Block
	curOff int
	pos    int
}

// NewReader returns a reader over head's chunk chain.
func NewReader(head *mpool.Block) *Reader {
	r := &Reader{head: head, cur: mpool.Front(head)}
	mpool.Walk(head, func(n *mpool.Block) {
		r.total += len(n.Content.(*chunkData).buf)
	})
	return r
}

// Len returns the stream's total length.
func (r *Reader) Len() int { return r.total }

// Read implements io.Reader, traversing chunks as needed.
func (r *Reader) Read(p []byte) (int, error) {
	if r.pos >= r.total {
		return 0, io.EOF
	}
	read := 0
	for read < len(p) && r.pos < r.total {
		cd := r.cur.Content.(*chunkData)
		avail := len(cd.buf) - r.curOff
		n := avail
		if n > len(p)-read {
			n = len(p) - read
		}
		copy(p[read:read+n], cd.buf[r.curOff:r.curOff+n])
		read += n
		r.curOff += n
		r.pos += n
		if r.curOff >= len(cd.buf) {
			r.cur = nextChunk(r.head, r.cur)
			r.curOff = 0
		}
	}
	return read, nil
}

// Seek re-walks the chain from its head to reach offset, per spec.md
// §4.4 ("seek within a read stream re-walks from the current
// anchor"). Only io.SeekStart is supported. An offset past the end
// clamps to the end of the stream.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, bpe.Wrap(bpe.ErrAPI, "flow: reader seek only supports io.SeekStart")
	}
	if offset < 0 {
		return 0, bpe.Wrap(bpe.ErrAPI, "flow: seek offset %d is negative", offset)
	}
	if int(offset) > r.total {
		offset = int64(r.total)
	}

	r.cur = mpool.Front(r.head)
	r.curOff = 0
	r.pos = 0
	remaining := int(offset)
	for remaining > 0 {
		cd := r.cur.Content.(*chunkData)
		if remaining < len(cd.buf) {
			r.curOff = remaining
			r.pos += remaining
			remaining = 0
		} else {
			remaining -= len(cd.buf)
			r.pos += len(cd.buf)
			r.cur = nextChunk(r.head, r.cur)
		}
	}
	return offset, nil
}

func nextChunk(head, n *mpool.Block) *mpool.Block {
	// Blocks retain no direct "list" back-reference once attached, so
	// advancing means re-walking from head until n is found and
	// returning its successor. Chains are short (ChunkCapacity bytes
	// per link), so this is cheap relative to the copy it follows.
	var found *mpool.Block
	prev := head
	mpool.Walk(head, func(cand *mpool.Block) {
		if prev == n && found == nil {
			found = cand
		}
		prev = cand
	})
	return found
}
