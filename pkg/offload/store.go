package offload

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/dtncore/bpcore/pkg/bpe"
	"github.com/dtncore/bpcore/pkg/bundle"
	"github.com/dtncore/bpcore/pkg/codec"
	"github.com/dtncore/bpcore/pkg/mpool"
	bolt "go.etcd.io/bbolt"
)

var bucketBundles = []byte("bundles")

// Store is a bbolt-backed cache.Offload implementation: evicted bundles
// are CBOR-encoded and written under a monotonically increasing session
// id, optionally encrypted at rest.
type Store struct {
	pool   *mpool.Pool
	db     *bolt.DB
	seal   *sealer
	nextID uint64
}

// Option configures a Store at construction time.
type Option func(*Store) error

// WithEncryptionKey enables AES-256-GCM encryption of stored bundle
// bytes using a 32-byte key.
func WithEncryptionKey(key []byte) Option {
	return func(s *Store) error {
		seal, err := newSealer(key)
		if err != nil {
			return err
		}
		s.seal = seal
		return nil
	}
}

// Open opens (creating if needed) a bbolt database under dataDir to back
// a Store, allocating blocks restored from it out of pool.
func Open(dataDir string, pool *mpool.Pool, opts ...Option) (*Store, error) {
	dbPath := filepath.Join(dataDir, "offload.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("offload: failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBundles)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("offload: failed to create bucket: %w", err)
	}

	s := &Store{pool: pool, db: db}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Offload CBOR-encodes b, optionally encrypts it, and writes it under a
// freshly minted session id.
func (s *Store) Offload(b *bundle.Bundle) (uint64, error) {
	var buf bytes.Buffer
	if err := codec.EncodeBundle(&buf, b); err != nil {
		return 0, bpe.Wrap(bpe.ErrGeneric, "offload: encode: %v", err)
	}

	data, err := s.seal.seal(buf.Bytes())
	if err != nil {
		return 0, err
	}

	sid := atomic.AddUint64(&s.nextID, 1)

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBundles)
		return b.Put(sidKey(sid), data)
	})
	if err != nil {
		return 0, bpe.Wrap(bpe.ErrGeneric, "offload: put: %v", err)
	}
	return sid, nil
}

// Restore reads the bundle stored under sid, decrypts it if needed,
// CBOR-decodes it, and returns a fresh unwrapped pool content block
// holding it. The caller wraps the block with Pool.CreateRef.
func (s *Store) Restore(sid uint64) (*mpool.Block, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBundles)
		v := b.Get(sidKey(sid))
		if v == nil {
			return bpe.Wrap(bpe.ErrGeneric, "offload: no bundle stored under session %d", sid)
		}
		data = append(data, v...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	plaintext, err := s.seal.open(data)
	if err != nil {
		return nil, err
	}

	bdl, err := codec.DecodeBundle(bytes.NewReader(plaintext))
	if err != nil {
		return nil, bpe.Wrap(bpe.ErrGeneric, "offload: decode: %v", err)
	}

	blk, err := s.pool.Alloc(mpool.BlockTypePrimary, 0, nil)
	if err != nil {
		return nil, err
	}
	blk.Content = bdl
	return blk, nil
}

// Release deletes whatever Offload retained under sid. A sid that was
// never stored, or was already released, is a no-op.
func (s *Store) Release(sid uint64) {
	_ = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBundles)
		return b.Delete(sidKey(sid))
	})
}

func sidKey(sid uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, sid)
	return key
}
