/*
Package offload implements the cache.Offload hook (spec.md §6, consumed
optionally by pkg/cache) over a bbolt database: bundles the cache FSM
evicts from memory are CBOR-encoded (pkg/codec) and written to a single
bucket keyed by a monotonically increasing session id, and restored the
same way on demand.

Grounded on pkg/storage/boltdb.go's bucket-per-entity-type, JSON-CRUD
shape, generalized to one bucket of CBOR-encoded bundle bytes keyed by
session id instead of by a string entity id. Encryption at rest is
optional and follows pkg/security/secrets.go's AES-256-GCM,
nonce-prepended convention when a key is configured.
*/
package offload
