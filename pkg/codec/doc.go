/*
Package codec encodes and decodes bundles between pkg/bundle's logical
types and the RFC 9171 BPv7 CBOR wire format, using
github.com/dtn7/cboring for the primitive CBOR writes/reads.

A bundle on the wire is a CBOR indefinite-length array whose first
element is the definite-length primary block array and whose remaining
elements are definite-length canonical block arrays (spec.md §4). CRC
values are computed and checked inline with serialization: the CRC
byte string's own header bytes are part of the preimage, so the
encoder predicts those header octets, hashes them plus a zero-filled
placeholder of the CRC's width, and only then emits the real value;
the decoder reproduces the same preimage from the bytes it has already
parsed and compares against the byte string it reads.
*/
package codec
