/*
Package crc implements the three CRC options a BPv7 block's CRCType
field selects: none, CRC-16/X.25, and CRC-32C (Castagnoli).

The Algorithm values are immutable, comparable-by-value parameter
objects (mirroring the C source's global BPLIB_CRC16_X25 /
BPLIB_CRC32_CASTAGNOLI / BPLIB_CRC_NONE constants). Hash is the
streaming accumulator pkg/codec advances incrementally while it
serializes a block, so the CRC bytestring's own header bytes can be
folded into the preimage before the value is known.

Check values (spec.md §8): for the ASCII string "123456789",
CRC-16/X.25 must equal 0x906E and CRC-32C must equal 0xE3069283; None
always yields 0.
*/
package crc
